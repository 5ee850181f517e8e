package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"othello-local/engine/eval"
	"othello-local/sgf"
	"othello-local/types"
)

const panelMaxMoves = 12

var panelEval = eval.New()

// GameInfoPanel displays game information and move history alongside the board.
type GameInfoPanel struct {
	box        *tview.TextView
	boardState *types.BoardState
	opponent   string
	side       types.Side // human player; evaluation is shown from this side
	history    func() []sgf.MoveEntry
	planTree   *sgf.GameTree // non-nil when in planning mode
}

// NewGameInfoPanel creates a new game info panel.
func NewGameInfoPanel() *GameInfoPanel {
	panel := &GameInfoPanel{
		box: tview.NewTextView(),
	}

	panel.box.SetDynamicColors(true)
	panel.box.SetBorder(false)
	panel.box.SetTextAlign(tview.AlignLeft)

	return panel
}

// Box returns the underlying tview component.
func (p *GameInfoPanel) Box() *tview.TextView {
	return p.box
}

// SetBoardState updates the panel with current board state.
func (p *GameInfoPanel) SetBoardState(state *types.BoardState) {
	p.boardState = state
	p.refresh()
}

// SetOpponent sets the opponent description shown in the header.
func (p *GameInfoPanel) SetOpponent(name string) {
	p.opponent = name
	p.refresh()
}

// SetPlayerSide sets the side the evaluation line is scored for.
func (p *GameInfoPanel) SetPlayerSide(side types.Side) {
	p.side = side
	p.refresh()
}

// SetMoveHistory sets the source of the moves listed below the header.
func (p *GameInfoPanel) SetMoveHistory(history func() []sgf.MoveEntry) {
	p.history = history
}

// SetPlanningMode enables planning mode display with the given tree.
func (p *GameInfoPanel) SetPlanningMode(tree *sgf.GameTree) {
	p.planTree = tree
	p.refresh()
}

// ClearPlanningMode disables planning mode display.
func (p *GameInfoPanel) ClearPlanningMode() {
	p.planTree = nil
	p.refresh()
}

func (p *GameInfoPanel) refresh() {
	if p.boardState == nil {
		p.box.SetText("")
		return
	}

	var text strings.Builder
	text.WriteString("[white::b]Game Info[-:-:-]\n")
	text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
	if p.opponent != "" {
		fmt.Fprintf(&text, "[white]Vs:[-:-:-] %s\n", p.opponent)
	}
	fmt.Fprintf(&text, "[white]Move:[-:-:-] %d\n", p.boardState.MoveNumber)
	fmt.Fprintf(&text, "[white]● Black:[-:-:-] %d\n", p.boardState.BlackCount)
	fmt.Fprintf(&text, "[white]○ White:[-:-:-] %d\n", p.boardState.WhiteCount)
	if p.planTree == nil && !p.boardState.Finished() {
		writeEvaluation(&text, p.boardState.Position(), p.side)
	}

	if p.planTree != nil {
		text.WriteString("\n[yellow::b]PLAN[-:-:-]\n")
		text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
		if p.planTree.NumVariations() > 1 {
			fmt.Fprintf(&text, "[dimgray]var %d/%d[-]\n", p.planTree.VariationIndex()+1, p.planTree.NumVariations())
		}
		node := p.planTree.Current
		fmt.Fprintf(&text, "[dimgray]● %d  ○ %d[-]\n", node.Board.Count(types.Black), node.Board.Count(types.White))
		writeEvaluation(&text, node.Board, p.side)
		path := p.planTree.PathFromRoot()
		if len(path) == 0 {
			text.WriteString("[dimgray]  (no moves)[-]\n")
		}
		writeMoveList(&text, path, "[yellow]>[-]")
	} else if p.history != nil {
		moves := p.history()
		if len(moves) > 0 {
			text.WriteString("\n[white::b]Moves[-:-:-]\n")
			text.WriteString("[dimgray]──────────────────────[-:-:-]\n")
			writeMoveList(&text, moves, "[white]>[-]")
		}
	}

	p.box.SetText(text.String())
}

// writeEvaluation prints the heuristic score of board for side, split
// into its weighted signals.
func writeEvaluation(text *strings.Builder, board types.Board, side types.Side) {
	if side == types.None {
		return
	}
	phase := eval.PhaseForBoard(board)
	s := panelEval.Breakdown(board, side, phase)
	fmt.Fprintf(text, "[white]Eval:[-:-:-] %+.0f %s\n", s.Total, phase)
	fmt.Fprintf(text, "[dimgray] pos %+.0f  mob %+.0f[-]\n", s.Positional, s.Mobility)
	fmt.Fprintf(text, "[dimgray] frt %+.0f  disc %+.0f[-]\n", s.Frontier, s.Piece)
}

// writeMoveList prints the tail of moves, marking the last one.
func writeMoveList(text *strings.Builder, moves []sgf.MoveEntry, marker string) {
	start := 0
	if len(moves) > panelMaxMoves {
		start = len(moves) - panelMaxMoves
	}
	for i := start; i < len(moves); i++ {
		m := moves[i]
		colorStr := "[white]B[-]"
		if m.Color == types.White {
			colorStr = "[dimgray]W[-]"
		}
		coord := "pass"
		if !m.IsPass() {
			coord = m.Coordinate().String()
		}
		mark := " "
		if i == len(moves)-1 {
			mark = marker
		}
		fmt.Fprintf(text, "%s[dimgray]%3d.[-] %s %s\n", mark, i+1, colorStr, coord)
	}
	if start > 0 {
		fmt.Fprintf(text, "[dimgray]  ··· %d earlier[-]\n", start)
	}
}

// attachInfoPanel creates the side panel for board and wires it up.
func attachInfoPanel(board *BoardUI) *GameInfoPanel {
	infoPanel := NewGameInfoPanel()
	board.infoPanel = infoPanel
	infoPanel.SetMoveHistory(board.MoveHistory)
	if board.planTree != nil {
		infoPanel.planTree = board.planTree
	}
	if board.eng != nil {
		infoPanel.opponent = board.gameConfig.EngineName()
		infoPanel.side = types.Side(board.gameConfig.PlayerColor)
	}
	if st := board.displayState(); st != nil {
		infoPanel.SetBoardState(st)
	}
	return infoPanel
}

// CreateGameLayout creates the main game layout with board and side panel.
func CreateGameLayout(board *BoardUI, hint *tview.TextView) *tview.Flex {
	gameFrame := tview.NewFlex()
	RebuildNormalLayout(gameFrame, board, hint)
	return gameFrame
}

// CreateCenteredForm creates a centered form container for the setup screen.
func CreateCenteredForm(form tview.Primitive, maxWidth int) *tview.Flex {
	centered := tview.NewFlex().SetDirection(tview.FlexColumn)
	centered.AddItem(nil, 0, 1, false)
	centered.AddItem(form, maxWidth, 0, true)
	centered.AddItem(nil, 0, 1, false)

	return centered
}

// RebuildNormalLayout restores the normal game layout with board, info panel, and hint.
func RebuildNormalLayout(gameFrame *tview.Flex, board *BoardUI, hint *tview.TextView) {
	gameFrame.Clear()
	infoPanel := attachInfoPanel(board)

	boardRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	boardRow.AddItem(board.Box, 0, 1, true)
	boardRow.AddItem(infoPanel.Box(), 26, 0, false)

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(boardRow, 0, 1, true)
	gameFrame.AddItem(hint, 3, 0, false)
}

// BuildFocusLayout builds the focus mode layout with just the centered board.
func BuildFocusLayout(gameFrame *tview.Flex, board *BoardUI) {
	gameFrame.Clear()

	boardWidth := types.Size*2 + 4  // 2 chars per cell + row labels
	boardHeight := types.Size + 2 // + column labels

	gameFrame.SetDirection(tview.FlexRow)
	gameFrame.AddItem(nil, 0, 1, false)

	centerRow := tview.NewFlex().SetDirection(tview.FlexColumn)
	centerRow.AddItem(nil, 0, 1, false)
	centerRow.AddItem(board.Box, boardWidth, 0, true)
	centerRow.AddItem(nil, 0, 1, false)

	gameFrame.AddItem(centerRow, boardHeight, 0, true)
	gameFrame.AddItem(nil, 0, 1, false)
}
