// Package ui specifies custom controls for tview to assist in playing Othello in the terminal.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"othello-local/config"
	"othello-local/engine"
	"othello-local/sgf"
	"othello-local/storage"
	"othello-local/types"
)

// Palette indices into BoardUI.styles.
const (
	styleBoard = iota
	styleBlack
	styleWhite
	styleBoardAlt
	styleHint
	styleCursorFG
	styleLastPlayed
	styleCursorBG
	styleLine
)

type BoardUI struct {
	Box          *tview.Box
	BoardState   *types.BoardState
	hint         *tview.TextView
	cfg          *config.Config
	finished     bool
	selX         int
	selY         int
	lastTurnPass bool
	app          *tview.Application
	eng          engine.GameEngine
	styles       []tcell.Color
	infoPanel    *GameInfoPanel
	focusMode    bool
	gameConfig   engine.GameConfig
	moveHistory  []sgf.MoveEntry
	record       *sgf.GameRecord
	archive      *storage.Archive
	started      time.Time
	planTree     *sgf.GameTree // non-nil while exploring variations
	log          zerolog.Logger

	mu sync.Mutex
}

// ToggleFocusMode toggles focus mode and returns the new state.
func (g *BoardUI) ToggleFocusMode() bool {
	g.focusMode = !g.focusMode
	g.refreshHint()
	return g.focusMode
}

// SetFocusMode sets focus mode to the given state.
func (g *BoardUI) SetFocusMode(enabled bool) {
	g.focusMode = enabled
	g.refreshHint()
}

// IsFocusMode returns true if focus mode is enabled.
func (g *BoardUI) IsFocusMode() bool {
	return g.focusMode
}

func (g *BoardUI) SelectedTile() *types.BoardPos {
	if g.selX == -1 && g.selY == -1 {
		return nil
	}
	return &types.BoardPos{X: g.selX, Y: g.selY}
}

func (g *BoardUI) MoveSelection(h, v int) {
	st := g.displayState()
	if st.Finished() && g.planTree == nil {
		g.ResetSelection()
		return
	}
	if g.SelectedTile() == nil {
		g.selX, g.selY = st.LastMove.X, st.LastMove.Y
		if g.SelectedTile() == nil {
			// Nothing played yet; start next to the centre.
			g.selX, g.selY = types.Size/2-1, types.Size/2-1
		}
		return
	}
	if g.selX+h < 0 || g.selX+h >= types.Size {
		return
	}
	if g.selY+v < 0 || g.selY+v >= types.Size {
		return
	}
	g.selX += h
	g.selY += v
}

func (g *BoardUI) ResetSelection() {
	g.selX = -1
	g.selY = -1
}

func NewBoard(app *tview.Application, c *config.Config, hint *tview.TextView) *BoardUI {
	board := &BoardUI{
		Box:        tview.NewBox(),
		BoardState: types.NewBoardState(),
		hint:       hint,
		app:        app,
		selX:       -1,
		selY:       -1,
		log:        log.With().Str("component", "ui").Logger(),
	}
	board.SetConfig(c)
	board.Box.SetDrawFunc(board.draw)
	return board
}

// SetArchive makes finished games go to the SQLite archive as well as to SGF.
func (g *BoardUI) SetArchive(a *storage.Archive) {
	g.archive = a
}

// displayState is the position on screen: the exploration tree while
// planning, the live game otherwise.
func (g *BoardUI) displayState() *types.BoardState {
	if g.planTree != nil {
		node := g.planTree.Current
		last := types.PassPos
		if !node.IsRoot() && !node.Move.IsPass() {
			last = types.BoardPos{X: node.Move.X, Y: node.Move.Y}
		}
		return types.SnapshotOf(node.Board, node.ToMove(), g.planTree.Depth(), last)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.BoardState
}

func (g *BoardUI) draw(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	st := g.displayState()
	if st == nil || st.Width() == 0 {
		return x, y, 1, 1
	}
	theme := g.cfg.Theme
	showHints := theme.ShowLegalMoves && !st.Finished() && (g.planTree != nil || g.isMyTurn())

	for boardY := 0; boardY < st.Height(); boardY++ {
		for boardX := 0; boardX < st.Width(); boardX++ {
			bg := g.styles[styleBoard]
			if (boardX+boardY)%2 == 1 {
				bg = g.styles[styleBoardAlt]
			}
			fg := g.styles[styleLine]
			drawRune := theme.Symbols.EmptySquare

			switch types.Side(st.Board[boardY][boardX]) {
			case types.Black:
				drawRune, fg = theme.Symbols.BlackDisc, g.styles[styleBlack]
			case types.White:
				drawRune, fg = theme.Symbols.WhiteDisc, g.styles[styleWhite]
			default:
				if showHints && st.IsLegalHint(boardX, boardY) {
					drawRune, fg = theme.Symbols.LegalHint, g.styles[styleHint]
				}
			}

			if boardX == g.selX && boardY == g.selY {
				if theme.DrawCursorBackground {
					bg = g.styles[styleCursorBG]
				} else if st.Board[boardY][boardX] == 0 {
					fg = g.styles[styleCursorFG]
					drawRune = '+'
				}
			} else if boardX == st.LastMove.X && boardY == st.LastMove.Y && theme.DrawLastPlayedBackground {
				bg = g.styles[styleLastPlayed]
			}
			drawDiscCell(screen, tcell.StyleDefault.Background(bg).Foreground(fg), drawRune, boardX, boardY, x+4, y)
		}
	}
	g.drawCoordinates(screen, x, y, st)
	return x, y, st.Width()*2 + 4, st.Height() + 2
}

// ConnectEngine connects the board to a game engine and starts recording.
func (g *BoardUI) ConnectEngine(e engine.GameEngine, gameCfg engine.GameConfig) error {
	g.mu.Lock()
	g.finished = false
	g.eng = e
	g.gameConfig = gameCfg
	g.moveHistory = nil
	g.lastTurnPass = false
	g.planTree = nil
	g.started = time.Now()
	g.mu.Unlock()
	g.ResetSelection()

	rec, err := sgf.NewGameRecord(config.HistoryDir(), gameCfg.PlayerColor, gameCfg.EngineName())
	if err != nil {
		g.log.Warn().Err(err).Msg("sgf-record-unavailable")
		rec = nil
	}
	g.record = rec
	if g.infoPanel != nil {
		g.infoPanel.ClearPlanningMode()
		g.infoPanel.SetOpponent(gameCfg.EngineName())
		g.infoPanel.SetPlayerSide(types.Side(gameCfg.PlayerColor))
	}

	e.OnMove(func(x, y, color int, boardState *types.BoardState) {
		g.mu.Lock()
		g.lastTurnPass = x == -1 && y == -1 && color != g.gameConfig.PlayerColor
		g.BoardState = boardState
		g.moveHistory = append(g.moveHistory, sgf.MoveEntry{Color: types.Side(color), X: x, Y: y})
		if g.record != nil {
			if err := g.record.AddMove(x, y, color); err != nil {
				g.log.Warn().Err(err).Msg("sgf-write-failed")
			}
		}
		g.mu.Unlock()
		g.refreshHint()
		// Spawn goroutine to avoid deadlock when called from main thread
		go func() {
			g.app.QueueUpdateDraw(func() {})
		}()
	})

	e.OnGameEnd(func(outcome string) {
		g.mu.Lock()
		g.finished = true
		g.BoardState = e.GetBoardState()
		if g.record != nil {
			g.record.SetResult(outcome)
			g.record.Close()
		}
		g.mu.Unlock()
		g.archiveGame()
		g.ResetSelection()
		g.refreshHint()
		go func() {
			g.app.QueueUpdateDraw(func() {})
		}()
	})

	if err := e.Connect(); err != nil {
		if g.record != nil {
			g.record.Close()
		}
		return err
	}

	g.mu.Lock()
	g.BoardState = e.GetBoardState()
	g.mu.Unlock()
	g.refreshHint()
	return nil
}

// archiveGame stores the finished game in the SQLite archive.
func (g *BoardUI) archiveGame() {
	if g.archive == nil {
		return
	}
	g.mu.Lock()
	rec := storage.Game{StartedAt: g.started, EndedAt: time.Now()}
	for _, m := range g.moveHistory {
		if m.IsPass() {
			rec.Moves = append(rec.Moves, storage.PassEntry(m.Color))
			continue
		}
		rec.Moves = append(rec.Moves, storage.MoveEntry{Side: m.Color, Row: m.Y, Col: m.X})
	}
	if g.gameConfig.PlayerColor == int(types.Black) {
		rec.Black, rec.White = "Player", g.gameConfig.EngineName()
	} else {
		rec.Black, rec.White = g.gameConfig.EngineName(), "Player"
	}
	rec.SetFinal(g.BoardState.Position())
	g.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := g.archive.Save(ctx, rec); err != nil {
			g.log.Error().Err(err).Msg("archive-failed")
		}
	}()
}

func (g *BoardUI) isMyTurn() bool {
	return g.eng != nil && !g.finished && g.eng.IsMyTurn()
}

// PlayMove plays a move at the given coordinates. While planning, the move
// goes into the exploration tree instead of the game.
func (g *BoardUI) PlayMove(x, y int) {
	if g.planTree != nil {
		side := g.planTree.Current.ToMove()
		if _, err := g.planTree.AddMove(sgf.MoveEntry{Color: side, X: x, Y: y}); err != nil {
			return
		}
		g.refreshHint()
		return
	}
	if !g.isMyTurn() {
		return
	}
	if err := g.eng.PlayMove(x, y); err != nil {
		g.log.Debug().Err(err).Int("x", x).Int("y", y).Msg("move-rejected")
		return
	}
}

// Pass passes the current turn. The engine refuses while a legal move exists.
func (g *BoardUI) Pass() {
	if g.planTree != nil {
		side := g.planTree.Current.ToMove()
		g.planTree.AddMove(sgf.MoveEntry{Color: side, X: -1, Y: -1})
		g.refreshHint()
		return
	}
	if !g.isMyTurn() {
		return
	}
	if err := g.eng.Pass(); err != nil {
		g.log.Debug().Err(err).Msg("pass-rejected")
	}
}

// TogglePlanning enters or leaves exploration from the current position.
func (g *BoardUI) TogglePlanning() bool {
	if g.planTree != nil {
		g.planTree = nil
	} else {
		st := g.displayState()
		g.planTree = sgf.NewGameTreeAt(st.Position(), types.Side(st.PlayerToMove))
	}
	if g.infoPanel != nil {
		if g.planTree != nil {
			g.infoPanel.SetPlanningMode(g.planTree)
		} else {
			g.infoPanel.ClearPlanningMode()
		}
	}
	g.refreshHint()
	return g.planTree != nil
}

// IsPlanning reports whether the board shows an exploration tree.
func (g *BoardUI) IsPlanning() bool {
	return g.planTree != nil
}

// PlanBack steps back one move in the exploration tree.
func (g *BoardUI) PlanBack() {
	if g.planTree != nil && g.planTree.Back() {
		g.refreshHint()
	}
}

// PlanForward follows the current variation one move.
func (g *BoardUI) PlanForward() {
	if g.planTree != nil && g.planTree.Forward(0) {
		g.refreshHint()
	}
}

// PlanNextVariation switches to the next sibling variation.
func (g *BoardUI) PlanNextVariation() {
	if g.planTree != nil && g.planTree.NextVariation() {
		g.refreshHint()
	}
}

// Close disconnects the engine and closes the SGF record.
func (g *BoardUI) Close() {
	g.planTree = nil
	if g.eng == nil {
		return
	}
	g.eng.Close()
	g.mu.Lock()
	if g.record != nil {
		g.record.Close()
	}
	g.mu.Unlock()
}

func (g *BoardUI) SetConfig(c *config.Config) {
	g.styles = []tcell.Color{
		tcell.PaletteColor(c.Theme.Colors.BoardColor),        // styleBoard
		tcell.PaletteColor(c.Theme.Colors.BlackColor),        // styleBlack
		tcell.PaletteColor(c.Theme.Colors.WhiteColor),        // styleWhite
		tcell.PaletteColor(c.Theme.Colors.BoardColorAlt),     // styleBoardAlt
		tcell.PaletteColor(c.Theme.Colors.HintColor),         // styleHint
		tcell.PaletteColor(c.Theme.Colors.CursorColorFG),     // styleCursorFG
		tcell.PaletteColor(c.Theme.Colors.LastPlayedColorBG), // styleLastPlayed
		tcell.PaletteColor(c.Theme.Colors.CursorColorBG),     // styleCursorBG
		tcell.PaletteColor(c.Theme.Colors.LineColor),         // styleLine
	}
	g.cfg = c
}

func (g *BoardUI) refreshHint() {
	g.mu.Lock()
	st := g.BoardState
	finished := g.finished
	lastTurnPass := g.lastTurnPass
	g.mu.Unlock()

	if g.infoPanel != nil {
		g.infoPanel.SetBoardState(st)
	}

	if g.focusMode {
		g.hint.SetText("  f to toggle")
		return
	}

	var statusLine, turnLine, controlsLine string

	switch {
	case g.planTree != nil:
		node := g.planTree.Current
		statusLine = "  ◇ Exploring\n"
		turnLine = fmt.Sprintf("  %s to play  ● %d  ○ %d\n", node.ToMove(),
			node.Board.Count(types.Black), node.Board.Count(types.White))
		controlsLine = "  ⏎ play  p pass  [/] step  v variation  e/q leave"
	case finished:
		statusLine = "───────── Game Complete ─────────\n"
		turnLine = fmt.Sprintf("  Result: %s\n", st.Outcome)
		controlsLine = "  q · return to menu"
	default:
		if lastTurnPass {
			statusLine = "  ○ Opponent passed\n"
		}
		if g.isMyTurn() {
			disc := "●"
			color := "Black"
			if g.eng.GetPlayerColor() == int(types.White) {
				disc = "○"
				color = "White"
			}
			if len(st.LegalMoves) == 0 {
				turnLine = fmt.Sprintf("  %s No legal move (%s), p to pass\n", disc, color)
			} else {
				turnLine = fmt.Sprintf("  %s Your move (%s)  ● %d  ○ %d\n", disc, color, st.BlackCount, st.WhiteCount)
			}
		} else {
			turnLine = "  ◌ Thinking...\n"
		}
		controlsLine = "  hjkl/↑↓←→ move  ⏎ play  p pass  e explore  f focus  q quit"
	}

	g.hint.SetText(statusLine + turnLine + controlsLine)
}

// IsFinished returns true if the game is over.
func (g *BoardUI) IsFinished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished
}

// MoveHistory returns a copy of the moves played so far.
func (g *BoardUI) MoveHistory() []sgf.MoveEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sgf.MoveEntry(nil), g.moveHistory...)
}

// drawDiscCell draws one square, 2 characters wide.
func drawDiscCell(s tcell.Screen, c tcell.Style, r rune, x, y, l, t int) {
	s.SetContent(l+x*2, t+y, r, nil, c)
	s.SetContent(l+x*2+1, t+y, ' ', nil, c)
}

// drawCoordinates labels columns a-h under the board and rows 1-8 from the top.
func (g *BoardUI) drawCoordinates(s tcell.Screen, x, y int, st *types.BoardState) {
	w, h := st.Width(), st.Height()
	style := tcell.StyleDefault
	highlight := tcell.StyleDefault.Background(g.styles[styleCursorBG])
	lpHighlight := tcell.StyleDefault.Background(g.styles[styleLastPlayed])

	for ix := 0; ix < w; ix++ {
		_style := style
		if ix == g.selX {
			_style = highlight
		} else if ix == st.LastMove.X {
			_style = lpHighlight
		}
		s.SetContent(x+4+(ix*2), y+h+1, rune('a'+ix), nil, _style)
		s.SetContent(x+4+(ix*2)+1, y+h+1, ' ', nil, _style)
	}

	for iy := 0; iy < h; iy++ {
		_style := style
		if iy == g.selY {
			_style = highlight
		} else if iy == st.LastMove.Y {
			_style = lpHighlight
		}
		s.SetContent(x+2, y+iy, rune('1'+iy), nil, _style)
	}
}
