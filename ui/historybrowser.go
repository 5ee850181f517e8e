package ui

import (
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"othello-local/config"
	"othello-local/sgf"
	"othello-local/types"
)

// HistoryBrowserUI provides a screen for browsing saved SGF game history.
// Enter opens the selected game for step-by-step review.
type HistoryBrowserUI struct {
	flex     *tview.Flex
	gameList *tview.List
	preview  *tview.Box
	hint     *tview.TextView
	dir      string
	games    []sgf.GameInfo
	boards   map[int]types.Board // cached final positions
	selected int
	review   *sgf.GameTree // non-nil while stepping through a game
	onDone   func()
}

const (
	browseHint = "  [dimgray]⏎[-] review  [dimgray]d[-] delete  [dimgray]q[-] back"
	reviewHint = "  [dimgray]←/→[-] step  [dimgray]home/end[-] jump  [dimgray]q[-] close review"
)

// NewHistoryBrowser creates a history browser over config.HistoryDir().
func NewHistoryBrowser(onDone func()) *HistoryBrowserUI {
	return NewHistoryBrowserIn(config.HistoryDir(), onDone)
}

// NewHistoryBrowserIn creates a history browser over dir.
func NewHistoryBrowserIn(dir string, onDone func()) *HistoryBrowserUI {
	hb := &HistoryBrowserUI{
		dir:    dir,
		onDone: onDone,
		boards: make(map[int]types.Board),
	}

	hb.gameList = tview.NewList()
	hb.gameList.SetBorder(true)
	hb.gameList.SetTitle(" Game History ")
	hb.gameList.ShowSecondaryText(false)
	hb.gameList.SetHighlightFullLine(true)
	hb.gameList.SetMainTextStyle(tcell.StyleDefault.Foreground(MenuColors.Label))
	hb.gameList.SetSelectedStyle(tcell.StyleDefault.
		Foreground(MenuColors.ButtonText).
		Background(MenuColors.ButtonFocus))

	hb.preview = tview.NewBox()
	hb.preview.SetBorder(true)
	hb.preview.SetTitle(" Preview ")
	hb.preview.SetDrawFunc(hb.drawPreview)

	hb.hint = tview.NewTextView()
	hb.hint.SetDynamicColors(true)
	hb.hint.SetBorder(false)
	hb.hint.SetText(browseHint)

	hb.gameList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		hb.selected = index
	})
	hb.gameList.SetInputCapture(hb.handleInput)

	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(hb.gameList, 38, 0, true).
		AddItem(hb.preview, 0, 1, false)

	hb.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topRow, 0, 1, true).
		AddItem(hb.hint, 1, 0, false)

	hb.loadGames()
	return hb
}

// Flex returns the flex container for this UI.
func (hb *HistoryBrowserUI) Flex() *tview.Flex {
	return hb.flex
}

// Refresh reloads the game list from disk.
func (hb *HistoryBrowserUI) Refresh() {
	hb.closeReview()
	hb.boards = make(map[int]types.Board)
	hb.loadGames()
}

func (hb *HistoryBrowserUI) loadGames() {
	hb.gameList.Clear()
	hb.games = nil
	hb.selected = 0

	games, err := sgf.ListGames(hb.dir)
	if err != nil || len(games) == 0 {
		hb.gameList.AddItem("[dimgray]No games found[-]", "", 0, nil)
		return
	}

	hb.games = games
	for _, g := range games {
		result := g.Result
		if result == "" || result == "?" {
			result = "..."
		}
		hb.gameList.AddItem(fmt.Sprintf("%s  %2d moves  %s", g.Date, g.MoveCount, result), "", 0, nil)
	}
}

func (hb *HistoryBrowserUI) handleInput(event *tcell.EventKey) *tcell.EventKey {
	if hb.review != nil {
		return hb.handleReviewInput(event)
	}
	switch event.Key() {
	case tcell.KeyEscape:
		if hb.onDone != nil {
			hb.onDone()
		}
		return nil
	case tcell.KeyEnter:
		hb.openReview()
		return nil
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			if hb.onDone != nil {
				hb.onDone()
			}
			return nil
		case 'd':
			hb.deleteSelected()
			return nil
		}
	}
	return event
}

func (hb *HistoryBrowserUI) handleReviewInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		hb.closeReview()
	case tcell.KeyLeft:
		hb.review.Back()
	case tcell.KeyRight:
		hb.review.Forward(0)
	case tcell.KeyHome:
		for hb.review.Back() {
		}
	case tcell.KeyEnd:
		hb.review.ToEnd()
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q':
			hb.closeReview()
		case 'h':
			hb.review.Back()
		case 'l':
			hb.review.Forward(0)
		}
	}
	// The list must not move while reviewing.
	return nil
}

// openReview loads the selected game into a tree positioned at the start.
func (hb *HistoryBrowserUI) openReview() {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return
	}
	tree, err := sgf.LoadGameTree(hb.games[hb.selected].FilePath)
	if err != nil {
		log.Warn().Err(err).Str("file", hb.games[hb.selected].FileName).Msg("review-load-failed")
		return
	}
	hb.review = tree
	hb.preview.SetTitle(" Review ")
	hb.hint.SetText(reviewHint)
}

func (hb *HistoryBrowserUI) closeReview() {
	hb.review = nil
	hb.preview.SetTitle(" Preview ")
	hb.hint.SetText(browseHint)
}

// deleteSelected removes the currently selected game file.
func (hb *HistoryBrowserUI) deleteSelected() {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return
	}
	game := hb.games[hb.selected]
	if err := os.Remove(game.FilePath); err != nil {
		log.Warn().Err(err).Str("file", game.FileName).Msg("history-delete-failed")
	}
	hb.boards = make(map[int]types.Board)
	hb.loadGames()
}

// drawPreview renders a mini board and the game metadata.
func (hb *HistoryBrowserUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if hb.selected < 0 || hb.selected >= len(hb.games) {
		return x, y, width, height
	}
	game := hb.games[hb.selected]

	var (
		board   types.Board
		ok      bool
		moveIdx = -1
		last    = types.PassPos
	)
	if hb.review != nil {
		node := hb.review.Current
		board, ok = node.Board, true
		moveIdx = hb.review.Depth()
		if !node.IsRoot() && !node.Move.IsPass() {
			last = types.BoardPos{X: node.Move.X, Y: node.Move.Y}
		}
	} else if board, ok = hb.boards[hb.selected]; !ok {
		if b, _, err := sgf.ReplayToEnd(game.FilePath); err == nil {
			board, ok = b, true
			hb.boards[hb.selected] = board
		}
	}
	if !ok {
		return x, y, width, height
	}

	startX, startY := x+2, y+1
	if width < types.Size*2+4 || height < types.Size+7 {
		return x, y, width, height
	}

	emptyStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(240))
	blackStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(255)).Bold(true)
	whiteStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	lastBG := tcell.PaletteColor(130)

	for by := 0; by < types.Size; by++ {
		for bx := 0; bx < types.Size; bx++ {
			ch, style := '·', emptyStyle
			switch board.CellOwner(by, bx) {
			case types.Black:
				ch, style = '●', blackStyle
			case types.White:
				ch, style = '○', whiteStyle
			}
			if bx == last.X && by == last.Y {
				style = style.Background(lastBG)
			}
			screen.SetContent(startX+bx*2, startY+by, ch, nil, style)
		}
	}

	infoY := startY + types.Size + 1
	infoStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(250))
	dimStyle := tcell.StyleDefault.Foreground(tcell.PaletteColor(245))

	counts := fmt.Sprintf("● %d  ○ %d", board.Count(types.Black), board.Count(types.White))
	drawText(screen, startX, infoY, counts, infoStyle)
	moves := fmt.Sprintf("| %d moves", game.MoveCount)
	if moveIdx >= 0 {
		moves = fmt.Sprintf("| move %d/%d", moveIdx, game.MoveCount)
	}
	drawText(screen, startX+len([]rune(counts))+1, infoY, moves, dimStyle)

	infoY++
	drawText(screen, startX, infoY, "B: "+game.PlayerBlack, dimStyle)
	infoY++
	drawText(screen, startX, infoY, "W: "+game.PlayerWhite, dimStyle)

	infoY++
	result := game.Result
	if result == "" || result == "?" {
		result = "Unfinished"
	}
	drawText(screen, startX, infoY, "Result: "+result, tcell.StyleDefault.Foreground(tcell.PaletteColor(109)))

	return x, y, width, height
}

// drawText writes a string to the screen at the given position.
func drawText(screen tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, ch := range []rune(text) {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
