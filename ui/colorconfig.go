package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"othello-local/config"
	"othello-local/types"
)

// ColorConfigUI picks the two square colors of the board with a live preview.
type ColorConfigUI struct {
	flex      *tview.Flex
	colorList *tview.List
	preview   *tview.Box
	cfg       *config.Config
	onDone    func()

	selectedBoard int
	selectedAlt   int
	editingAlt    bool // true = editing the alternate squares
}

type paletteEntry struct {
	code int
	name string
}

// Felt greens first, then the neutral tones.
var squareColors = []paletteEntry{
	{22, "Dark Green"},
	{28, "Green"},
	{29, "Sea Green"},
	{34, "Bright Green"},
	{23, "Teal"},
	{24, "Dark Cyan"},
	{17, "Navy Blue"},
	{54, "Purple"},
	{94, "Saddle Brown"},
	{136, "Dark Brown"},
	{172, "Brown"},
	{180, "Tan"},
	{236, "Dark Gray"},
	{240, "Gray"},
	{244, "Medium Gray"},
	{250, "Light Gray"},
}

// NewColorConfig creates a new color configuration screen.
func NewColorConfig(cfg *config.Config, onDone func()) *ColorConfigUI {
	cc := &ColorConfigUI{
		cfg:           cfg,
		onDone:        onDone,
		selectedBoard: cfg.Theme.Colors.BoardColor,
		selectedAlt:   cfg.Theme.Colors.BoardColorAlt,
	}

	cc.colorList = tview.NewList()
	cc.colorList.SetBorder(true)
	cc.colorList.ShowSecondaryText(false)
	cc.populateColorList()

	cc.colorList.SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(squareColors) {
			return
		}
		if cc.editingAlt {
			cc.selectedAlt = squareColors[index].code
		} else {
			cc.selectedBoard = squareColors[index].code
		}
	})

	cc.colorList.SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
		if index < 0 || index >= len(squareColors) {
			return
		}
		if !cc.editingAlt {
			// Pick the alternate squares next.
			cc.editingAlt = true
			cc.populateColorList()
			return
		}
		cc.cfg.Theme.Colors.BoardColor = cc.selectedBoard
		cc.cfg.Theme.Colors.BoardColorAlt = cc.selectedAlt
		if err := cc.cfg.Save(); err != nil {
			log.Warn().Err(err).Msg("config-save-failed")
		}
		cc.editingAlt = false
		cc.populateColorList()
		onDone()
	})

	cc.preview = tview.NewBox()
	cc.preview.SetBorder(true)
	cc.preview.SetTitle(" Board Preview ")
	cc.preview.SetDrawFunc(cc.drawPreview)

	cc.flex = tview.NewFlex().
		AddItem(cc.colorList, 30, 0, true).
		AddItem(cc.preview, 0, 1, false)

	return cc
}

func (cc *ColorConfigUI) populateColorList() {
	cc.colorList.Clear()

	current := cc.selectedBoard
	if cc.editingAlt {
		cc.colorList.SetTitle(" Alternate Squares (Tab) ")
		current = cc.selectedAlt
	} else {
		cc.colorList.SetTitle(" Board Squares (Tab) ")
	}
	for i, c := range squareColors {
		cc.colorList.AddItem(fmt.Sprintf("[#%06x]████[-] %s (%d)",
			tcell.PaletteColor(c.code).Hex(), c.name, c.code),
			"", rune('a'+i), nil)
		if c.code == current {
			cc.colorList.SetCurrentItem(i)
		}
	}
	// Filling the list fires the changed callback; keep the configured value.
	if cc.editingAlt {
		cc.selectedAlt = current
	} else {
		cc.selectedBoard = current
	}
}

// drawPreview draws the opening position plus one move in the selected colors.
func (cc *ColorConfigUI) drawPreview(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	if width < types.Size*2+4 || height < types.Size+4 {
		return x, y, width, height
	}
	board := types.NewBoard().MustApply(types.Coordinate{Row: 2, Col: 3}, types.Black)
	colors := cc.cfg.Theme.Colors
	symbols := cc.cfg.Theme.Symbols
	startX, startY := x+2, y+1

	for row := 0; row < types.Size; row++ {
		for col := 0; col < types.Size; col++ {
			bg := tcell.PaletteColor(cc.selectedBoard)
			if (row+col)%2 == 1 {
				bg = tcell.PaletteColor(cc.selectedAlt)
			}
			style := tcell.StyleDefault.Background(bg).Foreground(tcell.PaletteColor(colors.LineColor))
			ch := symbols.EmptySquare
			switch board.CellOwner(row, col) {
			case types.Black:
				ch, style = symbols.BlackDisc, style.Foreground(tcell.PaletteColor(colors.BlackColor))
			case types.White:
				ch, style = symbols.WhiteDisc, style.Foreground(tcell.PaletteColor(colors.WhiteColor))
			default:
				if board.IsLegal(types.Coordinate{Row: row, Col: col}, types.White) {
					ch, style = symbols.LegalHint, style.Foreground(tcell.PaletteColor(colors.HintColor))
				}
			}
			drawDiscCell(screen, style, ch, col, row, startX, startY)
		}
	}

	info := fmt.Sprintf("Board: %d  Alt: %d", cc.selectedBoard, cc.selectedAlt)
	drawText(screen, startX, startY+types.Size+1, info, tcell.StyleDefault)
	return x, y, width, height
}

// Flex returns the flex container for this UI.
func (cc *ColorConfigUI) Flex() *tview.Flex {
	return cc.flex
}

// SetInputCapture sets the input capture for the color list.
func (cc *ColorConfigUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	cc.colorList.SetInputCapture(capture)
}

// ToggleMode switches between the two square colors.
func (cc *ColorConfigUI) ToggleMode() {
	cc.editingAlt = !cc.editingAlt
	cc.populateColorList()
}
