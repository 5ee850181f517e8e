package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// menuField is one focusable row of a MenuCard.
type menuField interface {
	SetFocused(bool)
	HandleKey(*tcell.EventKey) bool
	// Draw renders the field and returns the rows used.
	Draw(screen tcell.Screen, x, y, width int) int
}

func cardStyle(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Foreground(fg).Background(MenuColors.CardBG)
}

// drawString writes text from x and returns the column after it.
func drawString(screen tcell.Screen, x, y int, text string, style tcell.Style) int {
	for _, ch := range text {
		screen.SetContent(x, y, ch, nil, style)
		x++
	}
	return x
}

// MenuCard is a rounded card holding a column of fields and a button row.
// Tab and Shift+Tab move focus; the focused field gets every other key.
type MenuCard struct {
	*tview.Box
	title   string
	fields  []menuField
	buttons []*MenuButton
	focus   int // index into fields, then buttons
	footer  string
}

// NewMenuCard creates a new menu card with the given title.
func NewMenuCard(title string) *MenuCard {
	return &MenuCard{Box: tview.NewBox(), title: title}
}

// AddField appends a field below the existing ones.
func (c *MenuCard) AddField(f menuField) *MenuCard {
	c.fields = append(c.fields, f)
	c.syncFocus()
	return c
}

// AddButton appends a button to the bottom row.
func (c *MenuCard) AddButton(b *MenuButton) *MenuCard {
	c.buttons = append(c.buttons, b)
	c.syncFocus()
	return c
}

// SetFooter sets the dim help line under the card.
func (c *MenuCard) SetFooter(text string) *MenuCard {
	c.footer = text
	return c
}

func (c *MenuCard) items() int {
	return len(c.fields) + len(c.buttons)
}

func (c *MenuCard) syncFocus() {
	for i, f := range c.fields {
		f.SetFocused(i == c.focus)
	}
	for i, b := range c.buttons {
		b.SetFocused(len(c.fields)+i == c.focus)
	}
}

func (c *MenuCard) moveFocus(delta int) {
	n := c.items()
	if n == 0 {
		return
	}
	c.focus = (c.focus + delta + n) % n
	c.syncFocus()
}

// InputHandler routes keys to the focused field or button.
func (c *MenuCard) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return c.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		switch event.Key() {
		case tcell.KeyTab:
			c.moveFocus(1)
			return
		case tcell.KeyBacktab:
			c.moveFocus(-1)
			return
		}
		if c.focus < len(c.fields) {
			if !c.fields[c.focus].HandleKey(event) && event.Key() == tcell.KeyEnter {
				// Enter on a field jumps to the primary button.
				c.focus = len(c.fields)
				c.syncFocus()
			}
			return
		}
		switch event.Key() {
		case tcell.KeyLeft:
			if c.focus > len(c.fields) {
				c.moveFocus(-1)
			}
			return
		case tcell.KeyRight:
			if c.focus < c.items()-1 {
				c.moveFocus(1)
			}
			return
		}
		c.buttons[c.focus-len(c.fields)].HandleKey(event)
	})
}

// Draw renders the card border, title, fields and buttons.
func (c *MenuCard) Draw(screen tcell.Screen) {
	c.Box.DrawForSubclass(screen, c)

	x, y, width, height := c.GetInnerRect()
	if width < 10 || height < 5 {
		return
	}

	border := cardStyle(MenuColors.BorderFocus)
	bg := tcell.StyleDefault.Background(MenuColors.CardBG)
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, bg)
		}
	}
	for col := x + 1; col < x+width-1; col++ {
		screen.SetContent(col, y, '─', nil, border)
		screen.SetContent(col, y+height-1, '─', nil, border)
	}
	for row := y + 1; row < y+height-1; row++ {
		screen.SetContent(x, row, '│', nil, border)
		screen.SetContent(x+width-1, row, '│', nil, border)
	}
	screen.SetContent(x, y, '╭', nil, border)
	screen.SetContent(x+width-1, y, '╮', nil, border)
	screen.SetContent(x, y+height-1, '╰', nil, border)
	screen.SetContent(x+width-1, y+height-1, '╯', nil, border)

	row := y + 2
	if c.title != "" {
		title := "◐  " + c.title
		titleX := x + (width-len([]rune(title)))/2
		screen.SetContent(titleX, row, '◐', nil, cardStyle(MenuColors.TitleAccent))
		drawString(screen, titleX+3, row, c.title, cardStyle(MenuColors.Title).Bold(true))
		c.drawDivider(screen, row+2)
		row += 4
	}

	for _, f := range c.fields {
		row += f.Draw(screen, x+2, row, width-4) + 1
	}

	if len(c.buttons) > 0 {
		c.drawDivider(screen, row)
		row += 2
		col := x + 3
		for _, b := range c.buttons {
			col += b.Draw(screen, col, row) + 2
		}
	}

	if c.footer != "" && y+height-2 > row {
		drawString(screen, x+2, y+height-2, c.footer, cardStyle(MenuColors.Hint))
	}
}

func (c *MenuCard) drawDivider(screen tcell.Screen, row int) {
	x, _, width, _ := c.GetInnerRect()
	style := cardStyle(MenuColors.BorderFocus)
	screen.SetContent(x, row, '├', nil, style)
	for col := x + 1; col < x+width-1; col++ {
		screen.SetContent(col, row, '─', nil, style)
	}
	screen.SetContent(x+width-1, row, '┤', nil, style)
}

// MenuButton is a pill that fires on Enter.
type MenuButton struct {
	label    string
	primary  bool
	focused  bool
	onSelect func()
}

// NewMenuButton creates a new menu button.
func NewMenuButton(label string, primary bool, onSelect func()) *MenuButton {
	if primary {
		label = "▶ " + label
	}
	return &MenuButton{label: label, primary: primary, onSelect: onSelect}
}

func (b *MenuButton) SetFocused(focused bool) { b.focused = focused }

// HandleKey fires the button on Enter or space.
func (b *MenuButton) HandleKey(event *tcell.EventKey) bool {
	if event.Key() == tcell.KeyEnter || (event.Key() == tcell.KeyRune && event.Rune() == ' ') {
		if b.onSelect != nil {
			b.onSelect()
		}
		return true
	}
	return false
}

// Draw renders the button and returns its width.
func (b *MenuButton) Draw(screen tcell.Screen, x, y int) int {
	if b.focused {
		style := tcell.StyleDefault.Foreground(MenuColors.ButtonText).Background(MenuColors.ButtonFocus)
		end := drawString(screen, x, y, " "+b.label+" ", style)
		return end - x
	}
	screen.SetContent(x, y, '[', nil, cardStyle(MenuColors.Border))
	end := drawString(screen, x+1, y, b.label, cardStyle(MenuColors.Hint))
	screen.SetContent(end, y, ']', nil, cardStyle(MenuColors.Border))
	return end + 1 - x
}

// RadioOption represents a single radio button option.
type RadioOption struct {
	Label       string
	Description string
}

// RadioSelect is a labelled group of mutually exclusive options.
type RadioSelect struct {
	label    string
	options  []RadioOption
	selected int
	focused  bool
	onChange func(int)
}

// NewRadioSelect creates a new radio select component.
func NewRadioSelect(label string, options []RadioOption, initial int, onChange func(int)) *RadioSelect {
	return &RadioSelect{label: label, options: options, selected: initial, onChange: onChange}
}

func (r *RadioSelect) SetFocused(focused bool) { r.focused = focused }

// HandleKey moves the selection with the arrow keys or hjkl.
func (r *RadioSelect) HandleKey(event *tcell.EventKey) bool {
	delta := 0
	switch event.Key() {
	case tcell.KeyUp, tcell.KeyLeft:
		delta = -1
	case tcell.KeyDown, tcell.KeyRight:
		delta = 1
	case tcell.KeyRune:
		switch event.Rune() {
		case 'k', 'h':
			delta = -1
		case 'j', 'l':
			delta = 1
		}
	}
	if delta == 0 {
		return false
	}
	r.SetSelected(r.selected + delta)
	return true
}

// Draw renders the label and one row per option.
func (r *RadioSelect) Draw(screen tcell.Screen, x, y, width int) int {
	screen.SetContent(x, y, '◈', nil, cardStyle(MenuColors.TitleAccent))
	drawString(screen, x+2, y, r.label, cardStyle(MenuColors.Label))

	for i, opt := range r.options {
		row := y + 1 + i
		style := cardStyle(MenuColors.Unselected)
		bullet := '○'
		if i == r.selected {
			style = cardStyle(MenuColors.Selected)
			bullet = '●'
			if r.focused {
				screen.SetContent(x+2, row, '▸', nil, style)
			}
		}
		screen.SetContent(x+4, row, bullet, nil, style)
		col := drawString(screen, x+6, row, opt.Label, style)
		if opt.Description != "" && col+1+len([]rune(opt.Description)) <= x+width {
			drawString(screen, col+1, row, opt.Description, cardStyle(MenuColors.Hint))
		}
	}
	return 1 + len(r.options)
}

// Selected returns the currently selected index.
func (r *RadioSelect) Selected() int {
	return r.selected
}

// SetSelected sets the selected index, ignoring out of range values.
func (r *RadioSelect) SetSelected(index int) {
	if index < 0 || index >= len(r.options) || index == r.selected {
		return
	}
	r.selected = index
	if r.onChange != nil {
		r.onChange(r.selected)
	}
}

// DepthSlider picks a search depth within [min, max].
type DepthSlider struct {
	label    string
	min, max int
	value    int
	focused  bool
	onChange func(int)
}

// NewDepthSlider creates a slider starting at initial, clamped to the range.
func NewDepthSlider(label string, min, max, initial int, onChange func(int)) *DepthSlider {
	s := &DepthSlider{label: label, min: min, max: max, value: min, onChange: onChange}
	if initial >= min && initial <= max {
		s.value = initial
	}
	return s
}

func (s *DepthSlider) SetFocused(focused bool) { s.focused = focused }

// HandleKey adjusts the value with left/right or h/l.
func (s *DepthSlider) HandleKey(event *tcell.EventKey) bool {
	switch {
	case event.Key() == tcell.KeyLeft || (event.Key() == tcell.KeyRune && event.Rune() == 'h'):
		s.SetValue(s.value - 1)
	case event.Key() == tcell.KeyRight || (event.Key() == tcell.KeyRune && event.Rune() == 'l'):
		s.SetValue(s.value + 1)
	default:
		return false
	}
	return true
}

// Draw renders "◈ label  ◀ ████░░ n ▶" on one row.
func (s *DepthSlider) Draw(screen tcell.Screen, x, y, width int) int {
	active := cardStyle(MenuColors.Selected)
	idle := cardStyle(MenuColors.Unselected)
	arrows := idle
	if s.focused {
		arrows = active
		screen.SetContent(x, y, '▸', nil, active)
	}
	screen.SetContent(x+2, y, '◈', nil, cardStyle(MenuColors.TitleAccent))
	col := drawString(screen, x+4, y, s.label, cardStyle(MenuColors.Label)) + 3

	screen.SetContent(col, y, '◀', nil, arrows)
	col += 2
	for v := s.min; v <= s.max; v++ {
		if v <= s.value {
			screen.SetContent(col, y, '█', nil, active)
		} else {
			screen.SetContent(col, y, '░', nil, idle)
		}
		col++
	}
	col = drawString(screen, col+1, y, fmt.Sprintf("%d", s.value), cardStyle(MenuColors.Label))
	screen.SetContent(col+1, y, '▶', nil, arrows)
	return 1
}

// Value returns the current slider value.
func (s *DepthSlider) Value() int {
	return s.value
}

// SetValue sets the slider value, ignoring out of range values.
func (s *DepthSlider) SetValue(v int) {
	if v < s.min || v > s.max || v == s.value {
		return
	}
	s.value = v
	if s.onChange != nil {
		s.onChange(s.value)
	}
}
