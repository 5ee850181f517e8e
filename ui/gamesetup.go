package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"othello-local/config"
	"othello-local/engine"
	"othello-local/types"
)

// GameSetupUI is the new-game card: color, search depth and opponent.
type GameSetupUI struct {
	card *MenuCard
	flex *tview.Flex

	playerColor int
	depth       int
	external    bool
	enginePath  string
}

// SetupActions are the callbacks behind the setup card's buttons.
type SetupActions struct {
	Start   func(engine.GameConfig)
	History func()
	Colors  func()
	Quit    func()
}

// NewGameSetup creates the setup card from the configured defaults.
func NewGameSetup(cfg *config.Config, actions SetupActions) *GameSetupUI {
	setup := &GameSetupUI{
		playerColor: cfg.Engine.DefaultColor,
		depth:       cfg.Engine.Depth,
		enginePath:  cfg.Engine.Path,
	}
	if setup.playerColor != int(types.White) {
		setup.playerColor = int(types.Black)
	}

	colors := NewRadioSelect("Your Color", []RadioOption{
		{Label: "Black", Description: "plays first"},
		{Label: "White", Description: "plays second"},
	}, setup.playerColor-1, func(i int) {
		setup.playerColor = i + 1
	})
	depth := NewDepthSlider("Search Depth", config.MinDepth, config.MaxDepth, setup.depth, func(v int) {
		setup.depth = v
	})

	card := NewMenuCard("O T H E L L O")
	card.AddField(colors).AddField(depth)
	if setup.enginePath != "" {
		card.AddField(NewRadioSelect("Opponent", []RadioOption{
			{Label: "Built-in", Description: "alpha-beta search"},
			{Label: "External", Description: setup.enginePath},
		}, 0, func(i int) {
			setup.external = i == 1
		}))
	}

	card.AddButton(NewMenuButton("Start", true, func() {
		if actions.Start != nil {
			actions.Start(setup.Config())
		}
	}))
	if actions.History != nil {
		card.AddButton(NewMenuButton("History", false, actions.History))
	}
	if actions.Colors != nil {
		card.AddButton(NewMenuButton("Colors", false, actions.Colors))
	}
	if actions.Quit != nil {
		card.AddButton(NewMenuButton("Quit", false, actions.Quit))
	}
	card.SetFooter("Tab: next  ←→/↑↓: change  Enter: select")

	rows := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(card, 22, 0, true).
		AddItem(nil, 0, 1, false)

	setup.card = card
	setup.flex = CreateCenteredForm(rows, 48)
	return setup
}

// Config returns the game configuration currently selected.
func (s *GameSetupUI) Config() engine.GameConfig {
	gameCfg := engine.GameConfig{
		PlayerColor: s.playerColor,
		Depth:       s.depth,
	}
	if s.external {
		gameCfg.EnginePath = s.enginePath
	}
	return gameCfg
}

// Form returns the centered container holding the card.
func (s *GameSetupUI) Form() *tview.Flex {
	return s.flex
}

// SetInputCapture sets the input capture function for the card.
func (s *GameSetupUI) SetInputCapture(capture func(event *tcell.EventKey) *tcell.EventKey) {
	s.card.SetInputCapture(capture)
}
