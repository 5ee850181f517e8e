// othello-local is a terminal application to play Othello against a
// built-in alpha-beta engine, or an external engine, offline.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"othello-local/config"
	"othello-local/engine"
	"othello-local/engine/gtp"
	"othello-local/engine/local"
	"othello-local/logging"
	"othello-local/storage"
	"othello-local/types"
	"othello-local/ui"
)

// Version is set at build time via ldflags
var Version = "dev"

// Command-line flags
var (
	flagColor      = flag.String("color", "", "Player color (black or white)")
	flagDepth      = flag.Int("depth", 0, "Search depth in plies (1-10)")
	flagEngine     = flag.String("engine", "", "External engine command instead of the built-in engine")
	flagQuickStart = flag.Bool("play", false, "Start game immediately with defaults")
	flagFocus      = flag.Bool("focus", false, "Start in focus mode (fullscreen board)")
	flagNoArchive  = flag.Bool("no-archive", false, "Do not archive finished games to SQLite")
	flagLogLevel   = flag.String("log-level", "", "Log level when a log file is configured")
	flagVersion    = flag.Bool("version", false, "Print version and exit")
)

var app *tview.Application
var rootPage *tview.Pages
var gameBoard *ui.BoardUI
var gameFrame *tview.Flex
var gameHint *tview.TextView
var history *ui.HistoryBrowserUI
var cfg *config.Config

func main() {
	flag.Parse()

	if *flagVersion {
		fmt.Printf("othello-local %s\n", Version)
		return
	}

	var err error
	cfg, err = config.InitConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	closer := setupLogging()
	defer closer.Close()

	var archive *storage.Archive
	if !*flagNoArchive {
		archive, err = storage.Open(cfg.ArchivePath())
		if err != nil {
			// Games are still recorded as SGF.
			log.Warn().Err(err).Msg("archive-unavailable")
			archive = nil
		} else {
			defer archive.Close()
		}
	}

	quickStart := *flagQuickStart || *flagColor != "" || *flagDepth > 0 || *flagEngine != "" || *flagFocus

	app = tview.NewApplication()
	rootPage = tview.NewPages()
	rootPage.SetBorder(true).SetTitle(" ◐ othello ")

	gameHint = tview.NewTextView()
	gameHint.SetBorder(false)
	gameBoard = ui.NewBoard(app, cfg, gameHint)
	if archive != nil {
		gameBoard.SetArchive(archive)
	}
	gameFrame = ui.CreateGameLayout(gameBoard, gameHint)
	gameBoard.Box.SetInputCapture(boardInput)

	setupUI := ui.NewGameSetup(cfg, ui.SetupActions{
		Start: startGame,
		History: func() {
			history.Refresh()
			rootPage.SwitchToPage("history")
		},
		Colors: func() {
			rootPage.SwitchToPage("colors")
		},
		Quit: func() {
			app.Stop()
		},
	})
	setupUI.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			app.Stop()
			return nil
		}
		return event
	})

	history = ui.NewHistoryBrowser(func() {
		rootPage.SwitchToPage("setup")
	})

	colorConfig := ui.NewColorConfig(cfg, func() {
		gameBoard.SetConfig(cfg)
		rootPage.SwitchToPage("setup")
	})
	colorConfig.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || (event.Key() == tcell.KeyRune && event.Rune() == 'q') {
			rootPage.SwitchToPage("setup")
			return nil
		}
		if event.Key() == tcell.KeyTab {
			colorConfig.ToggleMode()
			return nil
		}
		return event
	})

	rootPage.AddPage("setup", setupUI.Form(), true, !quickStart)
	rootPage.AddPage("gameview", gameFrame, true, quickStart)
	rootPage.AddPage("history", history.Flex(), true, false)
	rootPage.AddPage("colors", colorConfig.Flex(), true, false)

	if quickStart {
		startGame(buildGameConfigFromFlags())
		if *flagFocus {
			gameBoard.SetFocusMode(true)
			ui.BuildFocusLayout(gameFrame, gameBoard)
		}
	}

	if err := app.SetRoot(rootPage, true).Run(); err != nil {
		log.Error().Err(err).Msg("tui-failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	gameBoard.Close()
}

// setupLogging writes JSON logs to the configured file. The terminal is
// owned by tview, so without a file nothing is logged.
func setupLogging() io.Closer {
	level := cfg.Log.Level
	if *flagLogLevel != "" {
		level = *flagLogLevel
	}
	_, closer, err := logging.Setup(logging.Options{Level: level, File: cfg.LogFile()})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %s\n", err)
		logging.Discard()
		return io.NopCloser(nil)
	}
	return closer
}

func boardInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyRune && event.Rune() == 'q' {
		switch {
		case gameBoard.IsPlanning():
			gameBoard.TogglePlanning()
		case gameBoard.SelectedTile() != nil:
			gameBoard.ResetSelection()
		default:
			gameBoard.Close()
			rootPage.SwitchToPage("setup")
		}
		return nil
	}
	switch event.Key() {
	case tcell.KeyUp:
		gameBoard.MoveSelection(0, -1)
	case tcell.KeyDown:
		gameBoard.MoveSelection(0, 1)
	case tcell.KeyLeft:
		gameBoard.MoveSelection(-1, 0)
	case tcell.KeyRight:
		gameBoard.MoveSelection(1, 0)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		gameBoard.PlanBack()
	case tcell.KeyEnter:
		selTile := gameBoard.SelectedTile()
		if selTile == nil {
			return nil
		}
		gameBoard.PlayMove(selTile.X, selTile.Y)
	case tcell.KeyRune:
		switch event.Rune() {
		case 'h':
			gameBoard.MoveSelection(-1, 0)
		case 'j':
			gameBoard.MoveSelection(0, 1)
		case 'k':
			gameBoard.MoveSelection(0, -1)
		case 'l':
			gameBoard.MoveSelection(1, 0)
		case 'p':
			gameBoard.Pass()
		case 'e':
			gameBoard.TogglePlanning()
		case '[':
			gameBoard.PlanBack()
		case ']':
			gameBoard.PlanForward()
		case 'v':
			gameBoard.PlanNextVariation()
		case 'f':
			if gameBoard.ToggleFocusMode() {
				ui.BuildFocusLayout(gameFrame, gameBoard)
			} else {
				ui.RebuildNormalLayout(gameFrame, gameBoard, gameHint)
			}
		}
	}
	return event
}

// startGame starts a game with the given configuration.
func startGame(gameCfg engine.GameConfig) {
	var eng engine.GameEngine
	if gameCfg.EnginePath != "" {
		eng = gtp.NewGTPEngine(gameCfg)
	} else {
		eng = local.NewLocalEngine(gameCfg)
	}
	log.Info().Str("opponent", gameCfg.EngineName()).Int("color", gameCfg.PlayerColor).Msg("start-game")

	if err := gameBoard.ConnectEngine(eng, gameCfg); err != nil {
		log.Error().Err(err).Msg("start-game-failed")
		modal := tview.NewModal().
			SetText(fmt.Sprintf("Failed to start game:\n%s", err.Error())).
			AddButtons([]string{"OK"}).
			SetDoneFunc(func(buttonIndex int, buttonLabel string) {
				rootPage.RemovePage("error")
				rootPage.SwitchToPage("setup")
			})
		rootPage.AddPage("error", modal, true, true)
		return
	}
	rootPage.SwitchToPage("gameview")
}

// buildGameConfigFromFlags creates a GameConfig from command-line flags.
func buildGameConfigFromFlags() engine.GameConfig {
	gameCfg := engine.GameConfig{
		PlayerColor: cfg.Engine.DefaultColor,
		Depth:       cfg.Engine.Depth,
		EnginePath:  *flagEngine,
	}

	if *flagColor != "" {
		if side, err := types.ParseSide(*flagColor); err == nil {
			gameCfg.PlayerColor = int(side)
		}
	}
	if *flagDepth >= config.MinDepth && *flagDepth <= config.MaxDepth {
		gameCfg.Depth = *flagDepth
	}
	return gameCfg
}
