// Package local plays the built-in search engine in process.
package local

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"othello-local/engine"
	"othello-local/engine/agent"
	"othello-local/types"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
	ErrCannotPass  = errors.New("a legal move is available")
)

// LocalEngine implements engine.GameEngine with an agent.Agent as the
// opponent. It keeps its own referee board; the agent keeps its own and
// is told about every human move.
type LocalEngine struct {
	config      engine.GameConfig
	playerColor types.Side
	bot         mover
	newBot      func(side types.Side) mover
	log         zerolog.Logger

	board      types.Board
	toMove     types.Side
	moveNumber int
	lastMove   types.BoardPos
	pending    *types.Move // human move the agent has not seen yet
	gameOver   bool
	outcome    string
	closed     bool

	moveCallback func(x, y, color int, boardState *types.BoardState)
	endCallback  func(outcome string)

	mu sync.Mutex
	wg sync.WaitGroup
}

var _ engine.GameEngine = (*LocalEngine)(nil)

// mover is the part of agent.Agent the engine drives.
type mover interface {
	ChooseMove(opp *types.Move, msLeft int) (*types.Move, error)
}

// NewLocalEngine creates an engine for cfg. The game starts on Connect.
func NewLocalEngine(cfg engine.GameConfig) *LocalEngine {
	player := types.Side(cfg.PlayerColor)
	if player != types.White {
		player = types.Black
	}
	g := &LocalEngine{
		config:      cfg,
		playerColor: player,
		log:         log.With().Str("component", "local-engine").Logger(),
		board:       types.NewBoard(),
		toMove:      types.Black,
		lastMove:    types.PassPos,
	}
	g.newBot = func(side types.Side) mover {
		return agent.New(side, agent.WithDepth(cfg.Depth), agent.WithLogger(g.log))
	}
	return g
}

// Connect creates the opponent and, if it moves first, starts its search.
func (g *LocalEngine) Connect() error {
	g.mu.Lock()
	g.bot = g.newBot(g.playerColor.Opponent())
	engineFirst := g.toMove != g.playerColor
	g.mu.Unlock()

	g.log.Info().Str("player", g.playerColor.String()).Int("depth", g.config.Depth).Msg("game-start")
	if engineFirst {
		g.startEngineTurn()
	}
	return nil
}

// GetBoardState returns the current board state.
func (g *LocalEngine) GetBoardState() *types.BoardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

// PlayMove plays the human's disc at column x, row y.
func (g *LocalEngine) PlayMove(x, y int) error {
	g.mu.Lock()
	if g.gameOver {
		g.mu.Unlock()
		return ErrGameOver
	}
	if g.toMove != g.playerColor {
		g.mu.Unlock()
		return ErrNotYourTurn
	}

	coord := types.Coordinate{Row: y, Col: x}
	next, err := g.board.Apply(coord, g.playerColor)
	if err != nil {
		g.mu.Unlock()
		return err
	}
	g.board = next
	g.pending = &types.Move{Coordinate: coord, Side: g.playerColor}
	g.moveNumber++
	g.lastMove = types.BoardPos{X: x, Y: y}
	g.toMove = g.playerColor.Opponent()
	ended := g.checkEnd()
	boardStateCopy := g.snapshot()
	playerColor := int(g.playerColor)
	outcome := g.outcome
	g.mu.Unlock()

	if g.moveCallback != nil {
		g.moveCallback(x, y, playerColor, boardStateCopy)
	}
	if ended {
		if g.endCallback != nil {
			g.endCallback(outcome)
		}
		return nil
	}
	g.startEngineTurn()
	return nil
}

// Pass gives the turn to the engine. It fails while the human still has
// a legal move.
func (g *LocalEngine) Pass() error {
	g.mu.Lock()
	if g.gameOver {
		g.mu.Unlock()
		return ErrGameOver
	}
	if g.toMove != g.playerColor {
		g.mu.Unlock()
		return ErrNotYourTurn
	}
	if g.board.HasAnyLegalMove(g.playerColor) {
		g.mu.Unlock()
		return ErrCannotPass
	}
	g.pending = nil
	g.moveNumber++
	g.lastMove = types.PassPos
	g.toMove = g.playerColor.Opponent()
	boardStateCopy := g.snapshot()
	g.mu.Unlock()

	if g.moveCallback != nil {
		g.moveCallback(-1, -1, int(g.playerColor), boardStateCopy)
	}
	g.startEngineTurn()
	return nil
}

func (g *LocalEngine) startEngineTurn() {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.engineTurn()
	}()
}

// engineTurn lets the agent move, then keeps going while the human has
// no legal reply and has to pass.
func (g *LocalEngine) engineTurn() {
	engineColor := g.playerColor.Opponent()
	for {
		g.mu.Lock()
		if g.gameOver || g.closed {
			g.mu.Unlock()
			return
		}

		pending, bot := g.pending, g.bot
		g.pending = nil
		g.mu.Unlock()

		// Searched unlocked. Only this goroutine touches the agent and
		// the human cannot move until toMove changes below.
		m, err := bot.ChooseMove(pending, agent.NoTimeLimit)
		if err != nil {
			g.log.Error().Err(err).Msg("engine-out-of-sync")
			return
		}

		g.mu.Lock()
		if g.gameOver || g.closed {
			g.mu.Unlock()
			return
		}

		x, y := -1, -1
		if m != nil {
			g.board = g.board.MustApply(m.Coordinate, engineColor)
			x, y = m.Col, m.Row
		}
		g.moveNumber++
		g.lastMove = types.BoardPos{X: x, Y: y}
		g.toMove = g.playerColor
		ended := g.checkEnd()
		boardStateCopy := g.snapshot()
		outcome := g.outcome

		humanPasses := !ended && !g.board.HasAnyLegalMove(g.playerColor)
		var passCopy *types.BoardState
		if humanPasses {
			g.moveNumber++
			g.lastMove = types.PassPos
			g.toMove = engineColor
			passCopy = g.snapshot()
		}
		g.mu.Unlock()

		if g.moveCallback != nil {
			g.moveCallback(x, y, int(engineColor), boardStateCopy)
		}
		if ended {
			if g.endCallback != nil {
				g.endCallback(outcome)
			}
			return
		}
		if !humanPasses {
			return
		}
		g.log.Debug().Msg("player-has-no-move")
		if g.moveCallback != nil {
			g.moveCallback(-1, -1, int(g.playerColor), passCopy)
		}
	}
}

// checkEnd marks the game finished when neither side can move.
// Must be called while holding the lock.
func (g *LocalEngine) checkEnd() bool {
	if !g.board.GameOver() {
		return false
	}
	g.gameOver = true
	g.outcome = types.Outcome(g.board)
	g.log.Info().Str("outcome", g.outcome).Msg("game-over")
	return true
}

// snapshot must be called while holding the lock.
func (g *LocalEngine) snapshot() *types.BoardState {
	st := types.SnapshotOf(g.board, g.toMove, g.moveNumber, g.lastMove)
	if g.gameOver {
		st.Phase = "finished"
		st.Outcome = g.outcome
		st.LegalMoves = nil
	}
	return st
}

// IsMyTurn returns true if it's the human player's turn.
func (g *LocalEngine) IsMyTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.toMove == g.playerColor && !g.gameOver
}

// GetPlayerColor returns the human player's color (1=black, 2=white).
func (g *LocalEngine) GetPlayerColor() int {
	return int(g.playerColor)
}

// OnMove registers a callback for when a move is played.
func (g *LocalEngine) OnMove(callback func(x, y, color int, boardState *types.BoardState)) {
	g.moveCallback = callback
}

// OnGameEnd registers a callback for when the game ends.
func (g *LocalEngine) OnGameEnd(callback func(outcome string)) {
	g.endCallback = callback
}

// Wait blocks until any running engine turn has finished.
func (g *LocalEngine) Wait() {
	g.wg.Wait()
}

// Close stops the engine after any search in progress.
func (g *LocalEngine) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.wg.Wait()
}

