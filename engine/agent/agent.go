// Package agent keeps one side's view of a game and picks its moves.
package agent

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"othello-local/engine/eval"
	"othello-local/engine/search"
	"othello-local/types"
)

// NoTimeLimit is the msLeft value meaning the caller imposes no budget.
const NoTimeLimit = -1

// Agent plays one side. It owns its board and the count of moves it has
// made, which drives the evaluation phase. An Agent is not safe for
// concurrent use.
type Agent struct {
	side     types.Side
	board    types.Board
	ownMoves int
	depth    int
	eval     *eval.Evaluator
	log      zerolog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithDepth sets the search depth in plies. Values below 1 are ignored.
func WithDepth(depth int) Option {
	return func(a *Agent) {
		if depth >= 1 {
			a.depth = depth
		}
	}
}

// WithLogger sets the logger used for per-move diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(a *Agent) {
		a.log = l
	}
}

// WithEvaluator replaces the default evaluator, for example one built with
// eval.NewWithWeights.
func WithEvaluator(ev *eval.Evaluator) Option {
	return func(a *Agent) {
		if ev != nil {
			a.eval = ev
		}
	}
}

// WithPosition starts the agent from board with ownMoves moves already
// made, for picking up a game in progress.
func WithPosition(board types.Board, ownMoves int) Option {
	return func(a *Agent) {
		a.board = board
		if ownMoves > 0 {
			a.ownMoves = ownMoves
		}
	}
}

// New returns an Agent for side on the standard starting position.
func New(side types.Side, opts ...Option) *Agent {
	a := &Agent{
		side:  side,
		board: types.NewBoard(),
		depth: search.DefaultDepth,
		eval:  eval.New(),
		log:   log.Logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With().Str("side", side.String()).Logger()
	return a
}

// Side returns the side this agent plays.
func (a *Agent) Side() types.Side { return a.side }

// Board returns a copy of the agent's current position.
func (a *Agent) Board() types.Board { return a.board }

// MovesMade returns how many moves the agent has played.
func (a *Agent) MovesMade() int { return a.ownMoves }

// Depth returns the configured search depth.
func (a *Agent) Depth() int { return a.depth }

// Phase returns the evaluation phase for the next search.
func (a *Agent) Phase() eval.Phase { return eval.PhaseFor(a.ownMoves) }

// ApplyOpponentMove plays m for the opponent on the agent's board.
// A Move with Side None is taken to be the opponent's.
func (a *Agent) ApplyOpponentMove(m types.Move) error {
	opp := a.side.Opponent()
	if m.Side != types.None && m.Side != opp {
		return fmt.Errorf("opponent move %s: %w", m, types.ErrIllegalMove)
	}
	next, err := a.board.Apply(m.Coordinate, opp)
	if err != nil {
		return fmt.Errorf("opponent move: %w", err)
	}
	a.board = next
	return nil
}

// ChooseMove applies the opponent's move, nil meaning the opponent
// passed, then searches for and plays the agent's reply. It returns nil
// with no error when the agent has no legal move, leaving the board as
// it was after the opponent's move. msLeft is the caller's remaining
// time budget in milliseconds or NoTimeLimit; the search depth is fixed
// regardless.
func (a *Agent) ChooseMove(opponentsMove *types.Move, msLeft int) (*types.Move, error) {
	if opponentsMove != nil {
		if err := a.ApplyOpponentMove(*opponentsMove); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	phase := a.Phase()
	eng := search.New(a.eval, a.side, phase)
	res, ok := eng.BestMove(a.board, a.depth)
	if !ok {
		a.log.Debug().Int("own_moves", a.ownMoves).Msg("no-legal-move")
		return nil, nil
	}

	a.board = a.board.MustApply(res.Move, a.side)
	a.ownMoves++
	elapsed := time.Since(start)

	ev := a.log.Debug().
		Str("move", res.Move.String()).
		Float64("score", res.Score).
		Int("depth", a.depth).
		Str("phase", phase.String()).
		Int("nodes", res.Stats.Nodes).
		Int("cutoffs", res.Stats.Cutoffs).
		Interface("signals", a.eval.Breakdown(a.board, a.side, phase)).
		Dur("elapsed", elapsed)
	if msLeft != NoTimeLimit {
		ev = ev.Int("ms_left", msLeft)
	}
	ev.Msg("chose-move")
	if msLeft != NoTimeLimit && elapsed.Milliseconds() > int64(msLeft) {
		a.log.Warn().Dur("elapsed", elapsed).Int("ms_left", msLeft).Msg("move-exceeded-budget")
	}

	m := types.Move{Coordinate: res.Move, Side: a.side}
	return &m, nil
}
