package arena

import (
	"fmt"

	"github.com/rs/zerolog"
	"lukechampine.com/frand"

	"othello-local/engine/agent"
	"othello-local/engine/eval"
	"othello-local/storage"
	"othello-local/types"
)

// Player is one side of an arena game. ChooseMove follows agent.Agent:
// opp is the opponent's last move (nil if it passed or nothing was played
// yet) and a nil result means the player passes.
type Player interface {
	ChooseMove(opp *types.Move, msLeft int) (*types.Move, error)
}

// PlayerSpec describes how to build a player for each game.
type PlayerSpec struct {
	Name   string
	Depth  int
	Random bool

	// Early and Late override the evaluator's blends; nil keeps the default.
	Early *eval.Weights
	Late  *eval.Weights
}

// Label returns the name used in results and the archive.
func (p PlayerSpec) Label() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Random {
		return "random"
	}
	if p.Early != nil || p.Late != nil {
		return fmt.Sprintf("othello-local depth %d custom", p.Depth)
	}
	return fmt.Sprintf("othello-local depth %d", p.Depth)
}

// evaluator returns the evaluator for the spec's weights, or nil for the
// default one.
func (p PlayerSpec) evaluator() *eval.Evaluator {
	if p.Early == nil && p.Late == nil {
		return nil
	}
	early, late := eval.WeightsFor(eval.EarlyMid), eval.WeightsFor(eval.Late)
	if p.Early != nil {
		early = *p.Early
	}
	if p.Late != nil {
		late = *p.Late
	}
	return eval.NewWithWeights(early, late)
}

// build creates a fresh player for side starting from start, where the
// side has already made ownMoves moves.
func (p PlayerSpec) build(side types.Side, start types.Board, ownMoves int, log zerolog.Logger) Player {
	if p.Random {
		return &randomPlayer{side: side, board: start}
	}
	return agent.New(side,
		agent.WithDepth(p.Depth),
		agent.WithPosition(start, ownMoves),
		agent.WithEvaluator(p.evaluator()),
		agent.WithLogger(log))
}

// randomPlayer picks uniformly among its legal moves.
type randomPlayer struct {
	side  types.Side
	board types.Board
}

func (r *randomPlayer) ChooseMove(opp *types.Move, _ int) (*types.Move, error) {
	if opp != nil {
		next, err := r.board.Apply(opp.Coordinate, opp.Side)
		if err != nil {
			return nil, fmt.Errorf("opponent move %s: %w", opp, err)
		}
		r.board = next
	}
	moves := r.board.LegalMoves(r.side)
	if len(moves) == 0 {
		return nil, nil
	}
	c := moves[frand.Intn(len(moves))]
	r.board = r.board.MustApply(c, r.side)
	mv := types.Move{Coordinate: c, Side: r.side}
	return &mv, nil
}

// randomOpening plays plies random moves from the standard position. It
// returns the position, the side to move and the moves played.
func randomOpening(plies int) (types.Board, types.Side, []storage.MoveEntry) {
	board := types.NewBoard()
	side := types.Black
	var moves []storage.MoveEntry
	for i := 0; i < plies && !board.GameOver(); i++ {
		legal := board.LegalMoves(side)
		if len(legal) == 0 {
			moves = append(moves, storage.PassEntry(side))
			side = side.Opponent()
			continue
		}
		c := legal[frand.Intn(len(legal))]
		board = board.MustApply(c, side)
		moves = append(moves, storage.MoveEntry{Side: side, Row: c.Row, Col: c.Col})
		side = side.Opponent()
	}
	return board, side, moves
}
