// Package eval scores Othello positions from one side's point of view.
//
// The score blends four signals: a positional weight table, mobility,
// frontier discs and disc count. The blend changes once the game reaches
// its late phase, when disc count turns from a liability into the goal.
package eval

import (
	"fmt"
	"strconv"
	"strings"

	"othello-local/types"
)

// Phase selects the weight set used to blend the signals.
type Phase int

const (
	EarlyMid Phase = iota
	Late
)

func (p Phase) String() string {
	if p == Late {
		return "late"
	}
	return "early"
}

// LateGameDiscs is the number of discs placed since the start at which
// the late phase begins.
const LateGameDiscs = 30

// LateGameOwnMoves is LateGameDiscs expressed in moves made by one side.
const LateGameOwnMoves = LateGameDiscs / 2

// PhaseFor maps a side's own-move counter to a phase.
func PhaseFor(ownMoves int) Phase {
	if ownMoves >= LateGameOwnMoves {
		return Late
	}
	return EarlyMid
}

// PhaseForBoard derives the phase from the discs on the board, for
// callers that do not track a move counter.
func PhaseForBoard(b types.Board) Phase {
	if b.Discs()-4 >= LateGameDiscs {
		return Late
	}
	return EarlyMid
}

// Early and mid game: keep options open and stay compact, avoid
// grabbing discs.
const (
	EarlyPositionalWeight = 1.0
	EarlyMobilityWeight   = 8.0
	EarlyFrontierWeight   = 3.0
	EarlyPieceWeight      = -1.0
)

// Late game: corners, stable discs and material decide the result.
const (
	LatePositionalWeight = 2.0
	LateMobilityWeight   = 2.0
	LateFrontierWeight   = 5.0
	LatePieceWeight      = 10.0
)

// Weights is one blend of the four signals.
type Weights struct {
	Positional float64
	Mobility   float64
	Frontier   float64
	Piece      float64
}

// ParseWeights reads "positional,mobility,frontier,piece".
func ParseWeights(s string) (Weights, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Weights{}, fmt.Errorf("weights %q: want 4 comma separated values", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Weights{}, fmt.Errorf("weights %q: %w", s, err)
		}
		v[i] = f
	}
	return Weights{Positional: v[0], Mobility: v[1], Frontier: v[2], Piece: v[3]}, nil
}

// WeightsFor returns the blend used in phase p.
func WeightsFor(p Phase) Weights {
	if p == Late {
		return Weights{
			Positional: LatePositionalWeight,
			Mobility:   LateMobilityWeight,
			Frontier:   LateFrontierWeight,
			Piece:      LatePieceWeight,
		}
	}
	return Weights{
		Positional: EarlyPositionalWeight,
		Mobility:   EarlyMobilityWeight,
		Frontier:   EarlyFrontierWeight,
		Piece:      EarlyPieceWeight,
	}
}

// PositionWeights is the square value table. Corners are worth the most,
// the squares next to them give the opponent access to the corner and
// are penalized.
var PositionWeights = [types.Size][types.Size]int{
	{100, -20, 10, 5, 5, 10, -20, 100},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{10, -2, 5, 1, 1, 5, -2, 10},
	{5, -2, 1, 1, 1, 1, -2, 5},
	{5, -2, 1, 1, 1, 1, -2, 5},
	{10, -2, 5, 1, 1, 5, -2, 10},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{100, -20, 10, 5, 5, 10, -20, 100},
}

// Signals holds the individual terms of an evaluation.
type Signals struct {
	Positional float64 `json:"positional"`
	Mobility   float64 `json:"mobility"`
	Frontier   float64 `json:"frontier"`
	Piece      float64 `json:"piece"`
	Total      float64 `json:"total"`
}

// Evaluator scores boards. The zero value is not usable; use New.
type Evaluator struct {
	weights [2]Weights
}

// New returns an Evaluator with the default weight sets.
func New() *Evaluator {
	return &Evaluator{weights: [2]Weights{WeightsFor(EarlyMid), WeightsFor(Late)}}
}

// NewWithWeights returns an Evaluator using custom blends.
func NewWithWeights(early, late Weights) *Evaluator {
	return &Evaluator{weights: [2]Weights{early, late}}
}

// Evaluate scores b for side in phase p. Positive favours side, and
// Evaluate(b, s, p) == -Evaluate(b, s.Opponent(), p) for every board.
func (e *Evaluator) Evaluate(b types.Board, side types.Side, p Phase) float64 {
	return e.Breakdown(b, side, p).Total
}

// Breakdown returns every weighted signal along with the total.
func (e *Evaluator) Breakdown(b types.Board, side types.Side, p Phase) Signals {
	w := e.weights[EarlyMid]
	if p == Late {
		w = e.weights[Late]
	}
	s := Signals{
		Positional: w.Positional * float64(Positional(b, side)),
		Mobility:   w.Mobility * Mobility(b, side),
		Frontier:   w.Frontier * Frontier(b, side),
		Piece:      w.Piece * Piece(b, side),
	}
	s.Total = s.Positional + s.Mobility + s.Frontier + s.Piece
	return s
}

// Evaluate scores b with the default weights.
func Evaluate(b types.Board, side types.Side, p Phase) float64 {
	return defaultEvaluator.Evaluate(b, side, p)
}

var defaultEvaluator = New()

// Positional sums the table weight of side's discs minus the opponent's.
func Positional(b types.Board, side types.Side) int {
	opp := side.Opponent()
	score := 0
	for r := 0; r < types.Size; r++ {
		for c := 0; c < types.Size; c++ {
			switch b.CellOwner(r, c) {
			case side:
				score += PositionWeights[r][c]
			case opp:
				score -= PositionWeights[r][c]
			}
		}
	}
	return score
}

// Mobility is 100*(mine-theirs)/(mine+theirs) over legal move counts.
func Mobility(b types.Board, side types.Side) float64 {
	return ratio(b.Mobility(side), b.Mobility(side.Opponent()))
}

// Frontier is 100*(theirs-mine)/(mine+theirs) over frontier disc counts.
// Fewer frontier discs scores higher.
func Frontier(b types.Board, side types.Side) float64 {
	return ratio(b.FrontierCount(side.Opponent()), b.FrontierCount(side))
}

// Piece is 100*(mine-theirs)/(mine+theirs) over disc counts.
func Piece(b types.Board, side types.Side) float64 {
	return ratio(b.Count(side), b.Count(side.Opponent()))
}

// ratio returns 100*(a-b)/(a+b), or 0 when both are zero.
func ratio(a, b int) float64 {
	if a+b == 0 {
		return 0
	}
	return 100 * float64(a-b) / float64(a+b)
}
