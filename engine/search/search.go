// Package search implements depth-limited minimax with alpha-beta pruning
// over Othello positions.
package search

import (
	"math"
	"sort"

	"othello-local/engine/eval"
	"othello-local/types"
)

// DefaultDepth is the number of plies searched below the root.
const DefaultDepth = 5

// maxConsecutivePasses ends a line of play once both sides have passed
// in a row.
const maxConsecutivePasses = 2

// Stats counts the work done by a search.
type Stats struct {
	Nodes   int `json:"nodes"`
	Leaves  int `json:"leaves"`
	Cutoffs int `json:"cutoffs"`
}

// Result is the outcome of a root search.
type Result struct {
	Move  types.Coordinate
	Score float64
	Stats Stats
}

// Engine searches positions on behalf of one side. Scores are always
// from that side's point of view, whichever side is to move at a leaf.
// An Engine is not safe for concurrent use.
type Engine struct {
	eval  *eval.Evaluator
	root  types.Side
	phase eval.Phase
	stats Stats
}

// New returns an Engine maximizing for root with the evaluator's blend
// for phase fixed for the whole search.
func New(ev *eval.Evaluator, root types.Side, phase eval.Phase) *Engine {
	if ev == nil {
		ev = eval.New()
	}
	return &Engine{eval: ev, root: root, phase: phase}
}

// Stats returns the counters accumulated since the last BestMove call.
func (e *Engine) Stats() Stats {
	return e.stats
}

// BestMove picks the root side's move on b. Every legal move is tried in
// row-major order and searched with depth-1 plies remaining; the first
// move reaching the highest score wins. ok is false when the root side
// has no legal move.
func (e *Engine) BestMove(b types.Board, depth int) (res Result, ok bool) {
	if depth < 1 {
		depth = 1
	}
	e.stats = Stats{}
	moves := b.LegalMoves(e.root)
	if len(moves) == 0 {
		return Result{}, false
	}

	best := math.Inf(-1)
	bestIdx := -1
	for i, m := range moves {
		child := b.MustApply(m, e.root)
		// Moves that cannot beat best come back as an upper bound <= best
		// and are never selected, so the window can start at best.
		score := e.search(child, e.root.Opponent(), depth-1, best, math.Inf(1), 0)
		if bestIdx < 0 || score > best {
			best = score
			bestIdx = i
		}
	}
	return Result{Move: moves[bestIdx], Score: best, Stats: e.stats}, true
}

// Search returns the fail-soft alpha-beta value of b with toMove to play
// and depth plies remaining.
func (e *Engine) Search(b types.Board, toMove types.Side, depth int, alpha, beta float64) float64 {
	return e.search(b, toMove, depth, alpha, beta, 0)
}

func (e *Engine) search(b types.Board, toMove types.Side, depth int, alpha, beta float64, passes int) float64 {
	e.stats.Nodes++
	if depth <= 0 {
		return e.leaf(b)
	}

	moves := b.LegalMoves(toMove)
	if len(moves) == 0 {
		if passes+1 >= maxConsecutivePasses {
			return e.leaf(b)
		}
		return e.search(b, toMove.Opponent(), depth, alpha, beta, passes+1)
	}

	children := e.order(b, toMove, moves)
	if toMove == e.root {
		maxScore := math.Inf(-1)
		for _, c := range children {
			score := e.search(c.board, toMove.Opponent(), depth-1, alpha, beta, 0)
			if score > maxScore {
				maxScore = score
			}
			if maxScore > alpha {
				alpha = maxScore
			}
			if alpha >= beta {
				e.stats.Cutoffs++
				break
			}
		}
		return maxScore
	}

	minScore := math.Inf(1)
	for _, c := range children {
		score := e.search(c.board, toMove.Opponent(), depth-1, alpha, beta, 0)
		if score < minScore {
			minScore = score
		}
		if minScore < beta {
			beta = minScore
		}
		if beta <= alpha {
			e.stats.Cutoffs++
			break
		}
	}
	return minScore
}

// Minimax returns the plain minimax value of b, exploring every branch.
// It follows the same leaf and pass rules as Search.
func (e *Engine) Minimax(b types.Board, toMove types.Side, depth int) float64 {
	return e.minimax(b, toMove, depth, 0)
}

func (e *Engine) minimax(b types.Board, toMove types.Side, depth, passes int) float64 {
	e.stats.Nodes++
	if depth <= 0 {
		return e.leaf(b)
	}
	moves := b.LegalMoves(toMove)
	if len(moves) == 0 {
		if passes+1 >= maxConsecutivePasses {
			return e.leaf(b)
		}
		return e.minimax(b, toMove.Opponent(), depth, passes+1)
	}

	maximizing := toMove == e.root
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	for _, m := range moves {
		score := e.minimax(b.MustApply(m, toMove), toMove.Opponent(), depth-1, 0)
		if maximizing && score > best || !maximizing && score < best {
			best = score
		}
	}
	return best
}

func (e *Engine) leaf(b types.Board) float64 {
	e.stats.Leaves++
	return e.eval.Evaluate(b, e.root, e.phase)
}

type child struct {
	board types.Board
	score float64
}

// order applies every move and sorts the results by static score, best
// for the root side first at its own nodes and worst first at the
// opponent's. Equal scores keep row-major order.
func (e *Engine) order(b types.Board, toMove types.Side, moves []types.Coordinate) []child {
	children := make([]child, len(moves))
	for i, m := range moves {
		next := b.MustApply(m, toMove)
		children[i] = child{board: next, score: e.eval.Evaluate(next, e.root, e.phase)}
	}
	if toMove == e.root {
		sort.SliceStable(children, func(i, j int) bool { return children[i].score > children[j].score })
	} else {
		sort.SliceStable(children, func(i, j int) bool { return children[i].score < children[j].score })
	}
	return children
}
