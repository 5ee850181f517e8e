package sgf

import (
	"fmt"

	"othello-local/types"
)

// GameNode represents a single position in the game tree.
type GameNode struct {
	Move     MoveEntry   // zero value for root
	Board    types.Board // position after Move
	Parent   *GameNode
	Children []*GameNode // First child = main line

	first types.Side // root only: side to move when set
}

// IsRoot reports whether the node is the tree's root.
func (n *GameNode) IsRoot() bool {
	return n.Parent == nil
}

// ToMove returns the side expected to move from this node's position:
// the opponent of the last mover if it has a legal move, otherwise the
// last mover again. Black moves first from the root unless the tree was
// started with another side to move.
func (n *GameNode) ToMove() types.Side {
	if n.IsRoot() {
		if n.first != types.None {
			return n.first
		}
		if n.Board.HasAnyLegalMove(types.Black) || !n.Board.HasAnyLegalMove(types.White) {
			return types.Black
		}
		return types.White
	}
	next := n.Move.Color.Opponent()
	if !n.Board.HasAnyLegalMove(next) && n.Board.HasAnyLegalMove(n.Move.Color) {
		return n.Move.Color
	}
	return next
}

// GameTree tracks an in-memory tree of moves for history exploration.
type GameTree struct {
	Root    *GameNode
	Current *GameNode
}

// NewGameTree creates a new game tree rooted at the standard opening position.
func NewGameTree() *GameTree {
	return NewGameTreeFrom(types.NewBoard())
}

// NewGameTreeFrom creates a game tree rooted at the given position.
func NewGameTreeFrom(start types.Board) *GameTree {
	root := &GameNode{Move: MoveEntry{X: -1, Y: -1}, Board: start}
	return &GameTree{Root: root, Current: root}
}

// NewGameTreeAt creates a game tree rooted at start with toMove to play.
func NewGameTreeAt(start types.Board, toMove types.Side) *GameTree {
	t := NewGameTreeFrom(start)
	t.Root.first = toMove
	return t
}

// AddMove adds a child move to the current node and advances to it.
// If a child with the same move already exists, navigates to it instead of creating a duplicate.
// A pass is accepted only when the mover has no legal move.
func (t *GameTree) AddMove(m MoveEntry) (*GameNode, error) {
	for _, child := range t.Current.Children {
		if child.Move == m {
			t.Current = child
			return child, nil
		}
	}

	board := t.Current.Board
	if m.IsPass() {
		if board.HasAnyLegalMove(m.Color) {
			return nil, fmt.Errorf("%s pass: %w", m.Color, types.ErrIllegalMove)
		}
	} else {
		next, err := board.Apply(m.Coordinate(), m.Color)
		if err != nil {
			return nil, err
		}
		board = next
	}

	node := &GameNode{
		Move:   m,
		Board:  board,
		Parent: t.Current,
	}
	t.Current.Children = append(t.Current.Children, node)
	t.Current = node
	return node, nil
}

// Back moves current to its parent. Returns false if already at root.
func (t *GameTree) Back() bool {
	if t.Current == t.Root {
		return false
	}
	t.Current = t.Current.Parent
	return true
}

// Forward moves current to children[idx]. Returns false if no such child.
func (t *GameTree) Forward(idx int) bool {
	if idx < 0 || idx >= len(t.Current.Children) {
		return false
	}
	t.Current = t.Current.Children[idx]
	return true
}

// ToEnd follows the main line to its last node.
func (t *GameTree) ToEnd() {
	for t.Forward(0) {
	}
}

// NextVariation switches to the next sibling (among parent's children). Wraps around.
func (t *GameTree) NextVariation() bool {
	if t.Current.Parent == nil {
		return false
	}
	siblings := t.Current.Parent.Children
	if len(siblings) < 2 {
		return false
	}
	idx := t.childIndex()
	t.Current = siblings[(idx+1)%len(siblings)]
	return true
}

// PrevVariation switches to the previous sibling (among parent's children). Wraps around.
func (t *GameTree) PrevVariation() bool {
	if t.Current.Parent == nil {
		return false
	}
	siblings := t.Current.Parent.Children
	if len(siblings) < 2 {
		return false
	}
	idx := t.childIndex()
	t.Current = siblings[(idx-1+len(siblings))%len(siblings)]
	return true
}

// PathFromRoot returns the moves from root to current (excluding the root).
func (t *GameTree) PathFromRoot() []MoveEntry {
	var path []MoveEntry
	node := t.Current
	for node != t.Root {
		path = append(path, node.Move)
		node = node.Parent
	}
	// Reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Depth returns the number of moves between root and current.
func (t *GameTree) Depth() int {
	d := 0
	for node := t.Current; node != t.Root; node = node.Parent {
		d++
	}
	return d
}

// NumVariations returns the number of siblings at the current node's level.
// Returns 0 if at root.
func (t *GameTree) NumVariations() int {
	if t.Current.Parent == nil {
		return 0
	}
	return len(t.Current.Parent.Children)
}

// VariationIndex returns which child of parent the current node is (0-based).
// Returns -1 if at root.
func (t *GameTree) VariationIndex() int {
	if t.Current.Parent == nil {
		return -1
	}
	return t.childIndex()
}

// HasChildren returns true if the current node has any children.
func (t *GameTree) HasChildren() bool {
	return len(t.Current.Children) > 0
}

// childIndex returns the index of current among its parent's children.
func (t *GameTree) childIndex() int {
	if t.Current.Parent == nil {
		return -1
	}
	for i, child := range t.Current.Parent.Children {
		if child == t.Current {
			return i
		}
	}
	return -1
}
