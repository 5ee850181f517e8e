package sgf

import (
	"errors"
	"testing"

	"othello-local/types"
)

var (
	bD3 = MoveEntry{types.Black, 3, 2}
	bC4 = MoveEntry{types.Black, 2, 3}
	bF5 = MoveEntry{types.Black, 5, 4}
	wC3 = MoveEntry{types.White, 2, 2}
	bB3 = MoveEntry{types.Black, 1, 2}
)

func mustAdd(t *testing.T, tree *GameTree, m MoveEntry) *GameNode {
	t.Helper()
	node, err := tree.AddMove(m)
	if err != nil {
		t.Fatalf("AddMove(%+v): %v", m, err)
	}
	return node
}

func TestNewGameTree(t *testing.T) {
	tree := NewGameTree()
	if tree.Root == nil {
		t.Fatal("root should not be nil")
	}
	if tree.Current != tree.Root {
		t.Fatal("current should be root")
	}
	if !tree.Root.Move.IsPass() || !tree.Root.IsRoot() {
		t.Fatalf("root move should be empty, got %+v", tree.Root.Move)
	}
	if tree.Root.Board != types.NewBoard() {
		t.Fatal("root should hold the opening position")
	}
	if tree.Root.ToMove() != types.Black {
		t.Fatal("black moves first")
	}
}

func TestGameTreeAddMove(t *testing.T) {
	tree := NewGameTree()
	node := mustAdd(t, tree, bD3)
	if node.Move != bD3 {
		t.Fatalf("expected d3, got %+v", node.Move)
	}
	if tree.Current != node {
		t.Fatal("current should advance to new node")
	}
	if node.Parent != tree.Root {
		t.Fatal("parent should be root")
	}
	if node.Board.Count(types.Black) != 4 || node.Board.Count(types.White) != 1 {
		t.Fatalf("node board not updated:\n%s", node.Board)
	}
	if node.ToMove() != types.White {
		t.Fatal("white should move after d3")
	}
}

func TestAddMoveRejectsIllegal(t *testing.T) {
	tree := NewGameTree()
	if _, err := tree.AddMove(MoveEntry{types.Black, 0, 0}); !errors.Is(err, types.ErrIllegalMove) {
		t.Fatalf("a1 err = %v, want ErrIllegalMove", err)
	}
	if _, err := tree.AddMove(MoveEntry{types.Black, -1, -1}); !errors.Is(err, types.ErrIllegalMove) {
		t.Fatalf("pass err = %v, want ErrIllegalMove", err)
	}
	if tree.Current != tree.Root || tree.HasChildren() {
		t.Fatal("rejected moves must not change the tree")
	}
}

func TestAddMovePassWithoutMoves(t *testing.T) {
	// White has no disc to outflank with: only black can move.
	board, err := types.ParseBoard("XO......\n" + "........\n" + "........\n" + "........\n" +
		"........\n" + "........\n" + "........\n" + "........\n")
	if err != nil {
		t.Fatal(err)
	}
	tree := NewGameTreeFrom(board)
	mustAdd(t, tree, MoveEntry{types.Black, 2, 0})
	node := mustAdd(t, tree, MoveEntry{types.White, -1, -1})
	if node.Board != tree.Current.Parent.Board {
		t.Fatal("pass should not change the position")
	}
}

func TestAddMoveDedup(t *testing.T) {
	tree := NewGameTree()
	node1 := mustAdd(t, tree, bD3)
	tree.Back()
	node2 := mustAdd(t, tree, bD3) // same move, should navigate not create
	if node1 != node2 {
		t.Fatal("duplicate move should navigate to existing node, not create new one")
	}
	if len(tree.Root.Children) != 1 {
		t.Fatalf("root should still have 1 child, got %d", len(tree.Root.Children))
	}
}

func TestAddMoveBranching(t *testing.T) {
	tree := NewGameTree()
	mustAdd(t, tree, bD3)
	tree.Back()
	mustAdd(t, tree, bC4)
	if len(tree.Root.Children) != 2 {
		t.Fatalf("root should have 2 children, got %d", len(tree.Root.Children))
	}
	if tree.Root.Children[0].Move != bD3 || tree.Root.Children[1].Move != bC4 {
		t.Fatalf("children out of order: %+v %+v", tree.Root.Children[0].Move, tree.Root.Children[1].Move)
	}
}

func TestBackAndForward(t *testing.T) {
	tree := NewGameTree()
	if tree.Back() {
		t.Fatal("back at root should return false")
	}
	if tree.Forward(0) {
		t.Fatal("forward with no children should return false")
	}

	mustAdd(t, tree, bD3)
	mustAdd(t, tree, wC3)
	tree.Back()
	tree.Back()
	if tree.Current != tree.Root {
		t.Fatal("should be back at root")
	}

	if !tree.Forward(0) || tree.Current.Move != bD3 {
		t.Fatalf("expected d3, got %+v", tree.Current.Move)
	}
	if !tree.Forward(0) || tree.Current.Move != wC3 {
		t.Fatalf("expected c3, got %+v", tree.Current.Move)
	}
	if tree.Forward(1) {
		t.Fatal("forward with invalid index should return false")
	}
}

func TestToEndAndDepth(t *testing.T) {
	tree := NewGameTree()
	mustAdd(t, tree, bD3)
	mustAdd(t, tree, wC3)
	mustAdd(t, tree, bB3)
	tree.Current = tree.Root
	if tree.Depth() != 0 {
		t.Fatalf("root depth = %d", tree.Depth())
	}
	tree.ToEnd()
	if tree.Depth() != 3 || tree.Current.Move != bB3 {
		t.Fatalf("ToEnd stopped at depth %d, move %+v", tree.Depth(), tree.Current.Move)
	}
}

func TestVariationSwitching(t *testing.T) {
	tree := NewGameTree()
	mustAdd(t, tree, bD3)
	tree.Back()
	mustAdd(t, tree, bC4)
	tree.Back()
	mustAdd(t, tree, bF5)
	// Now root has 3 children, current is at f5 (index 2)

	steps := []struct {
		next bool
		want MoveEntry
	}{
		{true, bD3}, // wraps to first
		{true, bC4},
		{false, bD3},
		{false, bF5}, // wraps to last
	}
	for i, s := range steps {
		if s.next {
			tree.NextVariation()
		} else {
			tree.PrevVariation()
		}
		if tree.Current.Move != s.want {
			t.Fatalf("step %d: expected %+v, got %+v", i, s.want, tree.Current.Move)
		}
	}
	if tree.NumVariations() != 3 || tree.VariationIndex() != 2 {
		t.Fatalf("variations = %d, index = %d", tree.NumVariations(), tree.VariationIndex())
	}
}

func TestVariationSwitchingEdges(t *testing.T) {
	tree := NewGameTree()
	if tree.NextVariation() || tree.PrevVariation() {
		t.Fatal("variation switching at root should return false")
	}
	if tree.NumVariations() != 0 || tree.VariationIndex() != -1 {
		t.Fatal("root has no variations")
	}
	mustAdd(t, tree, bD3)
	if tree.NextVariation() || tree.PrevVariation() {
		t.Fatal("variation switching with single sibling should return false")
	}
}

func TestPathFromRoot(t *testing.T) {
	tree := NewGameTree()
	if path := tree.PathFromRoot(); len(path) != 0 {
		t.Fatalf("path at root should be empty, got %v", path)
	}

	want := []MoveEntry{bD3, wC3, bB3}
	for _, m := range want {
		mustAdd(t, tree, m)
	}

	path := tree.PathFromRoot()
	if len(path) != len(want) {
		t.Fatalf("path length should be %d, got %d", len(want), len(path))
	}
	for i, m := range want {
		if path[i] != m {
			t.Fatalf("path[%d] should be %+v, got %+v", i, m, path[i])
		}
	}
}

func TestGameTreeAtWhiteToMove(t *testing.T) {
	start := types.NewBoard().MustApply(types.Coordinate{Row: 2, Col: 3}, types.Black)
	tree := NewGameTreeAt(start, types.White)
	if tree.Root.ToMove() != types.White {
		t.Fatalf("root ToMove = %s, want white", tree.Root.ToMove())
	}
	mustAdd(t, tree, wC3)
	if got := tree.Current.ToMove(); got != types.Black {
		t.Errorf("after c3 ToMove = %s, want black", got)
	}
}
