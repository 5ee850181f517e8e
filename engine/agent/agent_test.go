package agent

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"othello-local/engine/eval"
	"othello-local/engine/search"
	"othello-local/types"
)

func TestNewAgent(t *testing.T) {
	a := New(types.White)
	if a.Board() != types.NewBoard() {
		t.Error("agent should start from the standard position")
	}
	if a.MovesMade() != 0 {
		t.Errorf("MovesMade = %d, want 0", a.MovesMade())
	}
	if a.Depth() != 5 {
		t.Errorf("Depth = %d, want 5", a.Depth())
	}
	if a.Phase() != eval.EarlyMid {
		t.Errorf("Phase = %v, want early", a.Phase())
	}
}

func TestChooseMoveOpening(t *testing.T) {
	a := New(types.Black, WithDepth(1), WithLogger(zerolog.Nop()))
	m, err := a.ChooseMove(nil, NoTimeLimit)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if m == nil {
		t.Fatal("ChooseMove returned no move from the start position")
	}
	if m.Side != types.Black {
		t.Errorf("move side = %v, want black", m.Side)
	}
	if !types.NewBoard().IsLegal(m.Coordinate, types.Black) {
		t.Errorf("move %v is not legal", m)
	}
	if a.MovesMade() != 1 {
		t.Errorf("MovesMade = %d, want 1", a.MovesMade())
	}
	if a.Board().Count(types.Black) != 4 {
		t.Errorf("black discs = %d, want 4", a.Board().Count(types.Black))
	}
}

func TestChooseMoveAppliesOpponentMove(t *testing.T) {
	a := New(types.White, WithDepth(2), WithLogger(zerolog.Nop()))
	opp := types.NewMove(2, 3, types.Black)
	before := types.NewBoard().MustApply(opp.Coordinate, types.Black)

	m, err := a.ChooseMove(&opp, 1000)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if m == nil {
		t.Fatal("no reply")
	}
	if !before.IsLegal(m.Coordinate, types.White) {
		t.Errorf("reply %v is not legal after d3", m)
	}
	if a.Board() != before.MustApply(m.Coordinate, types.White) {
		t.Error("agent board does not reflect both moves")
	}
}

func TestChooseMoveRejectsIllegalOpponentMove(t *testing.T) {
	a := New(types.White, WithLogger(zerolog.Nop()))
	tests := []types.Move{
		types.NewMove(0, 0, types.Black),
		types.NewMove(9, 0, types.Black),
		types.NewMove(2, 3, types.White),
	}
	for _, m := range tests {
		m := m
		_, err := a.ChooseMove(&m, NoTimeLimit)
		if err == nil {
			t.Errorf("ChooseMove(%v) succeeded", m)
			continue
		}
		if !errors.Is(err, types.ErrIllegalMove) && !errors.Is(err, types.ErrOutOfBounds) {
			t.Errorf("ChooseMove(%v) err = %v", m, err)
		}
	}
	if a.Board() != types.NewBoard() || a.MovesMade() != 0 {
		t.Error("rejected moves changed agent state")
	}
}

func TestChooseMoveFullBoard(t *testing.T) {
	full, err := types.ParseBoard(`
XXXXXXXX
XXXXXXXX
XXXXXXXX
XXXXOOOO
OOOOOOOO
OOOOOOOO
OOOOOOOO
OOOOOOOO`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	for _, side := range []types.Side{types.Black, types.White} {
		if full.HasAnyLegalMove(side) {
			t.Fatalf("%v has a move on a full board", side)
		}
		a := New(side, WithPosition(full, 20), WithLogger(zerolog.Nop()))
		m, err := a.ChooseMove(nil, NoTimeLimit)
		if err != nil {
			t.Fatalf("ChooseMove: %v", err)
		}
		if m != nil {
			t.Errorf("%v: got move %v on a full board", side, m)
		}
		if a.Board() != full || a.MovesMade() != 20 {
			t.Errorf("%v: state changed without a move", side)
		}
	}
}

func TestChooseMoveSinglePass(t *testing.T) {
	// White cannot move here; black can.
	b, err := types.ParseBoard(`
XO......
........
........
........
........
........
........
........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	w := New(types.White, WithPosition(b, 3), WithLogger(zerolog.Nop()))
	m, err := w.ChooseMove(nil, NoTimeLimit)
	if err != nil || m != nil {
		t.Fatalf("ChooseMove = %v, %v; want nil, nil", m, err)
	}

	bl := New(types.Black, WithPosition(b, 3), WithLogger(zerolog.Nop()))
	m, err = bl.ChooseMove(nil, NoTimeLimit)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if m == nil || m.Coordinate != (types.Coordinate{Row: 0, Col: 2}) {
		t.Fatalf("ChooseMove = %v, want c1", m)
	}
	if bl.MovesMade() != 4 {
		t.Errorf("MovesMade = %d, want 4", bl.MovesMade())
	}
}

func TestSelfPlayIsLegalAndDeterministic(t *testing.T) {
	play := func() []types.Move {
		black := New(types.Black, WithDepth(2), WithLogger(zerolog.Nop()))
		white := New(types.White, WithDepth(2), WithLogger(zerolog.Nop()))
		referee := types.NewBoard()
		var moves []types.Move
		var last *types.Move
		players := map[types.Side]*Agent{types.Black: black, types.White: white}
		side := types.Black
		passes := 0
		for passes < 2 {
			m, err := players[side].ChooseMove(last, NoTimeLimit)
			if err != nil {
				t.Fatalf("ChooseMove(%v): %v", side, err)
			}
			if m == nil {
				if referee.HasAnyLegalMove(side) {
					t.Fatalf("%v passed with a legal move available", side)
				}
				passes++
			} else {
				passes = 0
				referee = referee.MustApply(m.Coordinate, side)
				moves = append(moves, *m)
			}
			if players[side].Board() != referee {
				t.Fatalf("%v board diverged from referee", side)
			}
			last = m
			side = side.Opponent()
		}
		if !referee.GameOver() {
			t.Fatal("game stopped before it was over")
		}
		return moves
	}
	first := play()
	second := play()
	if len(first) != len(second) {
		t.Fatalf("games differ in length: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("move %d differs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestChooseMoveLogs(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf).Level(zerolog.DebugLevel)
	a := New(types.Black, WithDepth(1), WithLogger(l))
	if _, err := a.ChooseMove(nil, 5000); err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"message":"chose-move"`, `"side":"black"`, `"ms_left":5000`, `"signals":{"positional":`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %q missing %s", out, want)
		}
	}
}

// phaseSplitPosition walks a fixed game and returns the first position
// where the early and late blends choose different depth-2 moves.
func phaseSplitPosition(t *testing.T) (types.Board, types.Side, types.Coordinate, types.Coordinate) {
	t.Helper()
	ev := eval.New()
	b, side := types.NewBoard(), types.Black
	for !b.GameOver() {
		moves := b.LegalMoves(side)
		if len(moves) == 0 {
			side = side.Opponent()
			continue
		}
		early, _ := search.New(ev, side, eval.EarlyMid).BestMove(b, 2)
		late, _ := search.New(ev, side, eval.Late).BestMove(b, 2)
		if early.Move != late.Move {
			return b, side, early.Move, late.Move
		}
		b = b.MustApply(moves[len(moves)-1], side)
		side = side.Opponent()
	}
	t.Fatal("no position where the phases disagree")
	return types.Board{}, types.None, types.Coordinate{}, types.Coordinate{}
}

func TestChooseMoveSwitchesToLatePhase(t *testing.T) {
	b, side, earlyMove, lateMove := phaseSplitPosition(t)
	tests := []struct {
		ownMoves int
		phase    eval.Phase
		want     types.Coordinate
	}{
		{eval.LateGameOwnMoves - 1, eval.EarlyMid, earlyMove},
		{eval.LateGameOwnMoves, eval.Late, lateMove},
		{eval.LateGameOwnMoves + 5, eval.Late, lateMove},
	}
	for _, tt := range tests {
		a := New(side, WithPosition(b, tt.ownMoves), WithDepth(2), WithLogger(zerolog.Nop()))
		if a.Phase() != tt.phase {
			t.Errorf("ownMoves %d: Phase = %v, want %v", tt.ownMoves, a.Phase(), tt.phase)
		}
		m, err := a.ChooseMove(nil, NoTimeLimit)
		if err != nil {
			t.Fatalf("ChooseMove: %v", err)
		}
		if m == nil || m.Coordinate != tt.want {
			t.Errorf("ownMoves %d: ChooseMove = %v, want %v", tt.ownMoves, m, tt.want)
		}
	}
}

func TestWithEvaluatorDrivesSearch(t *testing.T) {
	// Disc count only: d3 flips two discs, c1 flips one.
	b, err := types.ParseBoard(`
XO......
........
XOO.....
........
........
........
........
........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	greedy := eval.Weights{Piece: 1}
	a := New(types.Black,
		WithPosition(b, 0),
		WithDepth(1),
		WithEvaluator(eval.NewWithWeights(greedy, greedy)),
		WithLogger(zerolog.Nop()))
	m, err := a.ChooseMove(nil, NoTimeLimit)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if want := (types.Coordinate{Row: 2, Col: 3}); m == nil || m.Coordinate != want {
		t.Errorf("ChooseMove = %v, want %v", m, want)
	}
}
