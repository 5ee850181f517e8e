package eval

import (
	"testing"

	"othello-local/types"
)

func boards(t *testing.T) []types.Board {
	t.Helper()
	var out []types.Board
	b := types.NewBoard()
	out = append(out, b, types.EmptyBoard())
	side := types.Black
	// Follow the first legal move for a while to get some midgame shapes.
	for i := 0; i < 40; i++ {
		moves := b.LegalMoves(side)
		if len(moves) == 0 {
			side = side.Opponent()
			if !b.HasAnyLegalMove(side) {
				break
			}
			continue
		}
		b = b.MustApply(moves[i%len(moves)], side)
		out = append(out, b)
		side = side.Opponent()
	}
	full, err := types.ParseBoard(`
XXXXXXXX
XXXXXXXX
XXOOOXXX
XXXXOOOO
OOOOOOOO
OOXXOOOO
OOOOOOOO
OOOOOOOX`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return append(out, full)
}

func TestZeroSumSymmetry(t *testing.T) {
	e := New()
	for i, b := range boards(t) {
		for _, p := range []Phase{EarlyMid, Late} {
			black := e.Evaluate(b, types.Black, p)
			white := e.Evaluate(b, types.White, p)
			if black != -white {
				t.Errorf("board %d phase %v: black %v, white %v", i, p, black, white)
			}
		}
	}
}

func TestRatioGuards(t *testing.T) {
	empty := types.EmptyBoard()
	if got := Mobility(empty, types.Black); got != 0 {
		t.Errorf("Mobility(empty) = %v, want 0", got)
	}
	if got := Frontier(empty, types.Black); got != 0 {
		t.Errorf("Frontier(empty) = %v, want 0", got)
	}
	if got := Piece(empty, types.Black); got != 0 {
		t.Errorf("Piece(empty) = %v, want 0", got)
	}
	if got := Evaluate(empty, types.White, Late); got != 0 {
		t.Errorf("Evaluate(empty) = %v, want 0", got)
	}
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b int
		want float64
	}{
		{0, 0, 0},
		{4, 0, 100},
		{0, 4, -100},
		{3, 1, 50},
		{2, 2, 0},
	}
	for _, tt := range tests {
		if got := ratio(tt.a, tt.b); got != tt.want {
			t.Errorf("ratio(%d, %d) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPieceWeightFlipsSign(t *testing.T) {
	if EarlyPieceWeight >= 0 {
		t.Errorf("EarlyPieceWeight = %v, want negative", EarlyPieceWeight)
	}
	if LatePieceWeight <= 0 {
		t.Errorf("LatePieceWeight = %v, want positive", LatePieceWeight)
	}
	if EarlyMobilityWeight <= LateMobilityWeight {
		t.Error("mobility should weigh more early than late")
	}

	// Black up on material with nothing else going on.
	b, err := types.ParseBoard(`
........
........
........
...XXX..
...XO...
........
........
........`)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	early := New().Breakdown(b, types.Black, EarlyMid)
	late := New().Breakdown(b, types.Black, Late)
	if early.Piece >= 0 {
		t.Errorf("early piece term = %v, want negative", early.Piece)
	}
	if late.Piece <= 0 {
		t.Errorf("late piece term = %v, want positive", late.Piece)
	}
}

func TestPositional(t *testing.T) {
	var b types.Board
	b.Set(types.Coordinate{Row: 0, Col: 0}, types.Black)
	b.Set(types.Coordinate{Row: 1, Col: 1}, types.White)
	if got := Positional(b, types.Black); got != 150 {
		t.Errorf("Positional(black) = %d, want 150", got)
	}
	if got := Positional(b, types.White); got != -150 {
		t.Errorf("Positional(white) = %d, want -150", got)
	}
}

func TestPositionWeightsSymmetric(t *testing.T) {
	for r := 0; r < types.Size; r++ {
		for c := 0; c < types.Size; c++ {
			w := PositionWeights[r][c]
			if PositionWeights[types.Size-1-r][c] != w || PositionWeights[r][types.Size-1-c] != w || PositionWeights[c][r] != w {
				t.Fatalf("weight table not symmetric at (%d, %d)", r, c)
			}
		}
	}
}

func TestPhaseFor(t *testing.T) {
	tests := []struct {
		moves int
		want  Phase
	}{
		{0, EarlyMid},
		{LateGameOwnMoves - 1, EarlyMid},
		{LateGameOwnMoves, Late},
		{30, Late},
	}
	for _, tt := range tests {
		if got := PhaseFor(tt.moves); got != tt.want {
			t.Errorf("PhaseFor(%d) = %v, want %v", tt.moves, got, tt.want)
		}
	}
	if PhaseForBoard(types.NewBoard()) != EarlyMid {
		t.Error("start position should be early")
	}
}

func TestBreakdownTotal(t *testing.T) {
	e := New()
	for _, b := range boards(t) {
		s := e.Breakdown(b, types.Black, EarlyMid)
		if s.Total != s.Positional+s.Mobility+s.Frontier+s.Piece {
			t.Fatalf("Total %v does not match its terms %+v", s.Total, s)
		}
	}
}

func TestParseWeights(t *testing.T) {
	tests := []struct {
		in      string
		want    Weights
		wantErr bool
	}{
		{"1,8,3,-1", WeightsFor(EarlyMid), false},
		{" 2, 2 ,5,10", WeightsFor(Late), false},
		{"1,2,3", Weights{}, true},
		{"1,2,x,4", Weights{}, true},
	}
	for _, tt := range tests {
		got, err := ParseWeights(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWeights(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeights(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestNewWithWeights(t *testing.T) {
	b := types.NewBoard().MustApply(types.Coordinate{Row: 2, Col: 3}, types.Black)
	e := NewWithWeights(Weights{Piece: 1}, Weights{Positional: 1})
	if got, want := e.Evaluate(b, types.Black, EarlyMid), Piece(b, types.Black); got != want {
		t.Errorf("early = %v, want disc ratio %v", got, want)
	}
	if got, want := e.Evaluate(b, types.Black, Late), float64(Positional(b, types.Black)); got != want {
		t.Errorf("late = %v, want positional %v", got, want)
	}
}
