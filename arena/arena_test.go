package arena

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"othello-local/engine/eval"
	"othello-local/storage"
	"othello-local/types"
)

var nop = zerolog.Nop()

func TestRunTallies(t *testing.T) {
	archive, err := storage.Open(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	defer archive.Close()

	sum, err := Run(context.Background(), Options{
		Games:      4,
		Workers:    2,
		Black:      PlayerSpec{Name: "search", Depth: 1},
		White:      PlayerSpec{Random: true},
		SwapColors: true,
		Archive:    archive,
		Logger:     &nop,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.Results) != 4 || sum.Tally.Games != 4 {
		t.Fatalf("results = %d, tally = %d", len(sum.Results), sum.Tally.Games)
	}

	wins := sum.Tally.Draws
	for _, n := range sum.Tally.Wins {
		wins += n
	}
	if wins != 4 {
		t.Errorf("wins + draws = %d, want 4", wins)
	}

	for i, r := range sum.Results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		wantBlack := "search"
		if i%2 == 1 {
			wantBlack = "random"
		}
		if r.Black != wantBlack {
			t.Errorf("game %d black = %q, want %q", i, r.Black, wantBlack)
		}
		if r.BlackDiscs+r.WhiteDiscs > types.Size*types.Size {
			t.Errorf("game %d disc total %d", i, r.BlackDiscs+r.WhiteDiscs)
		}
	}

	games, err := archive.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(games) != 4 {
		t.Fatalf("archived %d games, want 4", len(games))
	}
	for _, g := range games {
		full, err := archive.Get(context.Background(), g.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		board, err := full.Replay()
		if err != nil {
			t.Fatalf("Replay %s: %v", g.ID, err)
		}
		if !board.GameOver() || types.Outcome(board) != g.Result {
			t.Errorf("game %s replays to %q, archived %q", g.ID, types.Outcome(board), g.Result)
		}
	}
}

func TestRunWithRandomOpenings(t *testing.T) {
	sum, err := Run(context.Background(), Options{
		Games:        3,
		Workers:      3,
		Black:        PlayerSpec{Depth: 1},
		White:        PlayerSpec{Depth: 2},
		OpeningPlies: 6,
		Logger:       &nop,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, r := range sum.Results {
		g := storage.Game{Moves: r.Moves}
		board, err := g.Replay()
		if err != nil {
			t.Fatalf("game %d does not replay: %v", r.Index, err)
		}
		if board.Count(types.Black) != r.BlackDiscs || board.Count(types.White) != r.WhiteDiscs {
			t.Errorf("game %d: replay %d-%d, result %d-%d", r.Index,
				board.Count(types.Black), board.Count(types.White), r.BlackDiscs, r.WhiteDiscs)
		}
	}
}

func TestRunRejectsNoGames(t *testing.T) {
	if _, err := Run(context.Background(), Options{Logger: &nop}); err == nil {
		t.Error("Run with zero games should fail")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{Games: 2, Black: PlayerSpec{Depth: 1}, White: PlayerSpec{Depth: 1}, Logger: &nop})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestPlayIsDeterministic(t *testing.T) {
	play := func() (types.Board, int) {
		spec := PlayerSpec{Depth: 2}
		start := types.NewBoard()
		black := spec.build(types.Black, start, 0, nop)
		white := spec.build(types.White, start, 0, nop)
		final, moves, err := Play(context.Background(), start, types.Black, black, white)
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
		return final, len(moves)
	}
	a, na := play()
	b, nb := play()
	if a != b || na != nb {
		t.Error("engine self-play should be deterministic")
	}
	if !a.GameOver() {
		t.Error("Play stopped before the end")
	}
}

// cheater passes even when it has a move.
type cheater struct{}

func (cheater) ChooseMove(*types.Move, int) (*types.Move, error) { return nil, nil }

// squatter always plays a1.
type squatter struct{}

func (squatter) ChooseMove(*types.Move, int) (*types.Move, error) {
	mv := types.NewMove(0, 0, types.Black)
	return &mv, nil
}

func TestPlayRejectsBadPlayers(t *testing.T) {
	white := PlayerSpec{Random: true}.build(types.White, types.NewBoard(), 0, nop)
	for name, black := range map[string]Player{"pass": cheater{}, "illegal": squatter{}} {
		_, _, err := Play(context.Background(), types.NewBoard(), types.Black, black, white)
		if !errors.Is(err, types.ErrIllegalMove) {
			t.Errorf("%s: err = %v, want ErrIllegalMove", name, err)
		}
	}
}

func TestRandomPlayerFollowsOpponent(t *testing.T) {
	p := &randomPlayer{side: types.White, board: types.NewBoard()}
	opp := types.NewMove(2, 3, types.Black)
	mv, err := p.ChooseMove(&opp, -1)
	if err != nil || mv == nil {
		t.Fatalf("ChooseMove = %v, %v", mv, err)
	}
	after := types.NewBoard().MustApply(opp.Coordinate, types.Black)
	if !after.IsLegal(mv.Coordinate, types.White) {
		t.Errorf("random reply %s is not legal", mv.Coordinate)
	}

	bad := types.NewMove(0, 0, types.Black)
	if _, err := p.ChooseMove(&bad, -1); !errors.Is(err, types.ErrIllegalMove) {
		t.Errorf("illegal opponent move err = %v", err)
	}
}

func TestPlayerLabels(t *testing.T) {
	tests := []struct {
		spec PlayerSpec
		want string
	}{
		{PlayerSpec{Name: "alice", Depth: 3}, "alice"},
		{PlayerSpec{Random: true}, "random"},
		{PlayerSpec{Depth: 4}, "othello-local depth 4"},
		{PlayerSpec{Depth: 4, Late: &eval.Weights{Piece: 1}}, "othello-local depth 4 custom"},
	}
	for _, tt := range tests {
		if got := tt.spec.Label(); got != tt.want {
			t.Errorf("Label(%+v) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestCustomWeightsReachAgent(t *testing.T) {
	// With disc count as the only signal, d3 (two flips) beats c1 (one).
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
	greedy := PlayerSpec{Depth: 1, Early: &eval.Weights{Piece: 1}}
	mv, err := greedy.build(types.Black, b, 0, nop).ChooseMove(nil, -1)
	if err != nil {
		t.Fatalf("ChooseMove: %v", err)
	}
	if want := (types.Coordinate{Row: 2, Col: 3}); mv == nil || mv.Coordinate != want {
		t.Errorf("custom weights chose %v, want %v", mv, want)
	}
	if (PlayerSpec{Depth: 1}).evaluator() != nil {
		t.Error("default spec should keep the default evaluator")
	}
}
