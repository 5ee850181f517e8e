package local

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"othello-local/engine"
	"othello-local/types"
)

type recorder struct {
	mu      sync.Mutex
	moves   [][3]int
	outcome string
	last    *types.BoardState
}

func (r *recorder) onMove(x, y, color int, st *types.BoardState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, [3]int{x, y, color})
	r.last = st
}

func (r *recorder) onEnd(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcome = outcome
}

func newGame(t *testing.T, color int) (*LocalEngine, *recorder) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.PlayerColor = color
	cfg.Depth = 1
	g := NewLocalEngine(cfg)
	rec := &recorder{}
	g.OnMove(rec.onMove)
	g.OnGameEnd(rec.onEnd)
	if err := g.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(g.Close)
	return g, rec
}

func TestHumanBlackMovesFirst(t *testing.T) {
	g, _ := newGame(t, 1)
	if !g.IsMyTurn() {
		t.Fatal("black human should move first")
	}
	if g.GetPlayerColor() != 1 {
		t.Errorf("GetPlayerColor = %d, want 1", g.GetPlayerColor())
	}
	st := g.GetBoardState()
	if len(st.LegalMoves) != 4 {
		t.Errorf("legal hints = %d, want 4", len(st.LegalMoves))
	}
}

func TestHumanWhiteWaitsForEngine(t *testing.T) {
	g, rec := newGame(t, 2)
	g.Wait()
	if !g.IsMyTurn() {
		t.Fatal("engine should have played black's first move")
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.moves) != 1 || rec.moves[0][2] != 1 {
		t.Fatalf("moves = %v, want one black move", rec.moves)
	}
}

func TestIllegalMoveRejected(t *testing.T) {
	g, _ := newGame(t, 1)
	if err := g.PlayMove(0, 0); !errors.Is(err, types.ErrIllegalMove) {
		t.Errorf("PlayMove(0,0) = %v, want ErrIllegalMove", err)
	}
	if err := g.Pass(); !errors.Is(err, ErrCannotPass) {
		t.Errorf("Pass = %v, want ErrCannotPass", err)
	}
	if !g.IsMyTurn() {
		t.Error("turn lost after rejected move")
	}
}

func TestPlayFullGame(t *testing.T) {
	g, rec := newGame(t, 1)
	for i := 0; i < 100 && !g.GetBoardState().Finished(); i++ {
		g.Wait()
		if !g.IsMyTurn() {
			continue
		}
		st := g.GetBoardState()
		if len(st.LegalMoves) == 0 {
			t.Fatal("human's turn with no legal moves; should have passed automatically")
		}
		p := st.LegalMoves[len(st.LegalMoves)-1]
		if err := g.PlayMove(p.X, p.Y); err != nil {
			t.Fatalf("PlayMove(%d, %d): %v", p.X, p.Y, err)
		}
	}
	g.Wait()

	st := g.GetBoardState()
	if !st.Finished() {
		t.Fatal("game did not finish")
	}
	if err := g.PlayMove(0, 0); !errors.Is(err, ErrGameOver) {
		t.Errorf("PlayMove after end = %v, want ErrGameOver", err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.outcome == "" || rec.outcome != st.Outcome {
		t.Errorf("outcome = %q, board says %q", rec.outcome, st.Outcome)
	}
	if !strings.Contains(rec.outcome, "wins") && !strings.HasPrefix(rec.outcome, "Draw") {
		t.Errorf("unexpected outcome %q", rec.outcome)
	}
	if st.BlackCount+st.WhiteCount < 5 {
		t.Errorf("final disc count %d too small", st.BlackCount+st.WhiteCount)
	}
}

// gatedMover blocks inside ChooseMove until release is closed.
type gatedMover struct {
	entered chan struct{}
	release chan struct{}
}

func (m *gatedMover) ChooseMove(opp *types.Move, _ int) (*types.Move, error) {
	close(m.entered)
	<-m.release
	mv := types.NewMove(2, 3, types.Black)
	return &mv, nil
}

func TestStateReadableDuringSearch(t *testing.T) {
	cfg := engine.DefaultConfig()
	cfg.PlayerColor = 2
	g := NewLocalEngine(cfg)
	bot := &gatedMover{entered: make(chan struct{}), release: make(chan struct{})}
	g.newBot = func(types.Side) mover { return bot }
	if err := g.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(g.Close)
	<-bot.entered

	done := make(chan bool)
	go func() {
		_ = g.GetBoardState()
		done <- g.IsMyTurn()
	}()
	select {
	case mine := <-done:
		if mine {
			t.Error("human to move while the engine is searching")
		}
	case <-time.After(2 * time.Second):
		close(bot.release)
		t.Fatal("board state blocked on the search")
	}

	close(bot.release)
	g.Wait()
	if !g.IsMyTurn() {
		t.Error("engine move not applied after the search")
	}
	if st := g.GetBoardState(); st.MoveNumber != 1 {
		t.Errorf("MoveNumber = %d, want 1", st.MoveNumber)
	}
}
