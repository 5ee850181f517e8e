package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"othello-local/types"
)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "nested", "games.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleGame(start time.Time) Game {
	g := Game{
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Black:     "Player",
		White:     "othello-local depth 5",
		Moves: []MoveEntry{
			{Side: types.Black, Row: 2, Col: 3, DurationMS: 1200},
			{Side: types.White, Row: 2, Col: 2},
			PassEntry(types.Black),
		},
	}
	board, _ := g.Replay()
	g.SetFinal(board)
	return g
}

func TestSaveAndGet(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	start := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	id, err := a.Save(ctx, sampleGame(start))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id == "" {
		t.Fatal("Save should assign an id")
	}

	g, err := a.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !g.StartedAt.Equal(start) || !g.EndedAt.Equal(start.Add(time.Minute)) {
		t.Errorf("times = %v / %v", g.StartedAt, g.EndedAt)
	}
	if g.Black != "Player" || g.White != "othello-local depth 5" {
		t.Errorf("players = %q / %q", g.Black, g.White)
	}
	if g.BlackDiscs != 3 || g.WhiteDiscs != 3 || g.Result != "Draw 3-3" {
		t.Errorf("final = %d-%d %q", g.BlackDiscs, g.WhiteDiscs, g.Result)
	}
	if len(g.Moves) != 3 {
		t.Fatalf("moves = %+v", g.Moves)
	}
	if g.Moves[0].DurationMS != 1200 || !g.Moves[2].IsPass() {
		t.Errorf("moves not preserved: %+v", g.Moves)
	}
}

func TestSaveKeepsGivenID(t *testing.T) {
	a := openTemp(t)
	g := sampleGame(time.Now())
	g.ID = "fixed-id"
	id, err := a.Save(context.Background(), g)
	if err != nil || id != "fixed-id" {
		t.Fatalf("Save = %q, %v", id, err)
	}
	if _, err := a.Save(context.Background(), g); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestGetNotFound(t *testing.T) {
	a := openTemp(t)
	if _, err := a.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		id, err := a.Save(ctx, sampleGame(base.Add(time.Duration(i)*time.Hour)))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, id)
	}

	games, err := a.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("len = %d, want 3", len(games))
	}
	for i, want := range []string{ids[2], ids[1], ids[0]} {
		if games[i].ID != want {
			t.Errorf("games[%d] = %s, want %s", i, games[i].ID, want)
		}
		if games[i].Moves != nil {
			t.Errorf("List should not load moves")
		}
	}

	limited, err := a.List(ctx, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("List(2) = %d games, %v", len(limited), err)
	}
}

func TestReopenKeepsGames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := a.Save(context.Background(), sampleGame(time.Now()))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	a.Close()

	b, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if _, err := b.Get(context.Background(), id); err != nil {
		t.Errorf("Get after reopen: %v", err)
	}
}

func TestReplayIllegal(t *testing.T) {
	g := Game{Moves: []MoveEntry{{Side: types.Black, Row: 0, Col: 0}}}
	if _, err := g.Replay(); !errors.Is(err, types.ErrIllegalMove) {
		t.Errorf("Replay = %v, want ErrIllegalMove", err)
	}
}
