// Package storage archives finished games in a SQLite database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"othello-local/types"
)

// ErrNotFound is returned by Get for an unknown game id.
var ErrNotFound = errors.New("game not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id TEXT PRIMARY KEY,
	started_at INTEGER,
	ended_at INTEGER,
	black_name TEXT,
	white_name TEXT,
	black_discs INTEGER,
	white_discs INTEGER,
	result TEXT,
	moves TEXT
);
CREATE INDEX IF NOT EXISTS games_started_at ON games (started_at);
`

// MoveEntry is one archived move. Row and Col are -1 for a pass.
type MoveEntry struct {
	Side       types.Side `json:"side"`
	Row        int        `json:"row"`
	Col        int        `json:"col"`
	DurationMS int64      `json:"duration_ms,omitempty"`
}

// IsPass reports whether the entry is a pass.
func (m MoveEntry) IsPass() bool {
	return m.Row < 0 || m.Col < 0
}

// PassEntry returns the archived form of a pass by side.
func PassEntry(side types.Side) MoveEntry {
	return MoveEntry{Side: side, Row: -1, Col: -1}
}

// Game is a finished game record.
type Game struct {
	ID         string      `json:"id"`
	StartedAt  time.Time   `json:"started_at"`
	EndedAt    time.Time   `json:"ended_at"`
	Black      string      `json:"black"`
	White      string      `json:"white"`
	BlackDiscs int         `json:"black_discs"`
	WhiteDiscs int         `json:"white_discs"`
	Result     string      `json:"result"`
	Moves      []MoveEntry `json:"moves,omitempty"`
}

// SetFinal records the final disc counts and outcome of board.
func (g *Game) SetFinal(board types.Board) {
	g.BlackDiscs = board.Count(types.Black)
	g.WhiteDiscs = board.Count(types.White)
	g.Result = types.Outcome(board)
}

// Replay applies the archived moves to the standard start position.
func (g *Game) Replay() (types.Board, error) {
	board := types.NewBoard()
	for i, m := range g.Moves {
		if m.IsPass() {
			continue
		}
		next, err := board.Apply(types.Coordinate{Row: m.Row, Col: m.Col}, m.Side)
		if err != nil {
			return board, fmt.Errorf("move %d: %w", i+1, err)
		}
		board = next
	}
	return board, nil
}

// Archive is a SQLite-backed game store. It is safe for concurrent use.
type Archive struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens or creates the archive at path, creating parent directories.
func Open(path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	a := &Archive{db: db, log: log.With().Str("component", "storage").Logger()}
	a.log.Debug().Str("path", path).Msg("archive-opened")
	return a, nil
}

// Save inserts a game, assigning a new id when g.ID is empty. The id used
// is returned.
func (a *Archive) Save(ctx context.Context, g Game) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.EndedAt.IsZero() {
		g.EndedAt = time.Now()
	}

	moves, err := json.Marshal(g.Moves)
	if err != nil {
		return "", fmt.Errorf("encode moves: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO games (id, started_at, ended_at, black_name, white_name, black_discs, white_discs, result, moves)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID,
		g.StartedAt.UnixMilli(),
		g.EndedAt.UnixMilli(),
		g.Black,
		g.White,
		g.BlackDiscs,
		g.WhiteDiscs,
		g.Result,
		string(moves),
	)
	if err != nil {
		return "", fmt.Errorf("save game %s: %w", g.ID, err)
	}

	a.log.Info().Str("game", g.ID).Str("result", g.Result).Int("moves", len(g.Moves)).Msg("game-saved")
	return g.ID, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner, withMoves bool) (Game, error) {
	var (
		g               Game
		started, ended  int64
		black, white    sql.NullString
		result, encoded sql.NullString
	)
	dest := []any{&g.ID, &started, &ended, &black, &white, &g.BlackDiscs, &g.WhiteDiscs, &result}
	if withMoves {
		dest = append(dest, &encoded)
	}
	if err := s.Scan(dest...); err != nil {
		return Game{}, err
	}
	g.StartedAt = time.UnixMilli(started)
	g.EndedAt = time.UnixMilli(ended)
	g.Black = black.String
	g.White = white.String
	g.Result = result.String
	if withMoves && encoded.String != "" {
		if err := json.Unmarshal([]byte(encoded.String), &g.Moves); err != nil {
			return Game{}, fmt.Errorf("decode moves of %s: %w", g.ID, err)
		}
	}
	return g, nil
}

// Get loads one game including its moves.
func (a *Archive) Get(ctx context.Context, id string) (Game, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, started_at, ended_at, black_name, white_name, black_discs, white_discs, result, moves
		FROM games WHERE id = ?`, id)
	g, err := scanGame(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return Game{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Game{}, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}

// List returns up to limit games, newest first, without their moves.
// A limit <= 0 returns every game.
func (a *Archive) List(ctx context.Context, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, started_at, ended_at, black_name, white_name, black_discs, white_discs, result
		FROM games ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []Game
	for rows.Next() {
		g, err := scanGame(rows, false)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}
