// Package arena plays engine configurations against each other.
package arena

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"othello-local/engine/agent"
	"othello-local/storage"
	"othello-local/types"
)

// Options configures a tournament.
type Options struct {
	Games   int
	Workers int // concurrent games; defaults to GOMAXPROCS
	Black   PlayerSpec
	White   PlayerSpec
	// SwapColors gives the White player the black discs in every odd game.
	SwapColors bool
	// OpeningPlies random moves are played before the players take over.
	OpeningPlies int
	Archive      *storage.Archive
	Logger       *zerolog.Logger
}

// GameResult is the outcome of one arena game.
type GameResult struct {
	Index      int
	ID         string
	Black      string
	White      string
	BlackDiscs int
	WhiteDiscs int
	Winner     types.Side
	Result     string
	Moves      []storage.MoveEntry
	Started    time.Time
	Elapsed    time.Duration
}

// WinnerName returns the winning player's label, or "" for a draw.
func (r GameResult) WinnerName() string {
	switch r.Winner {
	case types.Black:
		return r.Black
	case types.White:
		return r.White
	}
	return ""
}

// Tally counts results by player label.
type Tally struct {
	Games int
	Draws int
	Wins  map[string]int
	Discs map[string]int
}

// Summary is everything Run produces.
type Summary struct {
	Results []GameResult
	Tally   Tally
}

// Run plays opts.Games games with at most opts.Workers in flight. Each
// game runs on a single goroutine. The first failing game cancels the rest.
func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Games < 1 {
		return Summary{}, errors.New("arena: at least one game required")
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := log.With().Str("component", "arena").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	results := make([]GameResult, opts.Games)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	start := time.Now()
	logger.Info().Int("games", opts.Games).Int("workers", workers).
		Str("black", opts.Black.Label()).Str("white", opts.White.Label()).Msg("arena-start")

	for i := 0; i < opts.Games; i++ {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			black, white := opts.Black, opts.White
			if opts.SwapColors && i%2 == 1 {
				black, white = white, black
			}
			res, err := playOne(gctx, i, black, white, opts.OpeningPlies, logger)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}
			results[i] = res
			logger.Info().Int("game", i).Str("result", res.Result).
				Str("black", res.Black).Str("white", res.White).
				Dur("elapsed", res.Elapsed).Msg("game-finished")

			if opts.Archive != nil {
				if _, err := opts.Archive.Save(gctx, res.record()); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	sum := Summary{Results: results, Tally: tally(results)}
	logger.Info().Int("games", sum.Tally.Games).Int("draws", sum.Tally.Draws).
		Interface("wins", sum.Tally.Wins).Dur("elapsed", time.Since(start)).Msg("arena-done")
	return sum, nil
}

func playOne(ctx context.Context, index int, blackSpec, whiteSpec PlayerSpec, openingPlies int, logger zerolog.Logger) (GameResult, error) {
	t0 := time.Now()
	board, toMove, opening := randomOpening(openingPlies)
	made := map[types.Side]int{}
	for _, m := range opening {
		if !m.IsPass() {
			made[m.Side]++
		}
	}
	id := uuid.NewString()
	glog := logger.With().Str("game", id).Logger()
	black := blackSpec.build(types.Black, board, made[types.Black], glog)
	white := whiteSpec.build(types.White, board, made[types.White], glog)

	final, moves, err := Play(ctx, board, toMove, black, white)
	if err != nil {
		return GameResult{}, err
	}
	moves = append(opening, moves...)
	return GameResult{
		Index:      index,
		ID:         id,
		Black:      blackSpec.Label(),
		White:      whiteSpec.Label(),
		BlackDiscs: final.Count(types.Black),
		WhiteDiscs: final.Count(types.White),
		Winner:     final.Winner(),
		Result:     types.Outcome(final),
		Moves:      moves,
		Started:    t0,
		Elapsed:    time.Since(t0),
	}, nil
}

// Play referees a game from board with toMove to play until neither side
// can move. Players must already hold board as their position. A player
// that passes with a legal move, or plays an illegal one, forfeits with
// an error.
func Play(ctx context.Context, board types.Board, toMove types.Side, black, white Player) (types.Board, []storage.MoveEntry, error) {
	players := map[types.Side]Player{types.Black: black, types.White: white}
	var (
		last  *types.Move
		moves []storage.MoveEntry
	)
	side := toMove
	for !board.GameOver() {
		if err := ctx.Err(); err != nil {
			return board, moves, err
		}
		t0 := time.Now()
		mv, err := players[side].ChooseMove(last, agent.NoTimeLimit)
		if err != nil {
			return board, moves, fmt.Errorf("%s: %w", side, err)
		}
		if mv == nil {
			if board.HasAnyLegalMove(side) {
				return board, moves, fmt.Errorf("%s passed with a legal move: %w", side, types.ErrIllegalMove)
			}
			moves = append(moves, storage.PassEntry(side))
			last = nil
		} else {
			next, err := board.Apply(mv.Coordinate, side)
			if err != nil {
				return board, moves, fmt.Errorf("%s played %s: %w", side, mv.Coordinate, err)
			}
			board = next
			moves = append(moves, storage.MoveEntry{
				Side:       side,
				Row:        mv.Row,
				Col:        mv.Col,
				DurationMS: time.Since(t0).Milliseconds(),
			})
			last = mv
		}
		side = side.Opponent()
	}
	return board, moves, nil
}

// record converts a result for the archive. Random openings are stored as
// ordinary moves so the record replays from the standard position.
func (r GameResult) record() storage.Game {
	return storage.Game{
		ID:         r.ID,
		StartedAt:  r.Started,
		EndedAt:    r.Started.Add(r.Elapsed),
		Black:      r.Black,
		White:      r.White,
		BlackDiscs: r.BlackDiscs,
		WhiteDiscs: r.WhiteDiscs,
		Result:     r.Result,
		Moves:      r.Moves,
	}
}

func tally(results []GameResult) Tally {
	t := Tally{Wins: map[string]int{}, Discs: map[string]int{}}
	for _, r := range results {
		t.Games++
		t.Discs[r.Black] += r.BlackDiscs
		t.Discs[r.White] += r.WhiteDiscs
		if name := r.WinnerName(); name != "" {
			t.Wins[name]++
		} else {
			t.Draws++
		}
	}
	return t
}
