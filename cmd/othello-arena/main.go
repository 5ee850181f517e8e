// othello-arena plays engine configurations against each other and prints
// a tally.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"

	"othello-local/arena"
	"othello-local/config"
	"othello-local/engine/eval"
	"othello-local/logging"
	"othello-local/storage"
)

var (
	flagGames      = flag.Int("games", 10, "Number of games")
	flagWorkers    = flag.Int("workers", runtime.NumCPU(), "Concurrent games")
	flagBlackDepth = flag.Int("black-depth", 5, "Search depth for the black player")
	flagWhiteDepth = flag.Int("white-depth", 5, "Search depth for the white player")
	flagBlackRand  = flag.Bool("black-random", false, "Black plays random moves")
	flagWhiteRand  = flag.Bool("white-random", false, "White plays random moves")
	flagBlackEarly = flag.String("black-early", "", "Black early weights: positional,mobility,frontier,piece")
	flagBlackLate  = flag.String("black-late", "", "Black late weights: positional,mobility,frontier,piece")
	flagWhiteEarly = flag.String("white-early", "", "White early weights: positional,mobility,frontier,piece")
	flagWhiteLate  = flag.String("white-late", "", "White late weights: positional,mobility,frontier,piece")
	flagSwap       = flag.Bool("swap", true, "Swap colors every other game")
	flagOpening    = flag.Int("opening", 0, "Random plies before the players take over")
	flagArchive    = flag.Bool("archive", false, "Store games in the SQLite archive")
	flagDB         = flag.String("db", "", "SQLite archive path (default from config)")
	flagLogLevel   = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "othello-arena: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger, closer, err := logging.Setup(logging.Options{Level: *flagLogLevel, Console: true})
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := arena.Options{
		Games:        *flagGames,
		Workers:      *flagWorkers,
		Black:        arena.PlayerSpec{Depth: *flagBlackDepth, Random: *flagBlackRand},
		White:        arena.PlayerSpec{Depth: *flagWhiteDepth, Random: *flagWhiteRand},
		SwapColors:   *flagSwap,
		OpeningPlies: *flagOpening,
		Logger:       &logger,
	}
	for _, w := range []struct {
		flag string
		dst  **eval.Weights
	}{
		{*flagBlackEarly, &opts.Black.Early},
		{*flagBlackLate, &opts.Black.Late},
		{*flagWhiteEarly, &opts.White.Early},
		{*flagWhiteLate, &opts.White.Late},
	} {
		if w.flag == "" {
			continue
		}
		parsed, err := eval.ParseWeights(w.flag)
		if err != nil {
			return err
		}
		*w.dst = &parsed
	}
	if opts.Black.Label() == opts.White.Label() {
		opts.Black.Name = "A: " + opts.Black.Label()
		opts.White.Name = "B: " + opts.White.Label()
	}

	if *flagArchive {
		path := *flagDB
		if path == "" {
			cfg, err := config.InitConfig()
			if err != nil {
				return err
			}
			path = cfg.ArchivePath()
		}
		archive, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer archive.Close()
		opts.Archive = archive
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sum, err := arena.Run(ctx, opts)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(sum.Tally.Discs))
	for name := range sum.Tally.Discs {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("%d games, %d draws\n", sum.Tally.Games, sum.Tally.Draws)
	for _, name := range names {
		fmt.Printf("  %-28s wins %3d  discs %5d\n", name, sum.Tally.Wins[name], sum.Tally.Discs[name])
	}
	return nil
}
