// othello-server serves games against the engine over websockets and
// lists archived games over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"othello-local/config"
	"othello-local/logging"
	"othello-local/server"
	"othello-local/storage"
)

var (
	flagAddr      = flag.String("addr", "", "Listen address (default from config)")
	flagDepth     = flag.Int("depth", 0, "Search depth in plies (default from config)")
	flagDB        = flag.String("db", "", "SQLite archive path (default from config)")
	flagNoArchive = flag.Bool("no-archive", false, "Do not archive finished games")
	flagLogLevel  = flag.String("log-level", "", "Log level (debug, info, warn, error)")
)

func main() {
	flag.Parse()

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		os.Exit(1)
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "othello-server: %s\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	level := cfg.Log.Level
	if *flagLogLevel != "" {
		level = *flagLogLevel
	}
	logger, closer, err := logging.Setup(logging.Options{Level: level, Console: true})
	if err != nil {
		return err
	}
	defer closer.Close()

	addr := cfg.Server.Addr
	if *flagAddr != "" {
		addr = *flagAddr
	}
	depth := cfg.Engine.Depth
	if *flagDepth >= config.MinDepth && *flagDepth <= config.MaxDepth {
		depth = *flagDepth
	}

	var archive *storage.Archive
	if !*flagNoArchive {
		path := cfg.ArchivePath()
		if *flagDB != "" {
			path = *flagDB
		}
		archive, err = storage.Open(path)
		if err != nil {
			return err
		}
		defer archive.Close()
		logger.Info().Str("path", path).Msg("archive-open")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srvLog := logger.With().Str("component", "server").Logger()
	srv := server.New(server.Options{Depth: depth, Archive: archive, Logger: &srvLog})
	return srv.Run(ctx, addr)
}
