// othello-gtp exposes the engine over a GTP-style text protocol on stdin
// and stdout, for GUIs and for the terminal client's external engine mode.
package main

import (
	"flag"
	"fmt"
	"os"

	"othello-local/config"
	"othello-local/engine/gtp"
	"othello-local/logging"
)

var (
	flagDepth    = flag.Int("depth", 0, "Search depth in plies (default from config)")
	flagLogLevel = flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flagLogFile  = flag.String("log-file", "", "Write logs to this file instead of stderr")
)

func main() {
	flag.Parse()

	cfg, err := config.InitConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %s\n", err)
		os.Exit(1)
	}

	level := cfg.Log.Level
	if *flagLogLevel != "" {
		level = *flagLogLevel
	}
	logger, closer, err := logging.Setup(logging.Options{Level: level, File: *flagLogFile, Console: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: %s\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	depth := cfg.Engine.Depth
	if *flagDepth >= config.MinDepth && *flagDepth <= config.MaxDepth {
		depth = *flagDepth
	}

	srv := gtp.NewServer(depth).WithLogger(logger.With().Str("component", "gtp-server").Logger())
	logger.Info().Int("depth", depth).Msg("gtp-ready")
	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("serve-failed")
		closer.Close()
		os.Exit(1)
	}
}
