// dump-games prints the games stored in the SQLite archive.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"othello-local/config"
	"othello-local/storage"
	"othello-local/types"
)

var (
	flagDB    = flag.String("db", "", "Path to SQLite database (default from config)")
	flagLimit = flag.Int("limit", 0, "Maximum number of games (0 = all)")
	flagID    = flag.String("id", "", "Print a single game with its moves")
	flagJSON  = flag.Bool("json", false, "Print JSON instead of text")
)

func main() {
	flag.Parse()

	path := *flagDB
	if path == "" {
		cfg, err := config.InitConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s\n", err)
			os.Exit(1)
		}
		path = cfg.ArchivePath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Database not found at %s\n", path)
		os.Exit(1)
	}

	archive, err := storage.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open: %s\n", err)
		os.Exit(1)
	}
	defer archive.Close()

	ctx := context.Background()
	if *flagID != "" {
		g, err := archive.Get(ctx, *flagID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		if *flagJSON {
			printJSON(g)
			return
		}
		printGame(g)
		fmt.Println("Moves:", formatMoves(g.Moves))
		if board, err := g.Replay(); err == nil {
			fmt.Print(board.String())
		}
		return
	}

	games, err := archive.List(ctx, *flagLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	if *flagJSON {
		printJSON(games)
		return
	}
	for _, g := range games {
		printGame(g)
		fmt.Println("--------------------------------------------------")
	}
	fmt.Printf("Total games found: %d\n", len(games))
}

func printGame(g storage.Game) {
	fmt.Printf("Game ID: %s\n", g.ID)
	fmt.Printf("Time: %s - %s\n", g.StartedAt.Format(time.RFC822), g.EndedAt.Format(time.RFC822))
	fmt.Printf("Players: %s (black) vs %s (white)\n", g.Black, g.White)
	fmt.Printf("Result: %s\n", g.Result)
}

func formatMoves(moves []storage.MoveEntry) string {
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		if m.IsPass() {
			parts = append(parts, m.Side.Letter()+":pass")
			continue
		}
		parts = append(parts, m.Side.Letter()+":"+types.Coordinate{Row: m.Row, Col: m.Col}.String())
	}
	return strings.Join(parts, " ")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %s\n", err)
		os.Exit(1)
	}
}
