// Package engine defines the interface for game engines.
package engine

import (
	"fmt"

	"othello-local/engine/search"
	"othello-local/types"
)

// GameEngine defines the interface for playing Othello against an engine.
type GameEngine interface {
	// Connect starts the engine and initializes the game.
	Connect() error

	// GetBoardState returns the current board state.
	GetBoardState() *types.BoardState

	// PlayMove plays a move at the given coordinates.
	// Returns an error if the move is illegal.
	PlayMove(x, y int) error

	// Pass passes the current turn. Only allowed when no legal move exists.
	Pass() error

	// IsMyTurn returns true if it's the human player's turn.
	IsMyTurn() bool

	// GetPlayerColor returns the human player's color (1=black, 2=white).
	GetPlayerColor() int

	// OnMove registers a callback for when a move is played (by either player).
	// x, y are -1, -1 for a pass. boardState is passed directly to avoid lock contention.
	OnMove(func(x, y, color int, boardState *types.BoardState))

	// OnGameEnd registers a callback for when the game ends.
	OnGameEnd(func(outcome string))

	// Close shuts down the engine.
	Close()
}

// GameConfig holds configuration for starting a new game.
type GameConfig struct {
	PlayerColor int    // 1=black, 2=white
	Depth       int    // search depth in plies
	EnginePath  string // external engine binary; empty uses the built-in engine
}

// DefaultConfig returns a reasonable default configuration.
func DefaultConfig() GameConfig {
	return GameConfig{
		PlayerColor: 1, // Human plays black
		Depth:       search.DefaultDepth,
	}
}

// EngineName describes the opponent for game records.
func (c GameConfig) EngineName() string {
	if c.EnginePath != "" {
		return "External engine"
	}
	return fmt.Sprintf("othello-local depth %d", c.Depth)
}

