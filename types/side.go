package types

import (
	"fmt"
	"strings"
)

// Side identifies a player, and doubles as the content of a board cell.
// The numeric values match the 1=black, 2=white convention used across
// the UI and the record formats.
type Side int

const (
	None  Side = 0
	Black Side = 1
	White Side = 2
)

// Opponent returns the other side. None has no opponent and maps to None.
func (s Side) Opponent() Side {
	switch s {
	case Black:
		return White
	case White:
		return Black
	}
	return None
}

func (s Side) String() string {
	switch s {
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "none"
}

// Letter returns the single-letter tag used in records ("B" or "W").
func (s Side) Letter() string {
	if s == White {
		return "W"
	}
	return "B"
}

// ParseSide accepts "black", "b", "white" or "w" in any case.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "black", "b":
		return Black, nil
	case "white", "w":
		return White, nil
	}
	return None, fmt.Errorf("invalid side %q", s)
}

// Coordinate addresses a cell, row 0 at the top and column 0 at the left.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether both components are inside the 8x8 grid.
func (c Coordinate) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// String renders the coordinate in algebraic form, "a1" through "h8".
func (c Coordinate) String() string {
	if !c.Valid() {
		return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
	}
	return fmt.Sprintf("%c%d", 'a'+rune(c.Col), c.Row+1)
}

// Move is a coordinate played by a side.
type Move struct {
	Coordinate
	Side Side `json:"side"`
}

// NewMove is shorthand for building a Move.
func NewMove(row, col int, side Side) Move {
	return Move{Coordinate: Coordinate{Row: row, Col: col}, Side: side}
}

func (m Move) String() string {
	return fmt.Sprintf("%s %s", m.Side, m.Coordinate)
}
