// Package gtp speaks a GTP-style text protocol for Othello engines, both
// as a client driving an external engine and as a server exposing the
// built-in one.
package gtp

import (
	"fmt"
	"strconv"
	"strings"

	"othello-local/types"
)

// Vertex notation:
// - Columns: a-h (left to right)
// - Rows: 1-8 (from the top of the board, as in Othello transcripts)
// - Example: d3, f5, "pass"
//
// Board coordinate system:
// - X: 0-7 (left to right)
// - Y: 0-7 (top to bottom)
// - Example: (3, 2) for d3

// posToVertex converts board coordinates to vertex notation.
// (0, 0) -> a1, (3, 2) -> d3, (7, 7) -> h8
func posToVertex(x, y int) string {
	if x < 0 || y < 0 {
		return "pass"
	}
	return fmt.Sprintf("%c%d", 'a'+rune(x), y+1)
}

// vertexToPos converts vertex notation to board coordinates.
// Returns (-1, -1) for "pass".
func vertexToPos(vertex string) (int, int, error) {
	vertex = strings.TrimSpace(strings.ToLower(vertex))

	if vertex == "pass" {
		return -1, -1, nil
	}

	if len(vertex) != 2 {
		return 0, 0, fmt.Errorf("invalid vertex: %s", vertex)
	}

	col := int(vertex[0] - 'a')
	if col < 0 || col >= types.Size {
		return 0, 0, fmt.Errorf("invalid column in vertex: %s", vertex)
	}

	row, err := strconv.Atoi(vertex[1:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid row in vertex: %s", vertex)
	}
	if row < 1 || row > types.Size {
		return 0, 0, fmt.Errorf("vertex out of bounds: %s", vertex)
	}

	return col, row - 1, nil
}

// colorToGTP converts a color (1=black, 2=white) to GTP color string.
func colorToGTP(color int) string {
	if color == 1 {
		return "black"
	}
	return "white"
}

// gtpToSide converts a GTP color string to a side.
func gtpToSide(color string) (types.Side, error) {
	return types.ParseSide(color)
}

// oppositeColor returns the opposite color (1->2, 2->1).
func oppositeColor(color int) int {
	if color == 1 {
		return 2
	}
	return 1
}
