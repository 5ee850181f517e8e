package types

import (
	"errors"
	"fmt"
	"strings"
)

// Size is the width and height of the board.
const Size = 8

var (
	// ErrIllegalMove is returned when a placement would flip no discs or
	// lands on an occupied cell.
	ErrIllegalMove = errors.New("illegal move")
	// ErrOutOfBounds is returned for coordinates outside the grid.
	ErrOutOfBounds = errors.New("coordinate out of bounds")
)

var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// Board is an 8x8 position. It is a plain value: assigning or passing a
// Board copies it, and Apply returns a new Board instead of modifying
// the receiver.
type Board struct {
	cells [Size][Size]Side
}

// NewBoard returns the standard starting position: white on d4 and e5,
// black on e4 and d5.
func NewBoard() Board {
	var b Board
	b.cells[3][3] = White
	b.cells[4][4] = White
	b.cells[3][4] = Black
	b.cells[4][3] = Black
	return b
}

// EmptyBoard returns a board with no discs on it.
func EmptyBoard() Board {
	return Board{}
}

// BoardFromGrid builds a board from a row-major grid of cell values.
// Values other than Black and White are treated as empty.
func BoardFromGrid(grid [][]int) Board {
	var b Board
	for r := 0; r < Size && r < len(grid); r++ {
		for c := 0; c < Size && c < len(grid[r]); c++ {
			switch Side(grid[r][c]) {
			case Black, White:
				b.cells[r][c] = Side(grid[r][c])
			}
		}
	}
	return b
}

// ParseBoard reads eight lines of eight characters, 'X' or 'B' for black,
// 'O' or 'W' for white and anything else for empty. Blank lines and
// surrounding whitespace are ignored.
func ParseBoard(s string) (Board, error) {
	var b Board
	row := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if row >= Size {
			return Board{}, fmt.Errorf("parse board: more than %d rows", Size)
		}
		if len(line) != Size {
			return Board{}, fmt.Errorf("parse board: row %d has %d cells", row, len(line))
		}
		for col := 0; col < Size; col++ {
			switch line[col] {
			case 'X', 'x', 'B', 'b':
				b.cells[row][col] = Black
			case 'O', 'o', 'W', 'w':
				b.cells[row][col] = White
			}
		}
		row++
	}
	if row != Size {
		return Board{}, fmt.Errorf("parse board: got %d rows, want %d", row, Size)
	}
	return b, nil
}

// CellOwner returns the side occupying a cell, or None when it is empty
// or outside the grid.
func (b Board) CellOwner(row, col int) Side {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return None
	}
	return b.cells[row][col]
}

// Set places a disc without applying any flips. It is meant for setting
// up positions, not for playing moves.
func (b *Board) Set(c Coordinate, s Side) {
	if c.Valid() {
		b.cells[c.Row][c.Col] = s
	}
}

// Count returns the number of discs owned by side.
func (b Board) Count(side Side) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == side {
				n++
			}
		}
	}
	return n
}

// Discs returns the total number of discs on the board.
func (b Board) Discs() int {
	return b.Count(Black) + b.Count(White)
}

// Full reports whether every cell is occupied.
func (b Board) Full() bool {
	return b.Count(None) == 0
}

// IsFrontier reports whether the cell holds a disc with at least one
// empty neighbour.
func (b Board) IsFrontier(row, col int) bool {
	if b.CellOwner(row, col) == None {
		return false
	}
	for _, d := range directions {
		r, c := row+d[0], col+d[1]
		if r < 0 || r >= Size || c < 0 || c >= Size {
			continue
		}
		if b.cells[r][c] == None {
			return true
		}
	}
	return false
}

// Flips returns the discs that placing side at c would turn over.
// The result is empty for occupied cells and illegal placements.
func (b Board) Flips(c Coordinate, side Side) []Coordinate {
	if !c.Valid() || b.cells[c.Row][c.Col] != None || side == None {
		return nil
	}
	opp := side.Opponent()
	var flips []Coordinate
	for _, d := range directions {
		r, col := c.Row+d[0], c.Col+d[1]
		n := 0
		for r >= 0 && r < Size && col >= 0 && col < Size && b.cells[r][col] == opp {
			r += d[0]
			col += d[1]
			n++
		}
		if n == 0 || r < 0 || r >= Size || col < 0 || col >= Size || b.cells[r][col] != side {
			continue
		}
		for i := 1; i <= n; i++ {
			flips = append(flips, Coordinate{Row: c.Row + i*d[0], Col: c.Col + i*d[1]})
		}
	}
	return flips
}

// IsLegal reports whether side may place a disc at c.
func (b Board) IsLegal(c Coordinate, side Side) bool {
	if !c.Valid() || b.cells[c.Row][c.Col] != None || side == None {
		return false
	}
	opp := side.Opponent()
	for _, d := range directions {
		r, col := c.Row+d[0], c.Col+d[1]
		n := 0
		for r >= 0 && r < Size && col >= 0 && col < Size && b.cells[r][col] == opp {
			r += d[0]
			col += d[1]
			n++
		}
		if n > 0 && r >= 0 && r < Size && col >= 0 && col < Size && b.cells[r][col] == side {
			return true
		}
	}
	return false
}

// Apply returns the position after side plays at c.
func (b Board) Apply(c Coordinate, side Side) (Board, error) {
	if !c.Valid() {
		return b, fmt.Errorf("apply %s: %w", c, ErrOutOfBounds)
	}
	flips := b.Flips(c, side)
	if len(flips) == 0 {
		return b, fmt.Errorf("apply %s for %s: %w", c, side, ErrIllegalMove)
	}
	next := b
	next.cells[c.Row][c.Col] = side
	for _, f := range flips {
		next.cells[f.Row][f.Col] = side
	}
	return next, nil
}

// MustApply is Apply for callers that have already checked legality.
// It panics if the move is not legal.
func (b Board) MustApply(c Coordinate, side Side) Board {
	next, err := b.Apply(c, side)
	if err != nil {
		panic(err)
	}
	return next
}

// HasAnyLegalMove reports whether side has at least one legal placement.
func (b Board) HasAnyLegalMove(side Side) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.IsLegal(Coordinate{Row: r, Col: c}, side) {
				return true
			}
		}
	}
	return false
}

// GameOver reports whether neither side can move.
func (b Board) GameOver() bool {
	return !b.HasAnyLegalMove(Black) && !b.HasAnyLegalMove(White)
}

// Winner returns the side with more discs, or None on a draw.
func (b Board) Winner() Side {
	black, white := b.Count(Black), b.Count(White)
	switch {
	case black > white:
		return Black
	case white > black:
		return White
	}
	return None
}

// Grid returns a row-major copy of the cells as ints.
func (b Board) Grid() [][]int {
	grid := make([][]int, Size)
	for r := range grid {
		grid[r] = make([]int, Size)
		for c := range grid[r] {
			grid[r][c] = int(b.cells[r][c])
		}
	}
	return grid
}

// String renders the board with X for black, O for white and . for empty.
func (b Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b.cells[r][c] {
			case Black:
				sb.WriteByte('X')
			case White:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
