// Package types contains the board model and shared data structures for
// othello-local.
package types

import (
	"encoding/json"
	"fmt"
)

// BoardState is the display snapshot handed to the UI and to network
// clients. Board is indexed as Board[y][x] where 0=empty, 1=black, 2=white.
type BoardState struct {
	MoveNumber   int        `json:"move_number"`
	PlayerToMove int        `json:"player_to_move"` // 1=black, 2=white
	Phase        string     `json:"phase"`          // "playing", "finished"
	Board        [][]int    `json:"board"`
	BlackCount   int        `json:"black_count"`
	WhiteCount   int        `json:"white_count"`
	LegalMoves   []BoardPos `json:"legal_moves"`
	Outcome      string     `json:"outcome"`
	LastMove     BoardPos   `json:"last_move"`
}

// Finished returns true if the game is over.
func (b *BoardState) Finished() bool {
	return b.Phase == "finished"
}

// Height returns the board height.
func (b *BoardState) Height() int {
	return len(b.Board)
}

// Width returns the board width.
func (b *BoardState) Width() int {
	if b.Height() == 0 {
		return 0
	}
	return len(b.Board[0])
}

// IsLegalHint reports whether (x, y) is among the legal moves for the
// player to move.
func (b *BoardState) IsLegalHint(x, y int) bool {
	for _, p := range b.LegalMoves {
		if p.X == x && p.Y == y {
			return true
		}
	}
	return false
}

// Position rebuilds the board model from the snapshot.
func (b *BoardState) Position() Board {
	return BoardFromGrid(b.Board)
}

// BoardPos represents a position on the board, X is the column and Y the row.
type BoardPos struct {
	X int
	Y int
}

// PassPos marks a pass in LastMove.
var PassPos = BoardPos{X: -1, Y: -1}

// Coordinate converts to the row/column form used by Board.
func (p BoardPos) Coordinate() Coordinate {
	return Coordinate{Row: p.Y, Col: p.X}
}

// MarshalJSON encodes BoardPos as a JSON array [x, y].
func (p BoardPos) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON allows BoardPos to be unmarshaled from a JSON array [x, y].
func (p *BoardPos) UnmarshalJSON(data []byte) error {
	var v []float64
	err := json.Unmarshal(data, &v)
	if err != nil {
		return err
	}
	if len(v) != 2 {
		return fmt.Errorf("board position needs 2 values, got %d", len(v))
	}
	p.X = int(v[0])
	p.Y = int(v[1])
	return nil
}

// NewBoardState creates a snapshot of the standard starting position with
// black to move.
func NewBoardState() *BoardState {
	return SnapshotOf(NewBoard(), Black, 0, PassPos)
}

// SnapshotOf builds a BoardState for board with toMove to play next.
func SnapshotOf(board Board, toMove Side, moveNumber int, last BoardPos) *BoardState {
	st := &BoardState{
		MoveNumber:   moveNumber,
		PlayerToMove: int(toMove),
		Phase:        "playing",
		Board:        board.Grid(),
		BlackCount:   board.Count(Black),
		WhiteCount:   board.Count(White),
		LastMove:     last,
	}
	for _, c := range board.LegalMoves(toMove) {
		st.LegalMoves = append(st.LegalMoves, BoardPos{X: c.Col, Y: c.Row})
	}
	return st
}

// Outcome describes a finished position, e.g. "Black wins 40-24".
func Outcome(board Board) string {
	black, white := board.Count(Black), board.Count(White)
	switch board.Winner() {
	case Black:
		return fmt.Sprintf("Black wins %d-%d", black, white)
	case White:
		return fmt.Sprintf("White wins %d-%d", white, black)
	}
	return fmt.Sprintf("Draw %d-%d", black, white)
}
