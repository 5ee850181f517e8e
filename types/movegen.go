package types

// LegalMoves returns every legal placement for side in row-major order,
// row 0 to 7 and within a row column 0 to 7. An empty result means the
// side must pass.
func (b Board) LegalMoves(side Side) []Coordinate {
	var moves []Coordinate
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			coord := Coordinate{Row: r, Col: c}
			if b.IsLegal(coord, side) {
				moves = append(moves, coord)
			}
		}
	}
	return moves
}

// Mobility returns the number of legal placements for side.
func (b Board) Mobility(side Side) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.IsLegal(Coordinate{Row: r, Col: c}, side) {
				n++
			}
		}
	}
	return n
}

// FrontierCount returns how many of side's discs touch an empty cell.
func (b Board) FrontierCount(side Side) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == side && b.IsFrontier(r, c) {
				n++
			}
		}
	}
	return n
}
