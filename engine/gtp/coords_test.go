package gtp

import (
	"testing"

	"othello-local/types"
)

func TestPosToVertex(t *testing.T) {
	tests := []struct {
		x, y int
		want string
	}{
		{0, 0, "a1"},
		{3, 2, "d3"},
		{7, 7, "h8"},
		{5, 4, "f5"},
		{-1, -1, "pass"},
	}
	for _, tt := range tests {
		if got := posToVertex(tt.x, tt.y); got != tt.want {
			t.Errorf("posToVertex(%d, %d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestVertexToPos(t *testing.T) {
	tests := []struct {
		in     string
		x, y   int
		hasErr bool
	}{
		{"a1", 0, 0, false},
		{"D3", 3, 2, false},
		{" h8 ", 7, 7, false},
		{"pass", -1, -1, false},
		{"PASS", -1, -1, false},
		{"i1", 0, 0, true},
		{"a9", 0, 0, true},
		{"a0", 0, 0, true},
		{"d", 0, 0, true},
		{"dd", 0, 0, true},
	}
	for _, tt := range tests {
		x, y, err := vertexToPos(tt.in)
		if (err != nil) != tt.hasErr {
			t.Errorf("vertexToPos(%q) err = %v, wantErr %v", tt.in, err, tt.hasErr)
			continue
		}
		if !tt.hasErr && (x != tt.x || y != tt.y) {
			t.Errorf("vertexToPos(%q) = (%d, %d), want (%d, %d)", tt.in, x, y, tt.x, tt.y)
		}
	}
}

func TestVertexMatchesCoordinateString(t *testing.T) {
	for r := 0; r < types.Size; r++ {
		for c := 0; c < types.Size; c++ {
			coord := types.Coordinate{Row: r, Col: c}
			if got := posToVertex(c, r); got != coord.String() {
				t.Fatalf("posToVertex(%d, %d) = %q, Coordinate.String() = %q", c, r, got, coord.String())
			}
		}
	}
}

func TestColors(t *testing.T) {
	if colorToGTP(1) != "black" || colorToGTP(2) != "white" {
		t.Error("colorToGTP mismatch")
	}
	if oppositeColor(1) != 2 || oppositeColor(2) != 1 {
		t.Error("oppositeColor mismatch")
	}
	if s, err := gtpToSide("B"); err != nil || s != types.Black {
		t.Errorf("gtpToSide(B) = %v, %v", s, err)
	}
	if _, err := gtpToSide("green"); err == nil {
		t.Error("gtpToSide(green) should fail")
	}
}
