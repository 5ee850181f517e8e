package sgf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"othello-local/types"
)

func readRecord(t *testing.T, rec *GameRecord) string {
	t.Helper()
	content, err := os.ReadFile(rec.FilePath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(content)
}

func TestSgfCoord(t *testing.T) {
	tests := []struct {
		x, y int
		want string
	}{
		{0, 0, "aa"},
		{3, 2, "dc"},
		{7, 7, "hh"},
		{2, 3, "cd"},
	}
	for _, tt := range tests {
		got := sgfCoord(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("sgfCoord(%d, %d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseResult(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Already SGF format
		{"W+12", "W+12"},
		{"B+R", "B+R"},
		{"?", "?"},
		{"0", "0"},

		// Game outcomes
		{"Black wins 40-24", "B+16"},
		{"White wins 33-31", "W+2"},
		{"White wins 64-0", "W+64"},
		{"Draw 32-32", "0"},
		{"White wins by resign", "W+R"},
		{"Black wins by resignation", "B+R"},
		{"White wins by time", "W+T"},
		{"Black wins by forfeit", "B+F"},

		// Edge cases
		{"Black wins", "B+?"},
		{"Black wins 20-30", "B+?"},
		{"something else", "?"},
		{"", "?"},
	}
	for _, tt := range tests {
		got := parseResult(tt.input)
		if got != tt.want {
			t.Errorf("parseResult(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewGameRecord(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "othello-local depth 5")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	s := readRecord(t, rec)

	for _, prop := range []string{"GM[2]", "FF[4]", "SZ[8]", "PB[Player]", "PW[othello-local depth 5]", "RE[?]"} {
		if !strings.Contains(s, prop) {
			t.Errorf("SGF missing property %s in:\n%s", prop, s)
		}
	}
	if !strings.HasPrefix(s, "(;") {
		t.Error("SGF should start with '(;'")
	}
	if !strings.HasSuffix(strings.TrimSpace(s), ")") {
		t.Error("SGF should end with ')'")
	}
}

func TestNewGameRecordWhitePlayer(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 2, "othello-local depth 3")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	s := readRecord(t, rec)
	if !strings.Contains(s, "PB[othello-local depth 3]") {
		t.Error("When human plays white, black should be engine")
	}
	if !strings.Contains(s, "PW[Player]") {
		t.Error("When human plays white, white should be Player")
	}
}

func TestAddMove(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(3, 2, 1)   // B[dc]
	rec.AddMove(2, 2, 2)   // W[cc]
	rec.AddMove(-1, -1, 1) // B[] pass

	s := readRecord(t, rec)
	if !strings.Contains(s, ";B[dc];W[cc];B[]") {
		t.Errorf("SGF moves out of order or missing in:\n%s", s)
	}
}

func TestSetResult(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.SetResult("White wins 40-24")
	if s := readRecord(t, rec); !strings.Contains(s, "RE[W+16]") {
		t.Errorf("Expected RE[W+16] in:\n%s", s)
	}
}

func TestAddSetupPosition(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	board := types.EmptyBoard()
	board.Set(types.Coordinate{Row: 2, Col: 3}, types.Black) // "dc"
	board.Set(types.Coordinate{Row: 4, Col: 5}, types.White) // "fe"
	board.Set(types.Coordinate{Row: 4, Col: 6}, types.White) // "ge"

	if err := rec.AddSetupPosition(board); err != nil {
		t.Fatalf("AddSetupPosition: %v", err)
	}

	s := readRecord(t, rec)
	if !strings.Contains(s, ";AB[dc]AW[fe][ge]") {
		t.Errorf("Missing setup node in:\n%s", s)
	}
}

func TestFilenameFormat(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	base := filepath.Base(rec.FilePath)
	if !strings.HasSuffix(base, "_othello.sgf") {
		t.Errorf("Filename should end with _othello.sgf, got %s", base)
	}
	if !strings.HasPrefix(base, "20") {
		t.Errorf("Filename should start with year, got %s", base)
	}
}

func TestCloseIdempotent(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}

	rec.Close()
	rec.Close() // Should not panic
	if err := rec.AddMove(3, 2, 1); err == nil {
		t.Error("AddMove after Close should fail")
	}
}

func TestCrashSafety(t *testing.T) {
	dir := t.TempDir()
	rec, err := NewGameRecord(dir, 1, "engine")
	if err != nil {
		t.Fatalf("NewGameRecord: %v", err)
	}
	defer rec.Close()

	rec.AddMove(3, 2, 1)
	rec.AddMove(2, 2, 2)

	// The file is valid SGF after every flush, even without Close().
	s := readRecord(t, rec)
	if !strings.HasPrefix(s, "(;") || !strings.HasSuffix(strings.TrimSpace(s), ")") {
		t.Errorf("File should be complete SGF without Close():\n%s", s)
	}
	if !strings.Contains(s, ";W[cc]") {
		t.Error("File should contain moves even without Close()")
	}
}
