// Package sgf implements SGF FF[4] writing and reading for Othello game
// records (GM[2]).
package sgf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"othello-local/types"
)

// GameRecord tracks a game in progress and writes it as SGF.
type GameRecord struct {
	FilePath    string
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	moves       []string // ";B[dc]", ";W[]", ...
	setupBlack  []string // AB coords for games not starting from the standard position
	setupWhite  []string // AW coords
	file        *os.File
}

// NewGameRecord creates a new SGF file in dir and writes the initial header.
// playerColor is 1=black, 2=white (the human player's color).
func NewGameRecord(dir string, playerColor int, engineName string) (*GameRecord, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	now := time.Now()
	filename := fmt.Sprintf("%s_othello.sgf", now.Format("2006-01-02_150405"))
	path := filepath.Join(dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sgf file: %w", err)
	}

	human := "Player"
	var pb, pw string
	if playerColor == 1 {
		pb, pw = human, engineName
	} else {
		pb, pw = engineName, human
	}

	rec := &GameRecord{
		FilePath:    path,
		PlayerBlack: pb,
		PlayerWhite: pw,
		Date:        now.Format("2006-01-02"),
		Result:      "?",
		file:        f,
	}

	if err := rec.flush(); err != nil {
		f.Close()
		return nil, err
	}

	return rec, nil
}

// sgfCoord converts 0-indexed board coordinates to SGF letter pair.
// (0,0) -> "aa", (3,2) -> "dc", (7,7) -> "hh".
func sgfCoord(x, y int) string {
	return string(rune('a'+x)) + string(rune('a'+y))
}

// AddMove appends a move to the record. Pass is indicated by x==-1 && y==-1.
func (r *GameRecord) AddMove(x, y, color int) error {
	r.moves = append(r.moves, moveNode(color, x, y))
	return r.flush()
}

func moveNode(color, x, y int) string {
	colorChar := types.Side(color).Letter()
	if x == -1 && y == -1 {
		return fmt.Sprintf(";%s[]", colorChar)
	}
	return fmt.Sprintf(";%s[%s]", colorChar, sgfCoord(x, y))
}

// AddSetupPosition records the board as AB[]/AW[] setup properties, for
// games that do not start from the standard position.
func (r *GameRecord) AddSetupPosition(board types.Board) error {
	r.setupBlack = nil
	r.setupWhite = nil
	for y := 0; y < types.Size; y++ {
		for x := 0; x < types.Size; x++ {
			switch board.CellOwner(y, x) {
			case types.Black:
				r.setupBlack = append(r.setupBlack, sgfCoord(x, y))
			case types.White:
				r.setupWhite = append(r.setupWhite, sgfCoord(x, y))
			}
		}
	}
	return r.flush()
}

// SetResult parses a game outcome string and sets the SGF RE property.
// Accepts outcomes like "Black wins 40-24" or "Draw 32-32" as well as
// already-formatted SGF like "W+12", "B+R".
func (r *GameRecord) SetResult(outcome string) error {
	r.Result = parseResult(outcome)
	return r.flush()
}

// Close performs a final flush and closes the file handle.
func (r *GameRecord) Close() {
	if r.file == nil {
		return
	}
	r.flush()
	r.file.Close()
	r.file = nil
}

// flush rewrites the complete SGF file from scratch.
func (r *GameRecord) flush() error {
	if r.file == nil {
		return fmt.Errorf("file already closed")
	}

	var b strings.Builder

	// Root node
	b.WriteString("(;GM[2]FF[4]CA[UTF-8]")
	b.WriteString("AP[othello-local:1.0]")
	b.WriteString(fmt.Sprintf("SZ[%d]", types.Size))
	b.WriteString(fmt.Sprintf("PB[%s]", r.PlayerBlack))
	b.WriteString(fmt.Sprintf("PW[%s]", r.PlayerWhite))
	b.WriteString(fmt.Sprintf("DT[%s]", r.Date))
	b.WriteString(fmt.Sprintf("RE[%s]", r.Result))
	b.WriteString("\n")

	// Setup node
	if len(r.setupBlack) > 0 || len(r.setupWhite) > 0 {
		b.WriteString(";")
		if len(r.setupBlack) > 0 {
			b.WriteString("AB")
			for _, c := range r.setupBlack {
				b.WriteString(fmt.Sprintf("[%s]", c))
			}
		}
		if len(r.setupWhite) > 0 {
			b.WriteString("AW")
			for _, c := range r.setupWhite {
				b.WriteString(fmt.Sprintf("[%s]", c))
			}
		}
		b.WriteString("\n")
	}

	// Move nodes
	for _, m := range r.moves {
		b.WriteString(m)
	}

	b.WriteString(")\n")

	// Rewrite file from start
	if _, err := r.file.Seek(0, 0); err != nil {
		return err
	}
	if err := r.file.Truncate(0); err != nil {
		return err
	}
	if _, err := r.file.WriteString(b.String()); err != nil {
		return err
	}
	return r.file.Sync()
}

// parseResult converts various outcome formats to SGF RE[] value.
func parseResult(outcome string) string {
	o := strings.TrimSpace(outcome)

	// Already in SGF format
	if isValidSGFResult(o) {
		return o
	}

	low := strings.ToLower(o)

	// "Draw 32-32"
	if strings.HasPrefix(low, "draw") {
		return "0"
	}

	// "White wins 40-24" / "Black wins by resignation"
	var winner string
	switch {
	case strings.HasPrefix(low, "white wins"):
		winner = "W"
	case strings.HasPrefix(low, "black wins"):
		winner = "B"
	default:
		return "?"
	}

	rest := strings.TrimSpace(low[len("black wins"):])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "by"))

	if strings.HasPrefix(rest, "resign") {
		return winner + "+R"
	}
	if strings.HasPrefix(rest, "time") {
		return winner + "+T"
	}
	if strings.HasPrefix(rest, "forfeit") {
		return winner + "+F"
	}

	// Disc score "40-24": the margin becomes the SGF score.
	if fields := strings.Fields(rest); len(fields) > 0 {
		if parts := strings.SplitN(fields[0], "-", 2); len(parts) == 2 {
			a, errA := strconv.Atoi(parts[0])
			b, errB := strconv.Atoi(parts[1])
			if errA == nil && errB == nil && a >= b {
				return fmt.Sprintf("%s+%d", winner, a-b)
			}
		}
	}

	return winner + "+?"
}

// isValidSGFResult checks if a string is already a valid SGF result.
func isValidSGFResult(s string) bool {
	if s == "?" || s == "Void" || s == "0" {
		return true
	}
	if len(s) < 3 {
		return false
	}
	if (s[0] != 'B' && s[0] != 'W') || s[1] != '+' {
		return false
	}
	rest := s[2:]
	if rest == "R" || rest == "T" || rest == "F" || rest == "?" {
		return true
	}
	for _, ch := range rest {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return len(rest) > 0
}
