package sgf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"othello-local/types"
)

// GameInfo holds metadata parsed from an SGF file header.
type GameInfo struct {
	FilePath    string
	FileName    string
	Game        int
	BoardSize   int
	PlayerBlack string
	PlayerWhite string
	Date        string
	Result      string
	MoveCount   int
}

// MoveEntry is one recorded move. X and Y are -1 for a pass.
type MoveEntry struct {
	Color types.Side
	X, Y  int
}

// IsPass reports whether the entry is a pass.
func (m MoveEntry) IsPass() bool {
	return m.X == -1 && m.Y == -1
}

// Coordinate converts the entry to a board coordinate.
func (m MoveEntry) Coordinate() types.Coordinate {
	return types.Coordinate{Row: m.Y, Col: m.X}
}

// Node renders the entry as an SGF move node, e.g. ";B[dc]".
func (m MoveEntry) Node() string {
	return moveNode(int(m.Color), m.X, m.Y)
}

// ParseHeader reads an SGF file and extracts metadata from the root node.
func ParseHeader(filePath string) (*GameInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	content := string(data)
	props := parseProperties(content)

	info := &GameInfo{
		FilePath:    filePath,
		FileName:    filepath.Base(filePath),
		Game:        intProp(props, "GM", 2),
		BoardSize:   intProp(props, "SZ", types.Size),
		PlayerBlack: props["PB"],
		PlayerWhite: props["PW"],
		Date:        props["DT"],
		Result:      props["RE"],
		MoveCount:   countMoves(content),
	}

	return info, nil
}

func intProp(props map[string]string, key string, def int) int {
	if v, ok := props[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// ReplayToEnd parses an SGF file and replays all moves to produce the
// final position. Records without AB/AW setup start from the standard
// position. Returns the board, the move count (passes included), and any
// error, including a move that is illegal in the replayed position.
func ReplayToEnd(filePath string) (types.Board, int, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return types.Board{}, 0, err
	}

	content := string(data)
	if info := parseProperties(content); intProp(info, "GM", 2) != 2 || intProp(info, "SZ", types.Size) != types.Size {
		return types.Board{}, 0, fmt.Errorf("%s: not an 8x8 Othello record", filepath.Base(filePath))
	}

	board := StartPosition(content)
	moves := parseEntries(content)
	for i, m := range moves {
		if m.IsPass() {
			continue
		}
		next, err := board.Apply(m.Coordinate(), m.Color)
		if err != nil {
			return board, i, fmt.Errorf("move %d: %w", i+1, err)
		}
		board = next
	}

	return board, len(moves), nil
}

// StartPosition returns the position a record starts from: its AB/AW
// setup if present, the standard position otherwise.
func StartPosition(content string) types.Board {
	blacks, whites := parseSetup(content)
	if len(blacks) == 0 && len(whites) == 0 {
		return types.NewBoard()
	}
	board := types.EmptyBoard()
	for _, c := range blacks {
		board.Set(c, types.Black)
	}
	for _, c := range whites {
		board.Set(c, types.White)
	}
	return board
}

// parseProperties extracts KEY[value] pairs from the root node of an SGF string.
func parseProperties(content string) map[string]string {
	props := make(map[string]string)

	// Find the root node: starts after "(;"
	start := strings.Index(content, "(;")
	if start == -1 {
		return props
	}
	start += 2 // skip "(;"

	// Root node ends at the next ";" or ")"
	end := len(content)
	for i := start; i < len(content); i++ {
		if content[i] == ';' || content[i] == ')' {
			end = i
			break
		}
	}

	extractProps(content[start:end], props)
	return props
}

// extractProps parses KEY[value] pairs from a node string into the map.
func extractProps(node string, props map[string]string) {
	i := 0
	for i < len(node) {
		// Skip whitespace
		for i < len(node) && (node[i] == ' ' || node[i] == '\n' || node[i] == '\r' || node[i] == '\t') {
			i++
		}
		if i >= len(node) {
			break
		}

		// Read property identifier (uppercase letters)
		keyStart := i
		for i < len(node) && node[i] >= 'A' && node[i] <= 'Z' {
			i++
		}
		if i == keyStart {
			i++
			continue
		}
		key := node[keyStart:i]

		// Read all property values (e.g., AB[aa][bb][cc])
		for i < len(node) && node[i] == '[' {
			i++ // skip '['
			valStart := i
			for i < len(node) && node[i] != ']' {
				if node[i] == '\\' && i+1 < len(node) {
					i++ // skip escaped char
				}
				i++
			}
			val := node[valStart:i]
			if i < len(node) {
				i++ // skip ']'
			}
			props[key] = val // last value wins for simple props
		}
	}
}

// countMoves counts the number of move nodes (;B[...] or ;W[...]) in the SGF.
func countMoves(content string) int {
	count := 0
	for i := 0; i+2 < len(content); i++ {
		if content[i] == ';' && (content[i+1] == 'B' || content[i+1] == 'W') && content[i+2] == '[' {
			count++
		}
	}
	return count
}

// parseNodes returns all node strings after the root node.
func parseNodes(content string) []string {
	var nodes []string

	start := strings.Index(content, "(;")
	if start == -1 {
		return nodes
	}
	i := skipNode(content, start+2)

	for i < len(content) {
		if content[i] == ';' {
			end := skipNode(content, i+1)
			nodes = append(nodes, content[i:end])
			i = end
		} else {
			i++
		}
	}

	return nodes
}

// skipNode returns the index of the ';' or ')' ending the node body that
// starts at i, skipping over bracketed values.
func skipNode(content string, i int) int {
	for i < len(content) && content[i] != ';' && content[i] != ')' {
		if content[i] == '[' {
			i++
			for i < len(content) && content[i] != ']' {
				if content[i] == '\\' && i+1 < len(content) {
					i++
				}
				i++
			}
		}
		i++
	}
	return i
}

// parseMoveNode extracts the move from a node like ";B[dc]".
// Pass moves (";B[]" or the FF[3] "tt") return X=-1, Y=-1.
func parseMoveNode(node string) (MoveEntry, bool) {
	node = strings.TrimSpace(node)
	if len(node) < 2 || node[0] != ';' {
		return MoveEntry{}, false
	}

	var color types.Side
	switch node[1] {
	case 'B':
		color = types.Black
	case 'W':
		color = types.White
	default:
		return MoveEntry{}, false
	}

	bracketStart := strings.Index(node, "[")
	bracketEnd := strings.Index(node, "]")
	if bracketStart != 2 || bracketEnd == -1 || bracketEnd <= bracketStart {
		return MoveEntry{}, false
	}

	coord := node[bracketStart+1 : bracketEnd]
	if coord == "" || coord == "tt" {
		return MoveEntry{Color: color, X: -1, Y: -1}, true
	}

	if len(coord) != 2 {
		return MoveEntry{}, false
	}

	x := int(coord[0] - 'a')
	y := int(coord[1] - 'a')
	if x < 0 || x >= types.Size || y < 0 || y >= types.Size {
		return MoveEntry{}, false
	}
	return MoveEntry{Color: color, X: x, Y: y}, true
}

func parseEntries(content string) []MoveEntry {
	var result []MoveEntry
	for _, node := range parseNodes(content) {
		if m, ok := parseMoveNode(node); ok {
			result = append(result, m)
		}
	}
	return result
}

// parseSetup collects AB[]/AW[] coordinates from anywhere in the record.
func parseSetup(content string) (blacks, whites []types.Coordinate) {
	i := strings.Index(content, "(;")
	if i == -1 {
		return nil, nil
	}

	for i+1 < len(content) {
		if content[i] != 'A' || (content[i+1] != 'B' && content[i+1] != 'W') {
			i++
			continue
		}
		isBlack := content[i+1] == 'B'
		i += 2

		for i < len(content) && content[i] == '[' {
			i++ // skip '['
			start := i
			for i < len(content) && content[i] != ']' {
				i++
			}
			coord := content[start:i]
			if i < len(content) {
				i++ // skip ']'
			}
			if len(coord) != 2 {
				continue
			}
			c := types.Coordinate{Row: int(coord[1] - 'a'), Col: int(coord[0] - 'a')}
			if !c.Valid() {
				continue
			}
			if isBlack {
				blacks = append(blacks, c)
			} else {
				whites = append(whites, c)
			}
		}
	}

	return blacks, whites
}

// ParseMovesAsEntries returns all moves of a record in order.
func ParseMovesAsEntries(filePath string) ([]MoveEntry, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return parseEntries(string(data)), nil
}

// LoadGameTree builds a GameTree holding the record's main line, with
// Current at the root.
func LoadGameTree(filePath string) (*GameTree, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	content := string(data)
	tree := NewGameTreeFrom(StartPosition(content))
	for i, m := range parseEntries(content) {
		if _, err := tree.AddMove(m); err != nil {
			return nil, fmt.Errorf("move %d: %w", i+1, err)
		}
	}
	tree.Current = tree.Root
	return tree, nil
}

// ListGames scans a directory for .sgf files and returns their parsed headers,
// sorted newest-first (by filename, which contains timestamps).
func ListGames(dir string) ([]GameInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	var games []GameInfo
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sgf") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := ParseHeader(path)
		if err != nil || info.Game != 2 {
			continue
		}
		games = append(games, *info)
	}

	return games, nil
}
