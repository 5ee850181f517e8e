package gtp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"othello-local/engine/agent"
	"othello-local/types"
)

// ErrUnknownCommand is returned for commands the server does not implement.
var ErrUnknownCommand = errors.New("unknown command")

// Version is reported by the version command.
const Version = "1.0"

type handler func(s *Server, args []string) (string, error)

var handlers map[string]handler

func init() {
	handlers = map[string]handler{
		"protocol_version": func(*Server, []string) (string, error) { return "2", nil },
		"name":             func(*Server, []string) (string, error) { return "othello-local", nil },
		"version":          func(*Server, []string) (string, error) { return Version, nil },
		"known_command":    (*Server).knownCommand,
		"list_commands":    (*Server).listCommands,
		"boardsize":        (*Server).boardsize,
		"clear_board":      (*Server).clearBoard,
		"play":             (*Server).play,
		"genmove":          (*Server).genmove,
		"time_left":        (*Server).timeLeft,
		"legal_moves":      (*Server).legalMoves,
		"list_stones":      (*Server).listStones,
		"showboard":        (*Server).showboard,
		"final_score":      (*Server).finalScore,
		"quit":             func(*Server, []string) (string, error) { return "", nil },
	}
}

// Server answers protocol commands on behalf of the built-in engine. The
// agent for a color is created the first time that color is asked to
// generate a move and is kept in step with later play commands.
type Server struct {
	depth  int
	log    zerolog.Logger
	board  types.Board
	played map[types.Side]int
	agents map[types.Side]*agent.Agent
	// msLeft per side, agent.NoTimeLimit until time_left is sent.
	msLeft map[types.Side]int
}

// NewServer returns a server searching depth plies per move.
func NewServer(depth int) *Server {
	s := &Server{
		depth: depth,
		log:   log.With().Str("component", "gtp-server").Logger(),
	}
	s.reset()
	return s
}

// WithLogger replaces the server's logger.
func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.log = l
	return s
}

func (s *Server) reset() {
	s.board = types.NewBoard()
	s.played = map[types.Side]int{}
	s.agents = map[types.Side]*agent.Agent{}
	s.msLeft = map[types.Side]int{types.Black: agent.NoTimeLimit, types.White: agent.NoTimeLimit}
}

// Serve reads commands from r and writes responses to w until quit or
// end of input.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	out := bufio.NewWriter(w)
	for scanner.Scan() {
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}
		id, name, args := parseCommand(line)
		s.log.Trace().Str("command", line).Msg("received")

		resp, err := s.Exec(name, args)
		if err != nil {
			fmt.Fprintf(out, "?%s %s\n\n", id, err)
		} else if resp == "" {
			fmt.Fprintf(out, "=%s\n\n", id)
		} else {
			fmt.Fprintf(out, "=%s %s\n\n", id, resp)
		}
		if err := out.Flush(); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if name == "quit" {
			return nil
		}
	}
	return scanner.Err()
}

// Exec runs a single command and returns its response text.
func (s *Server) Exec(name string, args []string) (string, error) {
	h, ok := handlers[name]
	if !ok {
		return "", ErrUnknownCommand
	}
	return h(s, args)
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		return line[:i]
	}
	return line
}

// parseCommand splits "[id] name args..." and returns id as a string so
// it can be echoed back verbatim.
func parseCommand(line string) (id, name string, args []string) {
	fields := strings.Fields(line)
	if _, err := strconv.Atoi(fields[0]); err == nil {
		id = fields[0]
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return id, "", nil
	}
	return id, strings.ToLower(fields[0]), fields[1:]
}

func (s *Server) knownCommand(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("syntax error")
	}
	_, ok := handlers[strings.ToLower(args[0])]
	return strconv.FormatBool(ok), nil
}

func (s *Server) listCommands([]string) (string, error) {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

func (s *Server) boardsize(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("syntax error")
	}
	if n, err := strconv.Atoi(args[0]); err != nil || n != types.Size {
		return "", errors.New("unacceptable size")
	}
	return "", nil
}

func (s *Server) clearBoard([]string) (string, error) {
	s.reset()
	return "", nil
}

func (s *Server) play(args []string) (string, error) {
	if len(args) != 2 {
		return "", errors.New("syntax error")
	}
	side, err := gtpToSide(args[0])
	if err != nil {
		return "", errors.New("syntax error")
	}
	x, y, err := vertexToPos(args[1])
	if err != nil {
		return "", errors.New("syntax error")
	}

	if x < 0 {
		if s.board.HasAnyLegalMove(side) {
			return "", errors.New("illegal move")
		}
		return "", nil
	}

	coord := types.Coordinate{Row: y, Col: x}
	before := s.board
	next, err := s.board.Apply(coord, side)
	if err != nil {
		return "", errors.New("illegal move")
	}
	s.board = next
	s.played[side]++

	// The opponent's agent follows along; an agent whose own color was
	// played by someone else no longer matches and is rebuilt on demand.
	delete(s.agents, side)
	if a, ok := s.agents[side.Opponent()]; ok {
		if a.Board() != before || a.ApplyOpponentMove(types.Move{Coordinate: coord, Side: side}) != nil {
			delete(s.agents, side.Opponent())
		}
	}
	return "", nil
}

func (s *Server) genmove(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("syntax error")
	}
	side, err := gtpToSide(args[0])
	if err != nil {
		return "", errors.New("syntax error")
	}

	a := s.agentFor(side)
	before := s.board
	m, err := a.ChooseMove(nil, s.msLeft[side])
	if err != nil {
		return "", err
	}
	if m == nil {
		s.log.Debug().Str("side", side.String()).Msg("genmove-pass")
		return "pass", nil
	}
	s.board = a.Board()
	s.played[side]++
	if opp, ok := s.agents[side.Opponent()]; ok {
		if opp.Board() != before || opp.ApplyOpponentMove(*m) != nil {
			delete(s.agents, side.Opponent())
		}
	}
	return posToVertex(m.Col, m.Row), nil
}

// agentFor returns the agent playing side, creating or rebuilding it when
// its board no longer matches the game.
func (s *Server) agentFor(side types.Side) *agent.Agent {
	if a, ok := s.agents[side]; ok && a.Board() == s.board {
		return a
	}
	a := agent.New(side,
		agent.WithDepth(s.depth),
		agent.WithPosition(s.board, s.played[side]),
		agent.WithLogger(s.log),
	)
	s.agents[side] = a
	return a
}

func (s *Server) timeLeft(args []string) (string, error) {
	if len(args) != 3 {
		return "", errors.New("syntax error")
	}
	side, err := gtpToSide(args[0])
	if err != nil {
		return "", errors.New("syntax error")
	}
	secs, err := strconv.Atoi(args[1])
	if err != nil || secs < 0 {
		return "", errors.New("syntax error")
	}
	s.msLeft[side] = secs * 1000
	return "", nil
}

func (s *Server) legalMoves(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("syntax error")
	}
	side, err := gtpToSide(args[0])
	if err != nil {
		return "", errors.New("syntax error")
	}
	var vs []string
	for _, c := range s.board.LegalMoves(side) {
		vs = append(vs, posToVertex(c.Col, c.Row))
	}
	return strings.Join(vs, " "), nil
}

func (s *Server) listStones(args []string) (string, error) {
	if len(args) != 1 {
		return "", errors.New("syntax error")
	}
	side, err := gtpToSide(args[0])
	if err != nil {
		return "", errors.New("syntax error")
	}
	var vs []string
	for r := 0; r < types.Size; r++ {
		for c := 0; c < types.Size; c++ {
			if s.board.CellOwner(r, c) == side {
				vs = append(vs, posToVertex(c, r))
			}
		}
	}
	return strings.Join(vs, " "), nil
}

func (s *Server) showboard([]string) (string, error) {
	var b strings.Builder
	b.WriteString("\n  a b c d e f g h\n")
	for r, line := range strings.Split(strings.TrimRight(s.board.String(), "\n"), "\n") {
		fmt.Fprintf(&b, "%d ", r+1)
		for i, ch := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(ch)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "black %d white %d", s.board.Count(types.Black), s.board.Count(types.White))
	return b.String(), nil
}

// finalScore reports the disc margin in SGF result form, "B+16" or "0".
func (s *Server) finalScore([]string) (string, error) {
	black, white := s.board.Count(types.Black), s.board.Count(types.White)
	switch {
	case black > white:
		return fmt.Sprintf("B+%d", black-white), nil
	case white > black:
		return fmt.Sprintf("W+%d", white-black), nil
	}
	return "0", nil
}
