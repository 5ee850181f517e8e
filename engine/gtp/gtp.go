package gtp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"othello-local/engine"
	"othello-local/types"
)

var (
	ErrGameOver    = errors.New("game is over")
	ErrNotYourTurn = errors.New("not your turn")
)

// GTPEngine implements the GameEngine interface against an external
// engine process speaking the text protocol.
type GTPEngine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	config      engine.GameConfig
	board       types.Board
	boardState  *types.BoardState
	myTurn      bool
	gameOver    bool
	playerColor int // Human's color (1=black, 2=white)
	log         zerolog.Logger

	moveCallback func(x, y, color int, boardState *types.BoardState)
	endCallback  func(outcome string)

	mu sync.Mutex
	wg sync.WaitGroup
}

var _ engine.GameEngine = (*GTPEngine)(nil)

// NewGTPEngine creates a new GTP engine with the given configuration.
// cfg.EnginePath is split on spaces into the command and its arguments.
func NewGTPEngine(cfg engine.GameConfig) *GTPEngine {
	return &GTPEngine{
		config:      cfg,
		playerColor: cfg.PlayerColor,
		board:       types.NewBoard(),
		boardState:  types.NewBoardState(),
		log:         log.With().Str("component", "gtp-client").Logger(),
	}
}

// NewGTPEngineFromPipes creates an engine that talks over an existing
// connection instead of starting a process.
func NewGTPEngineFromPipes(cfg engine.GameConfig, r io.Reader, w io.WriteCloser) *GTPEngine {
	g := NewGTPEngine(cfg)
	g.stdin = w
	g.stdout = bufio.NewReader(r)
	return g
}

// Connect starts the engine subprocess and initializes the game.
func (g *GTPEngine) Connect() error {
	if g.stdin == nil {
		if err := g.start(); err != nil {
			return err
		}
	}

	if _, err := g.sendCommand(fmt.Sprintf("boardsize %d", types.Size)); err != nil {
		return fmt.Errorf("failed to set board size: %w", err)
	}

	if _, err := g.sendCommand("clear_board"); err != nil {
		return fmt.Errorf("failed to clear board: %w", err)
	}

	// Black always plays first
	if g.playerColor == 1 {
		g.myTurn = true
	} else {
		g.myTurn = false
		g.startEngineMove()
	}

	return nil
}

func (g *GTPEngine) start() error {
	fields := strings.Fields(g.config.EnginePath)
	if len(fields) == 0 {
		return errors.New("no engine path configured")
	}
	g.cmd = exec.Command(fields[0], fields[1:]...)

	var err error
	g.stdin, err = g.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	stdout, err := g.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdout pipe: %w", err)
	}
	g.stdout = bufio.NewReader(stdout)

	// Discard stderr to prevent blocking
	g.cmd.Stderr = nil

	if err := g.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	return nil
}

// sendCommand sends a command and returns the response.
func (g *GTPEngine) sendCommand(cmd string) (string, error) {
	g.log.Trace().Str("command", cmd).Msg("send")

	_, err := fmt.Fprintf(g.stdin, "%s\n", cmd)
	if err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}

	// Read response
	var response strings.Builder
	for {
		line, err := g.stdout.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")

		// Empty line signals end of response
		if line == "" {
			break
		}

		if response.Len() > 0 {
			response.WriteString("\n")
		}
		response.WriteString(line)
	}

	result := response.String()
	g.log.Trace().Str("response", result).Msg("recv")

	// Check for error response (starts with '?')
	if strings.HasPrefix(result, "?") {
		return "", fmt.Errorf("GTP error: %s", strings.TrimSpace(strings.TrimPrefix(result, "?")))
	}

	// Success response starts with '='
	return strings.TrimPrefix(strings.TrimPrefix(result, "="), " "), nil
}

// GetBoardState returns the current board state.
func (g *GTPEngine) GetBoardState() *types.BoardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.boardState
}

// PlayMove plays a move at the given coordinates.
func (g *GTPEngine) PlayMove(x, y int) error {
	g.mu.Lock()

	if g.gameOver {
		g.mu.Unlock()
		return ErrGameOver
	}

	if !g.myTurn {
		g.mu.Unlock()
		return ErrNotYourTurn
	}

	human := types.Side(g.playerColor)
	if !g.board.IsLegal(types.Coordinate{Row: y, Col: x}, human) {
		g.mu.Unlock()
		return fmt.Errorf("play %s: %w", posToVertex(x, y), types.ErrIllegalMove)
	}

	_, err := g.sendCommand(fmt.Sprintf("play %s %s", colorToGTP(g.playerColor), posToVertex(x, y)))
	if err != nil {
		g.mu.Unlock()
		return fmt.Errorf("illegal move: %w", err)
	}

	g.updateBoardFromEngine(types.BoardPos{X: x, Y: y}, human.Opponent())
	g.myTurn = false
	ended := g.checkEnd()
	boardStateCopy := g.boardState
	outcome := g.boardState.Outcome
	g.mu.Unlock()

	// Notify callback (outside lock to prevent deadlock)
	if g.moveCallback != nil {
		g.moveCallback(x, y, g.playerColor, boardStateCopy)
	}
	if ended {
		if g.endCallback != nil {
			g.endCallback(outcome)
		}
		return nil
	}

	g.startEngineMove()
	return nil
}

// Pass passes the current turn. Only allowed without a legal move.
func (g *GTPEngine) Pass() error {
	g.mu.Lock()

	if g.gameOver {
		g.mu.Unlock()
		return ErrGameOver
	}

	if !g.myTurn {
		g.mu.Unlock()
		return ErrNotYourTurn
	}

	if err := g.passLocked(); err != nil {
		g.mu.Unlock()
		return err
	}
	boardStateCopy := g.boardState
	g.mu.Unlock()

	if g.moveCallback != nil {
		g.moveCallback(-1, -1, g.playerColor, boardStateCopy)
	}

	g.startEngineMove()
	return nil
}

// passLocked sends the human's pass. Must be called while holding the lock.
func (g *GTPEngine) passLocked() error {
	human := types.Side(g.playerColor)
	if g.board.HasAnyLegalMove(human) {
		return fmt.Errorf("pass: %w", types.ErrIllegalMove)
	}
	if _, err := g.sendCommand(fmt.Sprintf("play %s pass", colorToGTP(g.playerColor))); err != nil {
		return fmt.Errorf("failed to pass: %w", err)
	}
	g.boardState = types.SnapshotOf(g.board, human.Opponent(), g.boardState.MoveNumber+1, types.PassPos)
	g.myTurn = false
	return nil
}

func (g *GTPEngine) startEngineMove() {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		g.triggerEngineMove()
	}()
}

// triggerEngineMove asks the engine to generate and play a move, and
// passes for the human when they have no reply.
func (g *GTPEngine) triggerEngineMove() {
	engineColor := oppositeColor(g.playerColor)
	for {
		g.mu.Lock()

		if g.gameOver {
			g.mu.Unlock()
			return
		}

		response, err := g.sendCommand(fmt.Sprintf("genmove %s", colorToGTP(engineColor)))
		if err != nil {
			g.log.Error().Err(err).Msg("genmove-failed")
			g.mu.Unlock()
			return
		}

		x, y, err := vertexToPos(response)
		if err != nil {
			g.log.Error().Err(err).Str("response", response).Msg("bad-engine-move")
			g.mu.Unlock()
			return
		}

		g.updateBoardFromEngine(types.BoardPos{X: x, Y: y}, types.Side(g.playerColor))
		g.myTurn = true
		ended := g.checkEnd()
		boardStateCopy := g.boardState
		outcome := g.boardState.Outcome

		var passCopy *types.BoardState
		if !ended && !g.board.HasAnyLegalMove(types.Side(g.playerColor)) {
			if err := g.passLocked(); err != nil {
				g.log.Error().Err(err).Msg("auto-pass-failed")
			} else {
				passCopy = g.boardState
			}
		}
		g.mu.Unlock()

		// Notify callback (outside lock)
		if g.moveCallback != nil {
			g.moveCallback(x, y, engineColor, boardStateCopy)
		}
		if ended {
			if g.endCallback != nil {
				g.endCallback(outcome)
			}
			return
		}
		if passCopy == nil {
			return
		}
		if g.moveCallback != nil {
			g.moveCallback(-1, -1, g.playerColor, passCopy)
		}
	}
}

// updateBoardFromEngine refreshes the position from the engine's
// list_stones output and rebuilds the display snapshot.
// Must be called while holding the lock.
func (g *GTPEngine) updateBoardFromEngine(last types.BoardPos, toMove types.Side) {
	blackStones, _ := g.sendCommand("list_stones black")
	whiteStones, _ := g.sendCommand("list_stones white")

	var board types.Board
	for _, vertex := range strings.Fields(blackStones) {
		x, y, err := vertexToPos(vertex)
		if err == nil && x >= 0 && y >= 0 {
			board.Set(types.Coordinate{Row: y, Col: x}, types.Black)
		}
	}
	for _, vertex := range strings.Fields(whiteStones) {
		x, y, err := vertexToPos(vertex)
		if err == nil && x >= 0 && y >= 0 {
			board.Set(types.Coordinate{Row: y, Col: x}, types.White)
		}
	}
	g.board = board
	g.boardState = types.SnapshotOf(board, toMove, g.boardState.MoveNumber+1, last)
}

// checkEnd finishes the game once neither side can move.
// Must be called while holding the lock.
func (g *GTPEngine) checkEnd() bool {
	if !g.board.GameOver() {
		return false
	}
	g.gameOver = true
	st := *g.boardState
	st.Phase = "finished"
	st.LegalMoves = nil
	st.Outcome = types.Outcome(g.board)
	if score, err := g.sendCommand("final_score"); err == nil {
		g.log.Info().Str("final_score", score).Str("outcome", st.Outcome).Msg("game-over")
	}
	g.boardState = &st
	return true
}

// IsMyTurn returns true if it's the human player's turn.
func (g *GTPEngine) IsMyTurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.myTurn && !g.gameOver
}

// GetPlayerColor returns the human player's color (1=black, 2=white).
func (g *GTPEngine) GetPlayerColor() int {
	return g.playerColor
}

// OnMove registers a callback for when a move is played.
func (g *GTPEngine) OnMove(callback func(x, y, color int, boardState *types.BoardState)) {
	g.moveCallback = callback
}

// OnGameEnd registers a callback for when the game ends.
func (g *GTPEngine) OnGameEnd(callback func(outcome string)) {
	g.endCallback = callback
}

// Wait blocks until a pending engine move has been received.
func (g *GTPEngine) Wait() {
	g.wg.Wait()
}

// Close shuts down the engine subprocess.
func (g *GTPEngine) Close() {
	g.wg.Wait()
	if g.stdin != nil {
		g.sendCommand("quit")
		g.stdin.Close()
	}
	if g.cmd != nil && g.cmd.Process != nil {
		g.cmd.Wait()
	}
}
