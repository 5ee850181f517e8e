package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"othello-local/engine/agent"
	"othello-local/storage"
	"othello-local/types"
)

var errNoGame = errors.New("no game in progress")

const (
	wsIdlePingInterval = 30 * time.Second
	sendBuffer         = 32
)

// clientMessage is what the browser or bot sends: new_game, move or pass.
type clientMessage struct {
	Type string `json:"type"`
	Side string `json:"side,omitempty"` // new_game only; default black
	Row  int    `json:"row"`
	Col  int    `json:"col"`
}

// serverMessage is every message the server sends. Unused fields are omitted.
type serverMessage struct {
	Type    string             `json:"type"`
	Session string             `json:"session,omitempty"`
	Game    string             `json:"game,omitempty"`
	Side    string             `json:"side,omitempty"`
	Move    *types.Coordinate  `json:"move,omitempty"`
	Black   *int               `json:"black,omitempty"` // nil on messages without counts
	White   *int               `json:"white,omitempty"`
	Board   [][]int            `json:"board,omitempty"`
	Legal   []types.Coordinate `json:"legal,omitempty"`
	Result  string             `json:"result,omitempty"`
	Message string             `json:"message,omitempty"`
}

// session is one websocket connection. All game state is touched only by
// the connection's read loop.
type session struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	server *Server
	log    zerolog.Logger

	// current game
	gameID  string
	active  bool
	human   types.Side
	board   types.Board
	bot     *agent.Agent
	started time.Time
	moves   []storage.MoveEntry
	turnAt  time.Time
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("upgrade-failed")
		return
	}

	sess := &session{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		server: s,
	}
	sess.log = s.log.With().Str("session", sess.id).Logger()
	s.register(sess)
	sess.log.Info().Str("remote", r.RemoteAddr).Msg("session-open")

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer conn.Close()
		if err := writeWithHeartbeat(conn, sess.send); err != nil {
			sess.log.Debug().Err(err).Msg("write-failed")
		}
	}()

	sess.emit(serverMessage{Type: "welcome", Session: sess.id})
	sess.readLoop()

	close(sess.send)
	<-done
	s.unregister(sess)
	sess.log.Info().Msg("session-closed")
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(serverMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func (c *session) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read-failed")
			}
			if c.active {
				c.log.Info().Str("game", c.gameID).Msg("game-abandoned")
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.fail("invalid message")
			continue
		}
		c.handle(msg)
	}
}

func (c *session) handle(msg clientMessage) {
	switch msg.Type {
	case "new_game":
		side := types.Black
		if msg.Side != "" {
			parsed, err := types.ParseSide(msg.Side)
			if err != nil {
				c.fail(err.Error())
				return
			}
			side = parsed
		}
		c.newGame(side)
	case "move":
		c.humanMove(types.Coordinate{Row: msg.Row, Col: msg.Col})
	case "pass":
		c.humanPass()
	default:
		c.fail("unknown message type " + msg.Type)
	}
}

func (c *session) newGame(human types.Side) {
	c.gameID = uuid.NewString()
	c.active = true
	c.human = human
	c.board = types.NewBoard()
	c.moves = nil
	c.started = time.Now()
	c.bot = agent.New(human.Opponent(),
		agent.WithDepth(c.server.depth),
		agent.WithLogger(c.log.With().Str("game", c.gameID).Logger()))

	c.log.Info().Str("game", c.gameID).Str("human", human.String()).Int("depth", c.server.depth).Msg("game-start")
	c.emit(serverMessage{
		Type:  "game_start",
		Game:  c.gameID,
		Side:  human.String(),
		Black: discs(c.board, types.Black),
		White: discs(c.board, types.White),
		Board: c.board.Grid(),
	})

	if human == types.Black {
		c.promptHuman()
		return
	}
	c.engineTurn(nil)
}

func (c *session) humanMove(at types.Coordinate) {
	if !c.active {
		c.fail(errNoGame.Error())
		return
	}
	next, err := c.board.Apply(at, c.human)
	if err != nil {
		c.fail(err.Error())
		return
	}
	c.board = next
	c.record(storage.MoveEntry{Side: c.human, Row: at.Row, Col: at.Col})
	c.emitMove(c.human, at)

	mv := types.Move{Coordinate: at, Side: c.human}
	c.engineTurn(&mv)
}

func (c *session) humanPass() {
	if !c.active {
		c.fail(errNoGame.Error())
		return
	}
	if c.board.HasAnyLegalMove(c.human) {
		c.fail("cannot pass with a legal move available")
		return
	}
	c.record(storage.PassEntry(c.human))
	c.emit(serverMessage{Type: "pass", Side: c.human.String()})
	c.engineTurn(nil)
}

// engineTurn lets the engine reply to opp (nil after a human pass), passing
// for the human as long as they have no reply.
func (c *session) engineTurn(opp *types.Move) {
	bot := c.human.Opponent()
	for {
		if c.board.GameOver() {
			c.finish()
			return
		}

		mv, err := c.bot.ChooseMove(opp, agent.NoTimeLimit)
		if err != nil {
			c.log.Error().Err(err).Msg("engine-out-of-sync")
			c.fail("engine error")
			c.active = false
			return
		}
		if mv == nil {
			c.record(storage.PassEntry(bot))
			c.emit(serverMessage{Type: "pass", Side: bot.String()})
		} else {
			c.board = c.board.MustApply(mv.Coordinate, bot)
			c.record(storage.MoveEntry{Side: bot, Row: mv.Row, Col: mv.Col})
			c.emitMove(bot, mv.Coordinate)
		}

		if c.board.GameOver() {
			c.finish()
			return
		}
		if c.board.HasAnyLegalMove(c.human) {
			c.promptHuman()
			return
		}
		c.record(storage.PassEntry(c.human))
		c.emit(serverMessage{Type: "pass", Side: c.human.String()})
		opp = nil
	}
}

func (c *session) promptHuman() {
	c.turnAt = time.Now()
	c.emit(serverMessage{
		Type:  "turn",
		Side:  c.human.String(),
		Legal: c.board.LegalMoves(c.human),
	})
}

func (c *session) record(m storage.MoveEntry) {
	if m.Side == c.human && !m.IsPass() && !c.turnAt.IsZero() {
		m.DurationMS = time.Since(c.turnAt).Milliseconds()
	}
	c.moves = append(c.moves, m)
}

func (c *session) emitMove(side types.Side, at types.Coordinate) {
	c.emit(serverMessage{
		Type:  "move_made",
		Side:  side.String(),
		Move:  &at,
		Black: discs(c.board, types.Black),
		White: discs(c.board, types.White),
		Board: c.board.Grid(),
	})
}

// discs returns side's disc count for a message. Zero is kept on the wire.
func discs(b types.Board, side types.Side) *int {
	n := b.Count(side)
	return &n
}

func (c *session) finish() {
	c.active = false
	result := types.Outcome(c.board)
	c.log.Info().Str("game", c.gameID).Str("result", result).Int("moves", len(c.moves)).Msg("game-over")
	c.emit(serverMessage{
		Type:   "game_end",
		Game:   c.gameID,
		Result: result,
		Black:  discs(c.board, types.Black),
		White:  discs(c.board, types.White),
	})

	if c.server.archive == nil {
		return
	}
	g := storage.Game{
		ID:        c.gameID,
		StartedAt: c.started,
		EndedAt:   time.Now(),
		Moves:     c.moves,
	}
	engineName := fmt.Sprintf("othello-local depth %d", c.server.depth)
	if c.human == types.Black {
		g.Black, g.White = "ws:"+c.id, engineName
	} else {
		g.Black, g.White = engineName, "ws:"+c.id
	}
	g.SetFinal(c.board)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := c.server.archive.Save(ctx, g); err != nil {
		c.log.Error().Err(err).Msg("archive-failed")
	}
}

func (c *session) fail(message string) {
	c.emit(serverMessage{Type: "error", Message: message})
}

// emit queues a message; a full buffer means the client stopped reading.
func (c *session) emit(msg serverMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Str("type", msg.Type).Msg("marshal-failed")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn().Str("type", msg.Type).Msg("send-buffer-full")
		c.conn.Close()
	}
}
