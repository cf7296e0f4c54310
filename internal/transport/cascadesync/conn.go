package cascadesync

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"

	"github.com/infinitystorm/server/internal/pkg/logger"
	"github.com/infinitystorm/server/internal/sync"
)

// Timing constants for the socket adapter. They are used as-is; the
// SyncConfig timing fields do not override them.
const (
	DefaultAckTimeout        = 3 * time.Second
	DefaultHeartbeatInterval = 30 * time.Second
	DefaultHeartbeatMisses   = 2
)

// Connection adapts one authenticated WebSocket to the synchronizer: it
// owns every SyncSession opened on this socket and cleans them all up on
// disconnect, exactly as the spec's single-socket-per-client contract
// requires.
type Connection struct {
	conn     *websocket.Conn
	playerID uuid.UUID
	sync     *Handler
	log      *logger.Logger

	send chan Envelope
	done chan struct{}

	lastPong time.Time
}

func newConnection(c *websocket.Conn, playerID uuid.UUID, h *Handler, log *logger.Logger) *Connection {
	return &Connection{
		conn:     c,
		playerID: playerID,
		sync:     h,
		log:      log,
		send:     make(chan Envelope, 64),
		done:     make(chan struct{}),
		lastPong: time.Now(),
	}
}

// Serve runs the connection's read loop, write loop, and heartbeat loop
// until the socket closes. It blocks; call it from the Fiber websocket
// handler goroutine.
func (cn *Connection) Serve() {
	go cn.writeLoop()
	go cn.heartbeatLoop()
	cn.readLoop()

	close(cn.done)
	cn.sync.synchronizer.ClosePlayerSessions(cn.playerID)
	cn.log.Info().Str("player_id", cn.playerID.String()).Msg("cascade sync connection closed")
}

func (cn *Connection) readLoop() {
	for {
		_, raw, err := cn.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			cn.sendError("malformed envelope")
			continue
		}
		cn.sync.dispatch(cn, env)
	}
}

func (cn *Connection) writeLoop() {
	for {
		select {
		case <-cn.done:
			return
		case env, ok := <-cn.send:
			if !ok {
				return
			}
			raw, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := cn.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}

func (cn *Connection) heartbeatLoop() {
	ticker := time.NewTicker(DefaultHeartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-cn.done:
			return
		case <-ticker.C:
			if time.Since(cn.lastPong) > DefaultHeartbeatInterval*DefaultHeartbeatMisses {
				cn.log.Warn().Str("player_id", cn.playerID.String()).Msg("heartbeat timeout, disconnecting")
				cn.conn.Close()
				return
			}
			cn.enqueue(EventHeartbeatPing, struct{}{})
		}
	}
}

func (cn *Connection) onHeartbeatResponse() {
	cn.lastPong = time.Now()
}

func (cn *Connection) enqueue(t EventType, payload interface{}) {
	env, err := encode(t, payload)
	if err != nil {
		return
	}
	select {
	case cn.send <- env:
	case <-cn.done:
	}
}

func (cn *Connection) sendError(message string) {
	cn.enqueue(EventErrorEvent, map[string]string{"message": message})
}

// SendSessionView pushes the current serialized SyncSession view, the only
// shape this adapter ever exposes to clients.
func (cn *Connection) SendSessionView(sess *sync.Session) {
	cn.enqueue(EventSessionView, viewOf(sess))
}
