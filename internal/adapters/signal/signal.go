package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/app"
	"github.com/dkeye/Ring/internal/app/call"
	"github.com/dkeye/Ring/internal/cache"
	"github.com/dkeye/Ring/internal/config"
	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/domain"
	"github.com/dkeye/Ring/internal/metrics"
	"github.com/dkeye/Ring/internal/store"
)

var ErrBackpressure = errors.New("backpressure")

// Hub owns every live websocket connection and is the delivery side of
// presence, rooms and call signaling.
type Hub struct {
	cfg      *config.Config
	registry *app.Registry
	rooms    *app.Rooms
	engine   *call.Engine
	messages store.MessageStore
	mirror   *cache.RosterMirror

	mu    sync.RWMutex
	conns map[core.ConnID]*wsConn
}

func NewHub(cfg *config.Config, reg *app.Registry, rooms *app.Rooms, messages store.MessageStore, mirror *cache.RosterMirror) *Hub {
	return &Hub{
		cfg:      cfg,
		registry: reg,
		rooms:    rooms,
		messages: messages,
		mirror:   mirror,
		conns:    make(map[core.ConnID]*wsConn),
	}
}

// BindEngine closes the loop: the engine notifies users through the
// hub, the hub feeds events into the engine.
func (h *Hub) BindEngine(e *call.Engine) { h.engine = e }

var _ core.SignalConnection = (*wsConn)(nil)

type wsConn struct {
	id      core.ConnID
	user    domain.UserID
	profile domain.Profile

	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades an authenticated request to a websocket and
// plugs it into presence. Identity comes from the verified token set
// by the auth middleware; display metadata stays client-supplied.
func (h *Hub) HandleSignal(ctx context.Context, c *gin.Context) {
	uid := domain.UserID(c.GetString("user_id"))
	if err := uid.Validate(); err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(h.cfg.ReadLimit)

	conn := &wsConn{
		id:      core.ConnID(uuid.NewString()),
		user:    uid,
		profile: domain.NewProfile(c.Query("displayName"), c.Query("avatarUrl")),
		conn:    ws,
		send:    make(chan core.Frame, 32),
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("conn", string(conn.id)).Msg("new WS connection")

	h.mu.Lock()
	h.conns[conn.id] = conn
	h.mu.Unlock()
	if old, evicted := h.registry.Register(uid, conn.id); evicted {
		// Last connection wins; the replaced socket gets cut loose.
		h.mu.RLock()
		prev := h.conns[old]
		h.mu.RUnlock()
		if prev != nil {
			prev.Close()
		}
	}
	metrics.ActiveConnections.Inc()

	h.broadcastRoster()

	go h.writePump(ctx, conn)
	go h.readPump(ctx, conn)
}

// dropConn tears a connection out of every subsystem. The call engine
// is only told when this was the user's current connection, so an
// evicted stale socket cannot kill a call running on the fresh one.
func (h *Hub) dropConn(conn *wsConn) {
	h.mu.Lock()
	if _, ok := h.conns[conn.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn.id)
	h.mu.Unlock()

	conn.Close()
	metrics.ActiveConnections.Dec()
	h.rooms.DropConn(conn.id)

	uid, ok := h.registry.Unregister(conn.id)
	if ok && !h.registry.Online(uid) {
		h.engine.Disconnected(uid)
		h.broadcastRoster()
	}
}

func (h *Hub) connOf(uid domain.UserID) (*wsConn, bool) {
	cid, ok := h.registry.Resolve(uid)
	if !ok {
		return nil, false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	conn, ok := h.conns[cid]
	return conn, ok
}
