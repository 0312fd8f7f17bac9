package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/metrics"
)

const writeWait = 5 * time.Second

func (h *Hub) writePump(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(h.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (h *Hub) readPump(ctx context.Context, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump closing")
		h.dropConn(c)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(c.id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(c.id)).Msg("readPump read error")
				return
			}
			h.dispatch(c, data)
		}
	}
}

func (h *Hub) dispatch(c *wsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		return
	}
	metrics.EventsTotal.WithLabelValues(env.Type).Inc()

	switch env.Type {
	case evPing:
		h.sendJSON(c, pingAck{Type: evPong})
	case evJoinGroups:
		h.handleJoinGroups(c, data)
	case evLeaveGroup:
		h.handleLeaveGroup(c, data)
	case evCallInitiate:
		h.handleCallInitiate(c, data)
	case evCallAccept:
		h.handleCallAccept(c, data)
	case evCallReject:
		h.handleCallReject(c, data)
	case evCallEnd:
		h.engine.End(c.user)
		metrics.CallsTotal.WithLabelValues("ended").Inc()
	case evSignal:
		h.handleRelay(c, data)
	case evMessageSend:
		h.handleMessageSend(c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown signal")
	}
}

func (h *Hub) sendJSON(c *wsConn, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return false
	}
	return c.TrySend(b) == nil
}

func (h *Hub) sendError(c *wsConn, msg string) {
	h.sendJSON(c, errEvent{Type: evError, Error: msg})
}

// Broadcast fans v out to every live connection.
func (h *Hub) Broadcast(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns {
		_ = c.TrySend(core.Frame(b))
	}
}
