package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/app/call"
	"github.com/dkeye/Ring/internal/domain"
	"github.com/dkeye/Ring/internal/metrics"
)

func (h *Hub) handleCallInitiate(c *wsConn, data []byte) {
	type initiatePayload struct {
		Type         string          `json:"type"`
		TargetUserID domain.UserID   `json:"targetUserId"`
		CallType     domain.CallType `json:"callType"`
		// CallerID is accepted for wire compatibility but ignored:
		// identity comes from the authenticated connection.
		CallerID domain.UserID `json:"callerId"`
	}
	var p initiatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad initiate payload")
		h.sendError(c, "bad_payload")
		return
	}

	err := h.engine.Initiate(c.user, c.profile, p.TargetUserID, p.CallType)
	switch {
	case err == nil:
		metrics.CallsTotal.WithLabelValues("initiated").Inc()
	case errors.Is(err, call.ErrSelfCall):
		h.sendError(c, "cannot call yourself")
	case errors.Is(err, call.ErrAlreadyInCall):
		h.sendError(c, "already in a call")
	case errors.Is(err, call.ErrRateLimited):
		h.sendError(c, "too many call attempts")
	default:
		h.sendError(c, "bad_payload")
	}
}

func (h *Hub) handleCallAccept(c *wsConn, data []byte) {
	type acceptPayload struct {
		Type     string        `json:"type"`
		CallerID domain.UserID `json:"callerId"`
	}
	var p acceptPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad accept payload")
		h.sendError(c, "bad_payload")
		return
	}
	if err := h.engine.Accept(c.user, c.profile, p.CallerID); err != nil {
		h.sendError(c, "no pending call")
	}
}

func (h *Hub) handleCallReject(c *wsConn, data []byte) {
	type rejectPayload struct {
		Type     string        `json:"type"`
		CallerID domain.UserID `json:"callerId"`
	}
	var p rejectPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad reject payload")
		h.sendError(c, "bad_payload")
		return
	}
	if err := h.engine.Reject(c.user, p.CallerID); err != nil {
		h.sendError(c, "no pending call")
	}
}

func (h *Hub) handleRelay(c *wsConn, data []byte) {
	type relayPayload struct {
		Type   string          `json:"type"`
		Signal json.RawMessage `json:"signal"`
	}
	var p relayPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		return
	}
	if err := h.engine.Relay(c.user, p.Signal); err != nil {
		// Stale signal after hangup is normal, drop it quietly.
		log.Debug().Str("module", "signal").Str("user", string(c.user)).Msg("relay outside call dropped")
	}
}
