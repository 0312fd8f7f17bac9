package signal

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/domain"
)

func (h *Hub) handleJoinGroups(c *wsConn, data []byte) {
	type joinPayload struct {
		Type     string   `json:"type"`
		GroupIDs []string `json:"groupIds"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad joinGroups payload")
		h.sendError(c, "bad_payload")
		return
	}
	for _, id := range p.GroupIDs {
		if id == "" {
			continue
		}
		h.rooms.Join(c.id, domain.GroupRoom(id))
	}
	log.Info().Str("module", "signal").Str("conn", string(c.id)).Int("groups", len(p.GroupIDs)).Msg("joined groups")
}

func (h *Hub) handleLeaveGroup(c *wsConn, data []byte) {
	type leavePayload struct {
		Type    string `json:"type"`
		GroupID string `json:"groupId"`
	}
	var p leavePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad leaveGroup payload")
		h.sendError(c, "bad_payload")
		return
	}
	h.rooms.Leave(c.id, domain.GroupRoom(p.GroupID))
}

// EmitToGroup fans an arbitrary event out to every connection in the
// room, optionally skipping the sender. Used by the internal emit API
// on behalf of the CRUD tier.
func (h *Hub) EmitToGroup(room domain.RoomLabel, event string, data map[string]any, except core.ConnID) int {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["type"] = event

	b, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("emit marshal")
		return 0
	}

	sent := 0
	for _, cid := range h.rooms.Members(room) {
		if cid == except {
			continue
		}
		h.mu.RLock()
		conn, ok := h.conns[cid]
		h.mu.RUnlock()
		if !ok {
			continue
		}
		if conn.TrySend(core.Frame(b)) == nil {
			sent++
		}
	}
	return sent
}

// EmitToUser delivers an arbitrary event to a single online user.
func (h *Hub) EmitToUser(uid domain.UserID, event string, data map[string]any) bool {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["type"] = event
	return h.toUser(uid, payload)
}
