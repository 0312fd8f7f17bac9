package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/domain"
	"github.com/dkeye/Ring/internal/metrics"
	"github.com/dkeye/Ring/internal/store"
)

const saveTimeout = 5 * time.Second

// handleMessageSend is the fallback socket-originated chat path: the
// message is persisted fire-and-forget and relayed to the receiver if
// online. The HTTP message API remains the primary path.
func (h *Hub) handleMessageSend(c *wsConn, data []byte) {
	type messagePayload struct {
		Type       string        `json:"type"`
		ReceiverID domain.UserID `json:"receiverId"`
		Text       string        `json:"text"`
		Image      string        `json:"image"`
	}
	var p messagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad message payload")
		h.sendError(c, "bad_payload")
		return
	}
	if err := p.ReceiverID.Validate(); err != nil || (p.Text == "" && p.Image == "") {
		h.sendError(c, "bad_payload")
		return
	}

	msg := &store.Message{
		SenderID:   string(c.user),
		ReceiverID: string(p.ReceiverID),
		Text:       p.Text,
		Image:      p.Image,
		CreatedAt:  time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := h.messages.SaveMessage(ctx, msg); err != nil {
			metrics.MessagesSaved.WithLabelValues("error").Inc()
			log.Error().Err(err).Str("module", "signal").Msg("save message")
			return
		}
		metrics.MessagesSaved.WithLabelValues("ok").Inc()
	}()

	h.toUser(p.ReceiverID, struct {
		Type    string         `json:"type"`
		Message *store.Message `json:"message"`
	}{Type: evNewMessage, Message: msg})
}
