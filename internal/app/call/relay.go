package call

import (
	"encoding/json"

	"github.com/dkeye/Ring/internal/domain"
)

// Relay forwards an opaque negotiation payload to the other member of
// the sender's active call, and to no one else. The payload is never
// inspected.
func (e *Engine) Relay(from domain.UserID, payload json.RawMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := e.parts[from]
	if cp == nil || cp.state != domain.StateInCall {
		return ErrNotInCall
	}
	sess := e.calls[cp.call]
	if sess == nil {
		return ErrNotInCall
	}
	e.notify.Signal(sess.other(from), payload)
	return nil
}
