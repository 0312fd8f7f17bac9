package call

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/domain"
)

// End hangs up whatever call uid is part of, ringing or active.
// Both members are notified, including the one who hung up. Ending
// while idle is a no-op; hangup must always succeed.
func (e *Engine) End(uid domain.UserID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := e.parts[uid]
	if cp == nil {
		return
	}
	sess := e.calls[cp.call]
	if sess == nil {
		e.setState(uid, domain.StateIdle, "")
		return
	}
	caller, callee := sess.caller, sess.callee
	e.dropSession(sess)
	e.notify.CallEnded(caller, sess.id)
	e.notify.CallEnded(callee, sess.id)
	log.Info().Str("module", "call").Str("call", string(sess.id)).Str("by", string(uid)).Msg("ended")
}

// Disconnected clears uid's call state after its transport dropped.
// The surviving peer is reset to idle and told the call is over, so a
// later initiate toward the vanished user reads offline, not busy.
func (e *Engine) Disconnected(uid domain.UserID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := e.parts[uid]
	if cp == nil {
		return
	}
	sess := e.calls[cp.call]
	if sess == nil {
		e.setState(uid, domain.StateIdle, "")
		return
	}
	peer := sess.other(uid)
	e.dropSession(sess)
	e.notify.CallEnded(peer, sess.id)
	log.Info().Str("module", "call").Str("call", string(sess.id)).Str("gone", string(uid)).Msg("ended by disconnect")
}

// expire fires when a call rang for too long without an answer.
func (e *Engine) expire(id domain.CallID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess := e.calls[id]
	if sess == nil || sess.accepted {
		return
	}
	caller, callee := sess.caller, sess.callee
	e.dropSession(sess)
	e.notify.CallEnded(caller, id)
	e.notify.CallEnded(callee, id)
	log.Info().Str("module", "call").Str("call", string(id)).Msg("ring timeout")
}
