// Package call mediates two-party call negotiation through the relay.
// The negotiation payloads themselves are opaque; the engine only
// tracks who is ringing whom and routes events to the right peer.
package call

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/app"
	"github.com/dkeye/Ring/internal/domain"
)

var (
	ErrSelfCall      = errors.New("cannot call yourself")
	ErrAlreadyInCall = errors.New("caller is not idle")
	ErrNoPendingCall = errors.New("no matching pending call")
	ErrNotInCall     = errors.New("not in a call")
	ErrRateLimited   = errors.New("too many call attempts")
)

// Invitation is what the callee sees when a call comes in.
type Invitation struct {
	CallID   domain.CallID
	CallerID domain.UserID
	TargetID domain.UserID
	Type     domain.CallType
	Caller   domain.Profile
}

// Answer is what the caller sees when the callee picks up.
type Answer struct {
	CallID   domain.CallID
	TargetID domain.UserID
	Target   domain.Profile
}

// Notifier delivers engine outcomes to users. Delivery is best-effort;
// methods that return bool report whether the user was reachable, and
// the engine treats an unreachable user as offline.
type Notifier interface {
	IncomingCall(to domain.UserID, inv Invitation) bool
	CallAccepted(to domain.UserID, ans Answer) bool
	CallRejected(to domain.UserID, target domain.UserID)
	CallEnded(to domain.UserID, id domain.CallID)
	UserBusy(to domain.UserID, target domain.UserID)
	UserOffline(to domain.UserID, target domain.UserID)
	Signal(to domain.UserID, payload json.RawMessage)
}

// Resolver answers whether a user currently has a live connection.
// Results are advisory; a send can still fail right after.
type Resolver interface {
	Online(domain.UserID) bool
}

type participant struct {
	state domain.CallState
	call  domain.CallID
}

// Engine is the call-signaling state machine. All transitions happen
// under one mutex so cross-connection updates stay mirror-consistent.
type Engine struct {
	mu       sync.Mutex
	notify   Notifier
	presence Resolver
	limiter  *app.DialRateLimiter

	ringTimeout time.Duration

	parts map[domain.UserID]*participant
	calls map[domain.CallID]*session
}

type Option func(*Engine)

// WithRingTimeout bounds how long a call may ring unanswered.
// Zero disables the timer.
func WithRingTimeout(d time.Duration) Option {
	return func(e *Engine) { e.ringTimeout = d }
}

func WithRateLimiter(rl *app.DialRateLimiter) Option {
	return func(e *Engine) { e.limiter = rl }
}

func NewEngine(presence Resolver, notify Notifier, opts ...Option) *Engine {
	e := &Engine{
		notify:      notify,
		presence:    presence,
		ringTimeout: 30 * time.Second,
		parts:       make(map[domain.UserID]*participant),
		calls:       make(map[domain.CallID]*session),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State reports uid's current signaling state.
func (e *Engine) State(uid domain.UserID) domain.CallState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.parts[uid]; ok {
		return p.state
	}
	return domain.StateIdle
}

// Initiate starts a call from caller to target. Offline and busy
// targets are reported back to the caller through the Notifier and do
// not mutate any state. A crossed initiate (caller already has a
// pending invitation from that exact target) is resolved as an accept.
func (e *Engine) Initiate(caller domain.UserID, meta domain.Profile, target domain.UserID, kind domain.CallType) error {
	if err := kind.Validate(); err != nil {
		return err
	}
	if err := target.Validate(); err != nil {
		return err
	}
	if target == caller {
		return ErrSelfCall
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	cp := e.parts[caller]
	if cp != nil && cp.state == domain.StateRingingIn {
		if sess := e.calls[cp.call]; sess != nil && sess.caller == target {
			log.Info().Str("module", "call").Str("call", string(sess.id)).Msg("crossed initiate resolved as accept")
			e.acceptLocked(caller, meta, sess)
			return nil
		}
	}
	if cp != nil && cp.state != domain.StateIdle {
		return ErrAlreadyInCall
	}

	if !e.limiter.Allow(caller) {
		return ErrRateLimited
	}

	if !e.presence.Online(target) {
		e.notify.UserOffline(caller, target)
		return nil
	}
	if tp := e.parts[target]; tp != nil && tp.state != domain.StateIdle {
		e.notify.UserBusy(caller, target)
		return nil
	}

	sess := &session{
		id:         domain.CallID(uuid.NewString()),
		caller:     caller,
		callee:     target,
		kind:       kind,
		callerMeta: meta,
	}

	e.setState(caller, domain.StateRingingOut, sess.id)
	e.setState(target, domain.StateRingingIn, sess.id)
	e.calls[sess.id] = sess

	if !e.notify.IncomingCall(target, Invitation{
		CallID:   sess.id,
		CallerID: caller,
		TargetID: target,
		Type:     kind,
		Caller:   meta,
	}) {
		// Target vanished between the presence check and delivery.
		e.dropSession(sess)
		e.notify.UserOffline(caller, target)
		return nil
	}

	if e.ringTimeout > 0 {
		id := sess.id
		sess.timer = time.AfterFunc(e.ringTimeout, func() { e.expire(id) })
	}
	log.Info().Str("module", "call").Str("call", string(sess.id)).
		Str("caller", string(caller)).Str("target", string(target)).Str("type", string(kind)).Msg("ringing")
	return nil
}

// Accept completes the handshake. The pending invitation must match
// the claimed caller, otherwise nothing changes.
func (e *Engine) Accept(callee domain.UserID, meta domain.Profile, caller domain.UserID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.pendingFor(callee, caller)
	if err != nil {
		return err
	}
	e.acceptLocked(callee, meta, sess)
	return nil
}

// Reject declines a pending invitation. The caller gets exactly one
// rejected event and both sides return to idle.
func (e *Engine) Reject(callee domain.UserID, caller domain.UserID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	sess, err := e.pendingFor(callee, caller)
	if err != nil {
		return err
	}
	e.dropSession(sess)
	e.notify.CallRejected(sess.caller, callee)
	log.Info().Str("module", "call").Str("call", string(sess.id)).Msg("rejected")
	return nil
}

func (e *Engine) pendingFor(callee, caller domain.UserID) (*session, error) {
	cp := e.parts[callee]
	if cp == nil || cp.state != domain.StateRingingIn {
		return nil, ErrNoPendingCall
	}
	sess := e.calls[cp.call]
	if sess == nil || sess.caller != caller {
		return nil, ErrNoPendingCall
	}
	return sess, nil
}

func (e *Engine) acceptLocked(callee domain.UserID, meta domain.Profile, sess *session) {
	sess.stopTimer()
	sess.accepted = true
	e.setState(sess.caller, domain.StateInCall, sess.id)
	e.setState(sess.callee, domain.StateInCall, sess.id)

	if !e.notify.CallAccepted(sess.caller, Answer{
		CallID:   sess.id,
		TargetID: callee,
		Target:   meta,
	}) {
		// Caller hung around long enough to ring but is gone now.
		e.dropSession(sess)
		e.notify.CallEnded(callee, sess.id)
		return
	}
	log.Info().Str("module", "call").Str("call", string(sess.id)).Msg("accepted")
}

func (e *Engine) setState(uid domain.UserID, s domain.CallState, id domain.CallID) {
	if s == domain.StateIdle {
		delete(e.parts, uid)
		return
	}
	e.parts[uid] = &participant{state: s, call: id}
}

// dropSession resets both members to idle and forgets the session.
// It emits nothing; callers decide who to notify.
func (e *Engine) dropSession(sess *session) {
	sess.stopTimer()
	e.setState(sess.caller, domain.StateIdle, "")
	e.setState(sess.callee, domain.StateIdle, "")
	delete(e.calls, sess.id)
}
