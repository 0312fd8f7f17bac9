package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/domain"
)

// Registry tracks which users currently have a live connection.
// At most one connection per user; a later connect for the same user
// evicts the earlier mapping without tearing the old socket down.
type Registry struct {
	mu    sync.RWMutex
	users map[domain.UserID]core.ConnID
	conns map[core.ConnID]domain.UserID
}

func NewRegistry() *Registry {
	return &Registry{
		users: make(map[domain.UserID]core.ConnID),
		conns: make(map[core.ConnID]domain.UserID),
	}
}

// Register maps uid to cid and returns the evicted connection, if any.
// The evicted connection stays open but becomes invisible to presence.
func (r *Registry) Register(uid domain.UserID, cid core.ConnID) (core.ConnID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, evicted := r.users[uid]
	if evicted {
		delete(r.conns, old)
	}
	r.users[uid] = cid
	r.conns[cid] = uid
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(cid)).Msg("registered")
	return old, evicted
}

// Unregister removes the mapping owned by cid. A disconnect of an
// evicted connection must not clear the newer mapping, so removal is
// keyed by connection, not by user.
func (r *Registry) Unregister(cid core.ConnID) (domain.UserID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uid, ok := r.conns[cid]
	if !ok {
		return "", false
	}
	delete(r.conns, cid)
	if r.users[uid] == cid {
		delete(r.users, uid)
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("conn", string(cid)).Msg("unregistered")
	return uid, true
}

// Resolve is advisory: the connection may be gone by the time the
// caller sends to it. A failed send is treated as offline.
func (r *Registry) Resolve(uid domain.UserID) (core.ConnID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cid, ok := r.users[uid]
	return cid, ok
}

func (r *Registry) Online(uid domain.UserID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.users[uid]
	return ok
}

// Snapshot returns the roster, sorted so broadcasts are deterministic.
func (r *Registry) Snapshot() []domain.UserID {
	r.mu.RLock()
	ids := lo.Keys(r.users)
	r.mu.RUnlock()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
