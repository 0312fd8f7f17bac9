// Package cache mirrors the online roster into Redis so the CRUD tier
// can read presence without a hop through the signaling server.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/domain"
)

const (
	rosterKey = "presence:online"
	rosterTTL = 5 * time.Minute
)

// RosterMirror is fire-and-forget: a Redis outage costs the mirror,
// never a signaling event. A nil mirror is a valid no-op.
type RosterMirror struct {
	rdb *redis.Client
}

func NewRosterMirror(addr string) *RosterMirror {
	if addr == "" {
		return nil
	}
	return &RosterMirror{rdb: redis.NewClient(&redis.Options{Addr: addr})}
}

func (m *RosterMirror) Publish(ctx context.Context, ids []domain.UserID) {
	if m == nil {
		return
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		log.Error().Err(err).Str("module", "cache.roster").Msg("marshal roster")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := m.rdb.Set(ctx, rosterKey, payload, rosterTTL).Err(); err != nil {
		log.Warn().Err(err).Str("module", "cache.roster").Msg("mirror write failed")
	}
}

func (m *RosterMirror) Close() error {
	if m == nil {
		return nil
	}
	return m.rdb.Close()
}
