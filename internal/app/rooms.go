package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/domain"
)

// Rooms holds dynamic broadcast-group membership per connection.
// Join and Leave are idempotent; membership dies with the connection.
// No authorization here, that happened upstream.
type Rooms struct {
	mu     sync.RWMutex
	byRoom map[domain.RoomLabel]map[core.ConnID]struct{}
	byConn map[core.ConnID]map[domain.RoomLabel]struct{}
}

func NewRooms() *Rooms {
	return &Rooms{
		byRoom: make(map[domain.RoomLabel]map[core.ConnID]struct{}),
		byConn: make(map[core.ConnID]map[domain.RoomLabel]struct{}),
	}
}

func (r *Rooms) Join(cid core.ConnID, room domain.RoomLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byRoom[room] == nil {
		r.byRoom[room] = make(map[core.ConnID]struct{})
	}
	if r.byConn[cid] == nil {
		r.byConn[cid] = make(map[domain.RoomLabel]struct{})
	}
	r.byRoom[room][cid] = struct{}{}
	r.byConn[cid][room] = struct{}{}
	log.Debug().Str("module", "app.rooms").Str("conn", string(cid)).Str("room", string(room)).Msg("joined")
}

func (r *Rooms) Leave(cid core.ConnID, room domain.RoomLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drop(cid, room)
}

// DropConn removes every membership cid holds.
func (r *Rooms) DropConn(cid core.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room := range r.byConn[cid] {
		r.drop(cid, room)
	}
}

func (r *Rooms) drop(cid core.ConnID, room domain.RoomLabel) {
	if members, ok := r.byRoom[room]; ok {
		delete(members, cid)
		if len(members) == 0 {
			delete(r.byRoom, room)
		}
	}
	if rooms, ok := r.byConn[cid]; ok {
		delete(rooms, room)
		if len(rooms) == 0 {
			delete(r.byConn, cid)
		}
	}
}

// Members snapshots the current occupants of room.
func (r *Rooms) Members(room domain.RoomLabel) []core.ConnID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ConnID, 0, len(r.byRoom[room]))
	for cid := range r.byRoom[room] {
		out = append(out, cid)
	}
	return out
}

func (r *Rooms) IsMember(cid core.ConnID, room domain.RoomLabel) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byConn[cid][room]
	return ok
}
