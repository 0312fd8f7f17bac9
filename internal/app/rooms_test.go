package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dkeye/Ring/internal/domain"
)

func TestJoinIsIdempotent(t *testing.T) {
	r := NewRooms()
	room := domain.GroupRoom("g1")

	r.Join("c1", room)
	r.Join("c1", room)
	r.Join("c1", room)

	assert.Len(t, r.Members(room), 1)

	r.Leave("c1", room)
	assert.Empty(t, r.Members(room))
	assert.False(t, r.IsMember("c1", room))
}

func TestLeaveAbsentIsNoop(t *testing.T) {
	r := NewRooms()
	r.Leave("c1", domain.GroupRoom("g1"))
	assert.Empty(t, r.Members(domain.GroupRoom("g1")))
}

func TestDropConnClearsAllMemberships(t *testing.T) {
	r := NewRooms()
	g1, g2 := domain.GroupRoom("g1"), domain.GroupRoom("g2")
	r.Join("c1", g1)
	r.Join("c1", g2)
	r.Join("c2", g1)

	r.DropConn("c1")

	assert.Len(t, r.Members(g1), 1)
	assert.Empty(t, r.Members(g2))
	assert.False(t, r.IsMember("c1", g1))
	assert.True(t, r.IsMember("c2", g1))
}
