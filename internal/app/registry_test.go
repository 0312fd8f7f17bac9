package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Ring/internal/core"
	"github.com/dkeye/Ring/internal/domain"
)

func TestRegisterResolve(t *testing.T) {
	r := NewRegistry()

	_, evicted := r.Register("alice", "c1")
	assert.False(t, evicted)

	cid, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, core.ConnID("c1"), cid)
	assert.True(t, r.Online("alice"))
}

func TestUnregisterUnknownConn(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Unregister("ghost")
	assert.False(t, ok)
}

func TestLastConnectWins(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")

	old, evicted := r.Register("alice", "c2")
	require.True(t, evicted)
	assert.Equal(t, core.ConnID("c1"), old)

	cid, ok := r.Resolve("alice")
	require.True(t, ok)
	assert.Equal(t, core.ConnID("c2"), cid)
}

// The evicted connection's late disconnect must not clear the mapping
// owned by the newer connection.
func TestStaleDisconnectKeepsNewMapping(t *testing.T) {
	r := NewRegistry()
	r.Register("alice", "c1")
	r.Register("alice", "c2")

	_, ok := r.Unregister("c1")
	assert.False(t, ok)
	assert.True(t, r.Online("alice"))

	uid, ok := r.Unregister("c2")
	require.True(t, ok)
	assert.Equal(t, domain.UserID("alice"), uid)
	assert.False(t, r.Online("alice"))
}

func TestSnapshotSorted(t *testing.T) {
	r := NewRegistry()
	r.Register("carol", "c3")
	r.Register("alice", "c1")
	r.Register("bob", "c2")

	assert.Equal(t, []domain.UserID{"alice", "bob", "carol"}, r.Snapshot())

	r.Unregister("c2")
	assert.Equal(t, []domain.UserID{"alice", "carol"}, r.Snapshot())
}
