package signal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	router "github.com/dkeye/Ring/internal/adapters/http"
	"github.com/dkeye/Ring/internal/adapters/signal"
	"github.com/dkeye/Ring/internal/app"
	"github.com/dkeye/Ring/internal/app/call"
	"github.com/dkeye/Ring/internal/auth"
	"github.com/dkeye/Ring/internal/config"
	"github.com/dkeye/Ring/internal/domain"
	"github.com/dkeye/Ring/internal/store"
)

type recordingStore struct {
	mu    sync.Mutex
	saved []*store.Message
}

func (s *recordingStore) SaveMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, msg)
	return nil
}

func (s *recordingStore) Close(context.Context) error { return nil }

func (s *recordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type testServer struct {
	srv      *httptest.Server
	verifier *auth.Verifier
	registry *app.Registry
	messages *recordingStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{
		Mode:           "release",
		StaticPath:     t.TempDir(),
		ReadLimit:      65536,
		PingPeriod:     time.Second,
		Secret:         "test-secret",
		RingTimeout:    2 * time.Second,
		InternalSecret: "internal-secret",
	}

	registry := app.NewRegistry()
	rooms := app.NewRooms()
	messages := &recordingStore{}
	verifier := auth.NewVerifier(cfg.Secret)

	hub := signal.NewHub(cfg, registry, rooms, messages, nil)
	engine := call.NewEngine(registry, hub, call.WithRingTimeout(cfg.RingTimeout))
	hub.BindEngine(engine)

	ctx, cancel := context.WithCancel(context.Background())
	r := router.SetupRouter(ctx, cfg, hub, registry, verifier)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return &testServer{srv: srv, verifier: verifier, registry: registry, messages: messages}
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func (ts *testServer) dial(t *testing.T, uid domain.UserID, name string) *testClient {
	t.Helper()
	token, err := ts.verifier.Issue(uid, time.Hour)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") +
		"/api/ws/signal?token=" + token + "&displayName=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(v map[string]any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(v))
}

func (c *testClient) readNext() map[string]any {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var m map[string]any
	require.NoError(c.t, json.Unmarshal(data, &m))
	return m
}

// readUntil skips unrelated events (roster updates mostly) until one
// of the wanted type arrives.
func (c *testClient) readUntil(typ string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		m := c.readNext()
		if m["type"] == typ {
			return m
		}
	}
	c.t.Fatalf("no %q event before deadline", typ)
	return nil
}

func TestUnauthenticatedDialRejected(t *testing.T) {
	ts := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/api/ws/signal"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRosterBroadcastOnConnect(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.dial(t, "alice", "Alice")
	m := alice.readUntil("getOnlineUsers")
	assert.ElementsMatch(t, []any{"alice"}, m["userIds"])

	ts.dial(t, "bob", "Bob")
	m = alice.readUntil("getOnlineUsers")
	assert.ElementsMatch(t, []any{"alice", "bob"}, m["userIds"])
}

func TestCallFlowEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")
	bob := ts.dial(t, "bob", "Bob")

	alice.send(map[string]any{
		"type": "call:initiate", "targetUserId": "bob", "callType": "video",
	})

	inc := bob.readUntil("call:incoming")
	assert.Equal(t, "alice", inc["callerId"])
	assert.Equal(t, "bob", inc["targetUserId"])
	assert.Equal(t, "video", inc["callType"])
	assert.Equal(t, "Alice", inc["callerName"])
	assert.NotEmpty(t, inc["callId"])

	bob.send(map[string]any{"type": "call:accept", "callerId": "alice"})

	acc := alice.readUntil("call:accepted")
	assert.Equal(t, "bob", acc["targetUserId"])
	assert.Equal(t, "Bob", acc["targetName"])

	alice.send(map[string]any{
		"type": "webrtc:signal", "signal": map[string]any{"type": "offer"},
	})
	sig := bob.readUntil("webrtc:signal")
	assert.Equal(t, map[string]any{"type": "offer"}, sig["signal"])

	// The relay is scoped: the sender must not hear their own signal.
	alice.send(map[string]any{"type": "ping"})
	next := alice.readNext()
	assert.Equal(t, "pong", next["type"])

	bob.send(map[string]any{"type": "call:end"})
	assert.NotNil(t, alice.readUntil("call:ended"))
	assert.NotNil(t, bob.readUntil("call:ended"))
}

func TestInitiateToOfflineUser(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")

	alice.send(map[string]any{
		"type": "call:initiate", "targetUserId": "nobody", "callType": "audio",
	})
	m := alice.readUntil("call:user-offline")
	assert.Equal(t, "nobody", m["targetUserId"])
}

func TestDisconnectCancelsRinging(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")
	bob := ts.dial(t, "bob", "Bob")

	alice.send(map[string]any{
		"type": "call:initiate", "targetUserId": "bob", "callType": "audio",
	})
	bob.readUntil("call:incoming")

	require.NoError(t, alice.conn.Close())

	assert.NotNil(t, bob.readUntil("call:ended"))

	// The vanished caller now reads as offline, not busy.
	bob.send(map[string]any{
		"type": "call:initiate", "targetUserId": "alice", "callType": "audio",
	})
	assert.NotNil(t, bob.readUntil("call:user-offline"))
}

func TestInternalEmitToGroup(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")

	alice.send(map[string]any{"type": "joinGroups", "groupIds": []string{"g1"}})
	// Dispatch is sequential per connection; a pong means the join landed.
	alice.send(map[string]any{"type": "ping"})
	alice.readUntil("pong")

	body, _ := json.Marshal(map[string]any{
		"groupId": "g1",
		"event":   "newGroupMessage",
		"data":    map[string]any{"text": "hello"},
	})
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/internal/emit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", "internal-secret")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	m := alice.readUntil("newGroupMessage")
	assert.Equal(t, "hello", m["text"])
}

func TestInternalEmitWrongSecret(t *testing.T) {
	ts := newTestServer(t)
	body, _ := json.Marshal(map[string]any{"groupId": "g1", "event": "x"})
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/internal/emit", bytes.NewReader(body))
	req.Header.Set("X-Internal-Secret", "nope")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMessageFallbackPersistsAndDelivers(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")
	bob := ts.dial(t, "bob", "Bob")

	alice.send(map[string]any{
		"type": "message:send", "receiverId": "bob", "text": "hi there",
	})

	m := bob.readUntil("newMessage")
	msg, ok := m["message"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", msg["senderId"])
	assert.Equal(t, "hi there", msg["text"])

	assert.Eventually(t, func() bool { return ts.messages.count() == 1 }, time.Second, 10*time.Millisecond)
}

func TestOnlineEndpoint(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.dial(t, "alice", "Alice")
	alice.readUntil("getOnlineUsers")

	resp, err := http.Get(ts.srv.URL + "/api/online")
	require.NoError(t, err)
	defer resp.Body.Close()
	var out struct {
		UserIDs []string `json:"userIds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, []string{"alice"}, out.UserIDs)
}
