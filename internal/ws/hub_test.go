package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func newRelayServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()
	hub := NewHub(discardLogger(), nil, 16)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{roomId}/{username}", hub.ServeWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

func dialRoom(t *testing.T, srv *httptest.Server, roomID, username string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + roomID + "/" + username
	c, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(websocket.StatusNormalClosure, "") })
	return c
}

func readEvent(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, data, err := c.Read(ctx)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// readEventOfType skips over interleaved lifecycle notices until it finds
// the wanted type.
func readEventOfType(t *testing.T, c *websocket.Conn, typ string) map[string]any {
	t.Helper()
	for i := 0; i < 10; i++ {
		m := readEvent(t, c)
		if m["type"] == typ {
			return m
		}
	}
	t.Fatalf("never received event of type %q", typ)
	return nil
}

// expectSilence asserts no frame arrives within the grace window.
func expectSilence(t *testing.T, c *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_, _, err := c.Read(ctx)
	assert.Error(t, err, "expected no inbound frame")
}

func sendJSON(t *testing.T, c *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, c.Write(ctx, websocket.MessageText, b))
}

func TestJoinNoticeGoesToPeersOnly(t *testing.T) {
	srv, _ := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")

	// Alice, already present, hears bob join; bob hears nothing at join time.
	join := readEvent(t, a)
	assert.Equal(t, "join", join["type"])
	assert.Equal(t, "bob", join["username"])
	assert.NotZero(t, join["timestamp"])

	expectSilence(t, b)
}

func TestCodeUpdateReachesPeersNotSender(t *testing.T) {
	srv, _ := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join") // bob is fully registered once alice sees him

	payload := map[string]any{"type": "code-update", "data": map[string]any{"code": "x=1"}}
	sendJSON(t, a, payload)

	got := readEvent(t, b)
	assert.Equal(t, "code-update", got["type"])
	assert.Equal(t, map[string]any{"code": "x=1"}, got["data"])

	expectSilence(t, a)
}

func TestTypingEventsAreRewritten(t *testing.T) {
	srv, _ := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join")

	sendJSON(t, a, map[string]any{"type": "typing-start"})
	got := readEvent(t, b)
	assert.Equal(t, "participant-typing", got["type"])
	data := got["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, true, data["isTyping"])

	sendJSON(t, a, map[string]any{"type": "typing-stop"})
	got = readEvent(t, b)
	data = got["data"].(map[string]any)
	assert.Equal(t, false, data["isTyping"])
}

func TestLeaveNoticeOnDisconnect(t *testing.T) {
	srv, hub := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join")

	require.NoError(t, a.Close(websocket.StatusNormalClosure, "done"))

	leave := readEventOfType(t, b, "leave")
	assert.Equal(t, "alice", leave["username"])

	// Alice's registration is gone once the leave notice is out.
	require.Eventually(t, func() bool {
		return len(hub.reg.Snapshot("r1")) == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestEmptyRoomIsForgotten(t *testing.T) {
	srv, hub := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	require.Eventually(t, func() bool { return hub.reg.Rooms() == 1 }, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Close(websocket.StatusNormalClosure, "done"))
	require.Eventually(t, func() bool { return hub.reg.Rooms() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestRoomsDoNotLeakEvents(t *testing.T) {
	srv, _ := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join")
	c := dialRoom(t, srv, "r2", "carol")

	sendJSON(t, a, map[string]any{"type": "code-update", "data": map[string]any{"code": "y=2"}})

	assert.Equal(t, "code-update", readEvent(t, b)["type"])
	expectSilence(t, c)
}

func TestMalformedFramesAreDroppedNotFatal(t *testing.T) {
	srv, _ := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join")

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, a.Write(ctx, websocket.MessageText, []byte("not json")))
	require.NoError(t, a.Write(ctx, websocket.MessageText, []byte(`{"no":"type"}`)))

	// The session stayed alive and the next valid event still flows.
	sendJSON(t, a, map[string]any{"type": "cursor", "data": map[string]any{"line": float64(1)}})
	got := readEvent(t, b)
	assert.Equal(t, "cursor", got["type"])
}

func TestBroadcastReachesAllRemainingPeers(t *testing.T) {
	srv, hub := newRelayServer(t)

	a := dialRoom(t, srv, "r1", "alice")
	b := dialRoom(t, srv, "r1", "bob")
	readEventOfType(t, a, "join")
	c := dialRoom(t, srv, "r1", "carol")
	readEventOfType(t, a, "join")
	readEventOfType(t, b, "join")

	// bob drops abruptly; the room keeps working for everyone else.
	require.NoError(t, b.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool {
		return len(hub.reg.Snapshot("r1")) == 2
	}, 3*time.Second, 10*time.Millisecond)
	readEventOfType(t, a, "leave")

	sendJSON(t, a, map[string]any{"type": "code-update", "data": map[string]any{"code": "z=3"}})

	got := readEventOfType(t, c, "code-update")
	assert.Equal(t, map[string]any{"code": "z=3"}, got["data"])
	expectSilence(t, a)
}
