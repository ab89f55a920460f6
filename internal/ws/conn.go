package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"log/slog"
	"nhooyr.io/websocket"

	"codepair/pkg/metrics"
)

const pingInterval = 20 * time.Second

// Conn wraps one live WebSocket bound to a room id and participant handle.
// It owns inbound framing and a bounded, non-blocking outbound queue; the
// Registry references it but never outlives the lifecycle that created it.
type Conn struct {
	ws       *websocket.Conn
	log      *slog.Logger
	roomID   string
	username string

	out       chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// Accept upgrades HTTP to websocket (allow all origins)
func Accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:  []string{"*"},
		CompressionMode: websocket.CompressionDisabled,
	})
}

// NewConn wraps a WS connection for a specific room + participant.
func NewConn(sock *websocket.Conn, log *slog.Logger, roomID, username string, sendBuffer int) *Conn {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Conn{
		ws: sock, log: log, roomID: roomID, username: username,
		out:  make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

// Read blocks until it receives a text/binary message.
// Returns false if the connection is closed.
func (c *Conn) Read(ctx context.Context) ([]byte, bool) {
	for {
		typ, data, err := c.ws.Read(ctx)
		if err != nil {
			return nil, false
		}
		if typ == websocket.MessageText || typ == websocket.MessageBinary {
			return data, true
		}
	}
}

// WriteLoop drains the outbound queue and sends periodic pings.
// Exits when the connection closes or ctx is cancelled. Frames leave the
// queue in FIFO order, which preserves per-sender ordering end to end.
func (c *Conn) WriteLoop(ctx context.Context) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()

	for {
		select {
		case b := <-c.out:
			if err := c.ws.Write(ctx, websocket.MessageText, b); err != nil {
				c.log.Debug("ws.write", "room", c.roomID, "user", c.username, "err", err)
			}
		case <-t.C:
			_ = c.ws.Ping(ctx)
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Send queues a frame without blocking. Frames for a closed connection or a
// full queue are dropped: one stalled participant must not stall the room.
func (c *Conn) Send(b []byte) {
	select {
	case <-c.done:
		metrics.SendsDropped.Inc()
		return
	default:
	}
	select {
	case c.out <- b:
	default:
		metrics.SendsDropped.Inc()
		c.log.Debug("ws.send_dropped", "room", c.roomID, "user", c.username)
	}
}

// Close tears down the socket and releases buffered outbound state.
// Idempotent; a closed connection is never reused.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close(websocket.StatusNormalClosure, "bye")
	})
}
