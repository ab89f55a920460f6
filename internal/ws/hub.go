package ws

import (
	"net/http"

	"log/slog"

	"codepair/internal/presence"
	"codepair/pkg/metrics"
)

// Hub drives the connect → relay → disconnect lifecycle for every socket.
// Each connection gets its own goroutine pair (reader here, writer in
// WriteLoop); the registry is the only state they share.
type Hub struct {
	log  *slog.Logger
	reg  *Registry
	pres *presence.Tracker // nil disables presence tracking

	sendBuffer int
}

// NewHub sets up the hub with its registry, logger and optional presence tracker.
func NewHub(logger *slog.Logger, pres *presence.Tracker, sendBuffer int) *Hub {
	return &Hub{log: logger, reg: NewRegistry(), pres: pres, sendBuffer: sendBuffer}
}

// ServeWS handles a new /ws/{roomId}/{username} connection.
//
// State machine per connection: Connecting → Joined → Closed. A handshake
// failure never touches the registry; once Joined, any exit path (client
// close, read failure, shutdown) runs the full deregister + leave sequence.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	username := r.PathValue("username")
	if roomID == "" || username == "" {
		http.Error(w, "roomId and username required", http.StatusBadRequest)
		return
	}

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "room", roomID, "err", err)
		return
	}

	ctx := r.Context()
	c := NewConn(sock, h.log, roomID, username, h.sendBuffer)

	h.reg.Register(roomID, c)
	metrics.ConnectionsActive.Inc()
	h.log.Info("ws.joined", "room", roomID, "user", username)

	go c.WriteLoop(ctx)

	var stopPresence func()
	if h.pres != nil {
		stopPresence = h.pres.Track(ctx, roomID, username)
	}

	// Join notice goes to everyone already in the room, never the joiner.
	h.broadcast(roomID, c, joinFrame(username))

	for {
		frame, ok := c.Read(ctx)
		if !ok {
			break
		}
		evt, err := DecodeEvent(frame)
		if err != nil {
			// Malformed input is dropped, not fatal: the session stays Joined.
			h.log.Debug("ws.drop_malformed", "room", roomID, "user", username, "err", err)
			continue
		}
		metrics.EventsRelayed.Inc()
		h.broadcast(roomID, c, outbound(evt, username))
	}

	h.reg.Deregister(roomID, c)
	metrics.ConnectionsActive.Dec()
	if stopPresence != nil {
		stopPresence()
	}
	h.broadcast(roomID, c, leaveFrame(username))
	c.Close()
	h.log.Info("ws.left", "room", roomID, "user", username)
}

// broadcast fans a frame out to every room member except the sender,
// iterating a point-in-time snapshot of the room.
func (h *Hub) broadcast(roomID string, sender *Conn, frame []byte) {
	fanout(h.reg.Snapshot(roomID), sender, frame)
}
