package httpx

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"codepair/internal/app"
	"codepair/internal/presence"
	"codepair/internal/ws"
	"codepair/pkg/metrics"
)

// NewRouter wires up all HTTP routes, middleware, and handlers
func NewRouter(cfg app.Config, hub *ws.Hub, db RoomStore, pres *presence.Tracker) http.Handler {
	mw := NewMiddleware(cfg)

	rooms := &RoomsAPI{DB: db, Validate: validator.New()}
	exec := &ExecuteAPI{}
	online := &PresenceAPI{Tracker: pres}

	mux := http.NewServeMux()

	// Health / metrics
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("GET /metrics", metrics.Handler())

	// Realtime relay
	mux.HandleFunc("GET /ws/{roomId}/{username}", hub.ServeWS)

	// Room lifecycle
	mux.HandleFunc("POST /rooms", rooms.Create)
	mux.HandleFunc("GET /rooms/{roomId}", rooms.Get)
	mux.HandleFunc("POST /rooms/{roomId}/join", rooms.Join)
	mux.HandleFunc("POST /rooms/{roomId}/leave", rooms.Leave)
	mux.HandleFunc("GET /rooms/{roomId}/participants", rooms.Participants)
	mux.HandleFunc("GET /rooms/{roomId}/online", online.Online)
	mux.HandleFunc("PATCH /rooms/{roomId}/code", rooms.UpdateCode)
	mux.HandleFunc("PATCH /rooms/{roomId}/language", rooms.UpdateLanguage)

	// Mock code execution
	mux.HandleFunc("POST /execute", exec.Execute)

	return mw.Wrap(mux)
}
