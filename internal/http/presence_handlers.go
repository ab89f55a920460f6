package httpx

import (
	"net/http"

	"codepair/internal/presence"
)

// PresenceAPI reports which participants currently hold a live connection,
// as seen by the redis presence tracker.
type PresenceAPI struct {
	Tracker *presence.Tracker // nil when presence is disabled
}

type onlineResp struct {
	Online []string `json:"online"`
}

// Online handles GET /rooms/{roomId}/online.
func (a *PresenceAPI) Online(w http.ResponseWriter, r *http.Request) {
	if a.Tracker == nil {
		writeJSON(w, onlineResp{Online: []string{}})
		return
	}
	users, err := a.Tracker.OnlineInRoom(r.Context(), r.PathValue("roomId"))
	if err != nil {
		http.Error(w, "presence unavailable", http.StatusServiceUnavailable)
		return
	}
	if users == nil {
		users = []string{}
	}
	writeJSON(w, onlineResp{Online: users})
}
