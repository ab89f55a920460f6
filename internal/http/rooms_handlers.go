package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"codepair/internal/store"
)

// RoomStore is the slice of the data layer the room handlers need. The
// relay never touches it; divergence between the participants table and the
// live connection registry is accepted (a participant removed here keeps
// receiving broadcasts until its socket closes).
type RoomStore interface {
	CreateRoom(ctx context.Context) (store.Room, error)
	GetRoom(ctx context.Context, id string) (store.Room, error)
	JoinRoom(ctx context.Context, roomID, username string) (store.Room, error)
	LeaveRoom(ctx context.Context, roomID, username string) error
	Participants(ctx context.Context, roomID string) ([]store.Participant, error)
	UpdateCode(ctx context.Context, roomID, code string) error
	UpdateLanguage(ctx context.Context, roomID, language string) (string, error)
}

type RoomsAPI struct {
	DB       RoomStore
	Validate *validator.Validate
}

type participantDTO struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Status         string `json:"status"`
	IsTyping       bool   `json:"isTyping"`
	IsCurrentUser  bool   `json:"isCurrentUser"`
	CursorColor    string `json:"cursorColor,omitempty"`
	SelectionColor string `json:"selectionColor,omitempty"`
}

type roomDTO struct {
	ID           string           `json:"id"`
	Code         string           `json:"code"`
	Language     string           `json:"language"`
	Participants []participantDTO `json:"participants"`
	CreatedAt    int64            `json:"createdAt"`
}

type createRoomResp struct {
	RoomID string  `json:"roomId"`
	Room   roomDTO `json:"room"`
}

type joinRoomReq struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
}

type joinRoomResp struct {
	Success bool     `json:"success"`
	Room    *roomDTO `json:"room,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type leaveRoomReq struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
}

type updateCodeReq struct {
	Code string `json:"code"`
}

type updateLanguageReq struct {
	Language string `json:"language" validate:"required,oneof=javascript python cpp"`
}

type updateLanguageResp struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
}

type successResp struct {
	Success bool `json:"success"`
}

func toRoomDTO(r store.Room, currentUser string) roomDTO {
	return roomDTO{
		ID:       r.ID,
		Code:     r.Code,
		Language: r.Language,
		Participants: lo.Map(r.Participants, func(p store.Participant, _ int) participantDTO {
			return toParticipantDTO(p, currentUser)
		}),
		CreatedAt: r.CreatedAt,
	}
}

func toParticipantDTO(p store.Participant, currentUser string) participantDTO {
	return participantDTO{
		ID:             p.ID,
		Username:       p.Username,
		Status:         p.Status,
		IsTyping:       p.IsTyping,
		IsCurrentUser:  currentUser != "" && p.Username == currentUser,
		CursorColor:    p.CursorColor,
		SelectionColor: p.SelectionColor,
	}
}

// Create handles POST /rooms and seeds the room with the JavaScript template.
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	room, err := a.DB.CreateRoom(r.Context())
	if err != nil {
		http.Error(w, "could not create room", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createRoomResp{RoomID: room.ID, Room: toRoomDTO(room, "")})
}

// Get handles GET /rooms/{roomId}.
func (a *RoomsAPI) Get(w http.ResponseWriter, r *http.Request) {
	room, err := a.DB.GetRoom(r.Context(), r.PathValue("roomId"))
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, toRoomDTO(room, ""))
}

// Join handles POST /rooms/{roomId}/join. Joining with a username already in
// the room succeeds and returns the current state.
func (a *RoomsAPI) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRoomReq
	if !a.decode(w, r, &req) {
		return
	}

	room, err := a.DB.JoinRoom(r.Context(), r.PathValue("roomId"), req.Username)
	if err != nil {
		a.storeError(w, err)
		return
	}
	dto := toRoomDTO(room, req.Username)
	writeJSON(w, joinRoomResp{Success: true, Room: &dto})
}

// Leave handles POST /rooms/{roomId}/leave. Leaving a room the username is
// not part of still reports success.
func (a *RoomsAPI) Leave(w http.ResponseWriter, r *http.Request) {
	var req leaveRoomReq
	if !a.decode(w, r, &req) {
		return
	}

	if err := a.DB.LeaveRoom(r.Context(), r.PathValue("roomId"), req.Username); err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, successResp{Success: true})
}

// Participants handles GET /rooms/{roomId}/participants.
func (a *RoomsAPI) Participants(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomId")
	if _, err := a.DB.GetRoom(r.Context(), roomID); err != nil {
		a.storeError(w, err)
		return
	}
	parts, err := a.DB.Participants(r.Context(), roomID)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, lo.Map(parts, func(p store.Participant, _ int) participantDTO {
		return toParticipantDTO(p, "")
	}))
}

// UpdateCode handles PATCH /rooms/{roomId}/code.
func (a *RoomsAPI) UpdateCode(w http.ResponseWriter, r *http.Request) {
	var req updateCodeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := a.DB.UpdateCode(r.Context(), r.PathValue("roomId"), req.Code); err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, successResp{Success: true})
}

// UpdateLanguage handles PATCH /rooms/{roomId}/language and resets the code
// to the new language's default template.
func (a *RoomsAPI) UpdateLanguage(w http.ResponseWriter, r *http.Request) {
	var req updateLanguageReq
	if !a.decode(w, r, &req) {
		return
	}

	code, err := a.DB.UpdateLanguage(r.Context(), r.PathValue("roomId"), req.Language)
	if err != nil {
		a.storeError(w, err)
		return
	}
	writeJSON(w, updateLanguageResp{Success: true, Code: code})
}

// decode unmarshals and validates a request body, writing a 400 on failure.
func (a *RoomsAPI) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}
	if err := a.Validate.Struct(dst); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return false
	}
	return true
}

func (a *RoomsAPI) storeError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}

// send JSON with proper headers
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
