package store

// Participant statuses.
const (
	StatusActive = "active"
	StatusIdle   = "idle"
)

type Room struct {
	ID           string
	Code         string
	Language     string
	CreatedAt    int64 // unix ms
	Participants []Participant
}

type Participant struct {
	ID             string
	RoomID         string
	Username       string
	Status         string
	IsTyping       bool
	CursorColor    string
	SelectionColor string
}
