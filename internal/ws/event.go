package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event types the relay interprets. Anything else is forwarded untouched,
// so new client-side event kinds need no relay change.
const (
	typeTypingStart       = "typing-start"
	typeTypingStop        = "typing-stop"
	typeJoin              = "join"
	typeLeave             = "leave"
	typeParticipantTyping = "participant-typing"
)

// Event is one decoded inbound frame. Only the type discriminator is parsed;
// Raw keeps the original bytes so pass-through delivery stays byte-identical.
type Event struct {
	Type string
	Raw  []byte
}

// IsTyping reports whether this is one of the two typing control events the
// relay rewrites before fan-out.
func (e Event) IsTyping() bool {
	return e.Type == typeTypingStart || e.Type == typeTypingStop
}

// DecodeEvent parses a frame just far enough to dispatch on its type.
func DecodeEvent(frame []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &head); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if head.Type == "" {
		return Event{}, errors.New("decode event: missing type")
	}
	return Event{Type: head.Type, Raw: frame}, nil
}

type lifecycleEvent struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Timestamp int64  `json:"timestamp"`
}

type typingEvent struct {
	Type string     `json:"type"`
	Data typingData `json:"data"`
}

type typingData struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

// joinFrame builds the notice broadcast to a room when a participant joins.
func joinFrame(username string) []byte {
	b, _ := json.Marshal(lifecycleEvent{Type: typeJoin, Username: username, Timestamp: time.Now().UnixMilli()})
	return b
}

// leaveFrame builds the notice broadcast to a room when a participant leaves.
func leaveFrame(username string) []byte {
	b, _ := json.Marshal(lifecycleEvent{Type: typeLeave, Username: username, Timestamp: time.Now().UnixMilli()})
	return b
}

// typingFrame builds the canonical participant-typing event. The username is
// always the sender's handle, never one embedded in the inbound payload.
func typingFrame(username string, isTyping bool) []byte {
	b, _ := json.Marshal(typingEvent{Type: typeParticipantTyping, Data: typingData{Username: username, IsTyping: isTyping}})
	return b
}
