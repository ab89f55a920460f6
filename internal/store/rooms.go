package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// shortID returns a 6-char hex room id, short enough to share verbally.
func shortID() string { return uuid.NewString()[:6] }

// CreateRoom inserts a new room seeded with the JavaScript template.
func (p *Postgres) CreateRoom(ctx context.Context) (Room, error) {
	r := Room{
		ID:        shortID(),
		Code:      DefaultTemplate(LangJavaScript),
		Language:  LangJavaScript,
		CreatedAt: time.Now().UnixMilli(),
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO rooms (id, code, language, created_at)
		VALUES ($1, $2, $3, $4)
	`, r.ID, r.Code, r.Language, r.CreatedAt)
	if err != nil {
		return Room{}, fmt.Errorf("create room: %w", err)
	}
	p.log.Info("room.created", "id", r.ID)
	return r, nil
}

// GetRoom fetches a room with its participants.
func (p *Postgres) GetRoom(ctx context.Context, id string) (Room, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT id, code, language, created_at
		FROM rooms
		WHERE id = $1
	`, id)

	var r Room
	if err := row.Scan(&r.ID, &r.Code, &r.Language, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Room{}, ErrNotFound
		}
		return Room{}, err
	}

	parts, err := p.Participants(ctx, id)
	if err != nil {
		return Room{}, err
	}
	r.Participants = parts
	return r, nil
}

// Participants lists a room's participants in join order.
func (p *Postgres) Participants(ctx context.Context, roomID string) ([]Participant, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, room_id, username, status, is_typing, cursor_color, selection_color
		FROM participants
		WHERE room_id = $1
		ORDER BY joined_at
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Participant
	for rows.Next() {
		var pt Participant
		if err := rows.Scan(&pt.ID, &pt.RoomID, &pt.Username, &pt.Status, &pt.IsTyping, &pt.CursorColor, &pt.SelectionColor); err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, rows.Err()
}

// JoinRoom adds username to the room's participant list. Joining twice with
// the same username is idempotent and returns the current room state.
func (p *Postgres) JoinRoom(ctx context.Context, roomID, username string) (Room, error) {
	r, err := p.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, err
	}

	for _, pt := range r.Participants {
		if pt.Username == username {
			return r, nil
		}
	}

	color := colorFor(len(r.Participants))
	_, err = p.pool.Exec(ctx, `
		INSERT INTO participants (id, room_id, username, status, is_typing, cursor_color, selection_color)
		VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	`, uuid.NewString(), roomID, username, StatusActive, color.Cursor, color.Selection)
	if err != nil {
		return Room{}, fmt.Errorf("join room: %w", err)
	}

	return p.GetRoom(ctx, roomID)
}

// LeaveRoom removes username from the room's participant list. Removing an
// absent participant is a no-op.
func (p *Postgres) LeaveRoom(ctx context.Context, roomID, username string) error {
	if _, err := p.roomExists(ctx, roomID); err != nil {
		return err
	}
	_, err := p.pool.Exec(ctx, `
		DELETE FROM participants
		WHERE room_id = $1 AND username = $2
	`, roomID, username)
	return err
}

// UpdateCode replaces the room's code.
func (p *Postgres) UpdateCode(ctx context.Context, roomID, code string) error {
	ct, err := p.pool.Exec(ctx, `
		UPDATE rooms SET code = $2 WHERE id = $1
	`, roomID, code)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLanguage switches the room's language and resets the code to that
// language's default template, which is returned.
func (p *Postgres) UpdateLanguage(ctx context.Context, roomID, language string) (string, error) {
	code := DefaultTemplate(language)
	ct, err := p.pool.Exec(ctx, `
		UPDATE rooms SET language = $2, code = $3 WHERE id = $1
	`, roomID, language, code)
	if err != nil {
		return "", err
	}
	if ct.RowsAffected() == 0 {
		return "", ErrNotFound
	}
	return code, nil
}

func (p *Postgres) roomExists(ctx context.Context, roomID string) (bool, error) {
	var one int
	err := p.pool.QueryRow(ctx, `SELECT 1 FROM rooms WHERE id = $1`, roomID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
