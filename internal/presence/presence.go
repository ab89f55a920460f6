package presence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"log/slog"
)

// Tracker mirrors this node's live connections into short-lived redis keys:
//
//	pres:user:{username} = "1" (EX ttl, refreshed while the socket is open)
//	pres:room:{roomId}   = set of usernames (stale members pruned on read)
//	lastseen:{username}  = RFC3339 timestamp written on disconnect
//
// It is presence bookkeeping only; broadcast fan-out never goes through it.
type Tracker struct {
	rdb  *redis.Client
	log  *slog.Logger
	ttl  time.Duration
	tick time.Duration
}

// New connects to redis and verifies connectivity.
func New(ctx context.Context, addr string, db int, ttl, tick time.Duration, log *slog.Logger) (*Tracker, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("presence: redis ping: %w", err)
	}
	return &Tracker{rdb: rdb, log: log, ttl: ttl, tick: tick}, nil
}

// Close shuts down the redis connection.
func (t *Tracker) Close() { _ = t.rdb.Close() }

// Track marks username online in roomID and refreshes its heartbeat until
// the returned stop function is called. stop is idempotent.
func (t *Tracker) Track(ctx context.Context, roomID, username string) (stop func()) {
	if err := t.heartbeat(ctx, username); err != nil {
		t.log.Debug("presence.heartbeat", "user", username, "err", err)
	}
	if err := t.rdb.SAdd(ctx, roomKey(roomID), username).Err(); err != nil {
		t.log.Debug("presence.join", "room", roomID, "user", username, "err", err)
	}

	done := make(chan struct{})
	go func() {
		tick := time.NewTicker(t.tick)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				_ = t.heartbeat(context.Background(), username)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			ctx := context.Background()
			_ = t.rdb.SRem(ctx, roomKey(roomID), username).Err()
			_ = t.rdb.Set(ctx, "lastseen:"+username, time.Now().UTC().Format(time.RFC3339), 0).Err()
		})
	}
}

// OnlineInRoom returns usernames with a live heartbeat in the room,
// removing stale set members as it goes.
func (t *Tracker) OnlineInRoom(ctx context.Context, roomID string) ([]string, error) {
	users, err := t.rdb.SMembers(ctx, roomKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("presence: room members: %w", err)
	}
	out := make([]string, 0, len(users))
	for _, u := range users {
		exists, _ := t.rdb.Exists(ctx, userKey(u)).Result()
		if exists == 1 {
			out = append(out, u)
		} else {
			_ = t.rdb.SRem(ctx, roomKey(roomID), u).Err()
		}
	}
	return out, nil
}

func (t *Tracker) heartbeat(ctx context.Context, username string) error {
	return t.rdb.Set(ctx, userKey(username), "1", t.ttl).Err()
}

func roomKey(roomID string) string { return "pres:room:" + roomID }
func userKey(username string) string { return "pres:user:" + username }
