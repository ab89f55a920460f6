package ws

import "sync"

// Registry maps room ids to their live connections. It is the only shared
// mutable state in the relay: register/deregister take the write lock for
// O(1) map mutations, fan-out reads a point-in-time copy under the read lock
// and never holds it across network I/O.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string][]*Conn // insertion order kept
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rooms: map[string][]*Conn{}}
}

// Register adds c to the room, creating the entry on first join. Rooms exist
// implicitly: there is no error path for an unknown room id.
func (r *Registry) Register(roomID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[roomID] = append(r.rooms[roomID], c)
}

// Deregister removes c from the room. Removing an absent connection is a
// no-op; removing the last one deletes the room entry so empty rooms never
// accumulate.
func (r *Registry) Deregister(roomID string, c *Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := r.rooms[roomID]
	for i, cc := range conns {
		if cc == c {
			r.rooms[roomID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(r.rooms[roomID]) == 0 {
		delete(r.rooms, roomID)
	}
}

// Snapshot returns a point-in-time copy of the room's connections. Callers
// iterate the copy, so a concurrent join/leave can never cause a missed or
// duplicated delivery mid-fan-out.
func (r *Registry) Snapshot(roomID string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := r.rooms[roomID]
	out := make([]*Conn, len(conns))
	copy(out, conns)
	return out
}

// Rooms reports how many rooms currently have at least one live connection.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
