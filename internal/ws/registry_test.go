package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn() *Conn {
	return &Conn{out: make(chan []byte, 8), done: make(chan struct{}), log: discardLogger()}
}

func TestRegisterAndSnapshot(t *testing.T) {
	reg := NewRegistry()
	a, b := newTestConn(), newTestConn()

	reg.Register("r1", a)
	reg.Register("r1", b)

	snap := reg.Snapshot("r1")
	require.Len(t, snap, 2)
	assert.Same(t, a, snap[0], "insertion order is kept")
	assert.Same(t, b, snap[1])
}

func TestSnapshotIsACopy(t *testing.T) {
	reg := NewRegistry()
	a, b := newTestConn(), newTestConn()
	reg.Register("r1", a)
	reg.Register("r1", b)

	snap := reg.Snapshot("r1")
	reg.Deregister("r1", a)

	// The snapshot taken before the deregistration is unchanged.
	require.Len(t, snap, 2)
	require.Len(t, reg.Snapshot("r1"), 1)
}

func TestDeregisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	a := newTestConn()
	reg.Register("r1", a)

	reg.Deregister("r1", a)
	assert.NotPanics(t, func() { reg.Deregister("r1", a) })
	assert.NotPanics(t, func() { reg.Deregister("never-existed", a) })
}

func TestEmptyRoomEntryRemoved(t *testing.T) {
	reg := NewRegistry()
	a, b := newTestConn(), newTestConn()

	reg.Register("r1", a)
	reg.Register("r1", b)
	assert.Equal(t, 1, reg.Rooms())

	reg.Deregister("r1", a)
	assert.Equal(t, 1, reg.Rooms(), "room survives while a member remains")

	reg.Deregister("r1", b)
	assert.Equal(t, 0, reg.Rooms(), "last deregistration deletes the entry")
	assert.Empty(t, reg.Snapshot("r1"))
}

func TestRoomsAreIsolated(t *testing.T) {
	reg := NewRegistry()
	a, c := newTestConn(), newTestConn()

	reg.Register("r1", a)
	reg.Register("r2", c)

	require.Len(t, reg.Snapshot("r1"), 1)
	require.Len(t, reg.Snapshot("r2"), 1)
	assert.Same(t, a, reg.Snapshot("r1")[0])
	assert.Same(t, c, reg.Snapshot("r2")[0])
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room := fmt.Sprintf("room-%d", i%4)
			for j := 0; j < 100; j++ {
				c := newTestConn()
				reg.Register(room, c)
				reg.Snapshot(room)
				reg.Deregister(room, c)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Rooms())
}
