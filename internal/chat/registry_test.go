package chat

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeConn records everything sent to it so tests can assert on frames.
type fakeConn struct {
	id string

	mu      sync.Mutex
	frames  [][]byte
	closed  bool
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) GetID() string { return c.id }

func (c *fakeConn) SendMessage(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.frames = append(c.frames, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// framesOfType decodes the recorded frames and keeps those with the given
// type field.
func (c *fakeConn) framesOfType(t *testing.T, frameType string) []map[string]any {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()

	matches := make([]map[string]any, 0)
	for _, raw := range c.frames {
		var decoded map[string]any
		require.NoError(t, json.Unmarshal(raw, &decoded))
		if decoded["type"] == frameType {
			matches = append(matches, decoded)
		}
	}
	return matches
}

func TestRegistry_AdmitToLobby(t *testing.T) {
	// Given an empty registry
	reg := NewRegistry()
	conn := newFakeConn("c1")

	// When an identity is admitted
	reg.AdmitToLobby("alice", conn)

	// Then the lobby holds it and no room exists
	require.Len(t, reg.LobbyConns(), 1)
	require.Empty(t, reg.ActiveRoomNames())
}

func TestRegistry_MoveToRoomLeavesLobby(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn("c1")
	reg.AdmitToLobby("alice", conn)

	reg.MoveToRoom("alice", conn, "general")

	require.Empty(t, reg.LobbyConns())
	require.Equal(t, []string{"general"}, reg.ActiveRoomNames())
	require.Len(t, reg.RoomConns("general"), 1)
}

func TestRegistry_MoveToRoomIsExclusive(t *testing.T) {
	// Given an identity already inside a room
	reg := NewRegistry()
	conn := newFakeConn("c1")
	reg.AdmitToLobby("alice", conn)
	reg.MoveToRoom("alice", conn, "general")

	// When it moves straight to another room
	reg.MoveToRoom("alice", conn, "random")

	// Then the old room is gone and the identity is only in the new one
	require.Equal(t, []string{"random"}, reg.ActiveRoomNames())
	require.Empty(t, reg.RoomConns("general"))
	require.Len(t, reg.RoomConns("random"), 1)
}

func TestRegistry_MoveToLobby(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn("c1")
	reg.AdmitToLobby("alice", conn)
	reg.MoveToRoom("alice", conn, "general")

	moved := reg.MoveToLobby("alice", "general")

	require.True(t, moved)
	require.Len(t, reg.LobbyConns(), 1)
	// The emptied room loses its directory entry.
	require.Empty(t, reg.ActiveRoomNames())
}

func TestRegistry_MoveToLobbyUnknownIdentity(t *testing.T) {
	reg := NewRegistry()

	moved := reg.MoveToLobby("ghost", "general")

	require.False(t, moved)
	require.Empty(t, reg.LobbyConns())
}

func TestRegistry_EmptyRoomIsDropped(t *testing.T) {
	reg := NewRegistry()
	alice := newFakeConn("c1")
	bob := newFakeConn("c2")
	reg.MoveToRoom("alice", alice, "general")
	reg.MoveToRoom("bob", bob, "general")

	reg.RemoveFromRoom("alice", "general")
	require.Equal(t, []string{"general"}, reg.ActiveRoomNames())

	reg.RemoveFromRoom("bob", "general")
	require.Empty(t, reg.ActiveRoomNames())
}

func TestRegistry_RemoveFromRoomIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	conn := newFakeConn("c1")
	reg.MoveToRoom("alice", conn, "general")

	reg.RemoveFromRoom("alice", "general")
	reg.RemoveFromRoom("alice", "general")
	reg.RemoveFromRoom("alice", "nowhere")

	require.Empty(t, reg.ActiveRoomNames())
}

func TestRegistry_RemoveRoomExtractsAllMembers(t *testing.T) {
	reg := NewRegistry()
	alice := newFakeConn("c1")
	bob := newFakeConn("c2")
	reg.MoveToRoom("alice", alice, "general")
	reg.MoveToRoom("bob", bob, "general")

	conns := reg.removeRoom("general")

	require.Len(t, conns, 2)
	require.Empty(t, reg.ActiveRoomNames())
	// A member extracted by room removal can rejoin cleanly later.
	reg.MoveToRoom("alice", alice, "general")
	require.Len(t, reg.RoomConns("general"), 1)
}

func TestRegistry_SnapshotsAreNonNil(t *testing.T) {
	reg := NewRegistry()

	require.NotNil(t, reg.ActiveRoomNames())
	require.NotNil(t, reg.LobbyConns())
	require.NotNil(t, reg.RoomConns("missing"))
}

func TestRegistry_ConcurrentTransitions(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	identities := []string{"a", "b", "c", "d", "e"}
	for _, identity := range identities {
		wg.Add(1)
		go func(identity string) {
			defer wg.Done()
			conn := newFakeConn(identity)
			reg.AdmitToLobby(identity, conn)
			for i := 0; i < 100; i++ {
				reg.MoveToRoom(identity, conn, "general")
				reg.MoveToLobby(identity, "general")
			}
		}(identity)
	}
	wg.Wait()

	require.Len(t, reg.LobbyConns(), len(identities))
	require.Empty(t, reg.ActiveRoomNames())
}

var errBroken = errors.New("broken pipe")
