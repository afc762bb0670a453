package chat

import "sync"

// Conn is the send-capable endpoint the registry references. The session
// that accepted the transport owns it; the registry only routes to it.
type Conn interface {
	GetID() string
	SendMessage(payload []byte) error
	Close() error
}

// Registry is the authoritative in-memory view of who is connected and
// where. An identity is either in the lobby or in exactly one room, never
// both; a room with no members has no directory entry at all.
type Registry struct {
	mu       sync.RWMutex
	lobby    map[string]Conn
	rooms    map[string]map[string]Conn
	memberOf map[string]string // identity -> room name, for identities in a room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		lobby:    make(map[string]Conn),
		rooms:    make(map[string]map[string]Conn),
		memberOf: make(map[string]string),
	}
}

// AdmitToLobby registers a freshly connected identity in the lobby.
func (r *Registry) AdmitToLobby(identity string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(identity)
	r.lobby[identity] = conn
}

// MoveToRoom places the identity in the named room, removing it from the
// lobby or from whatever room it was in before. One atomic transition.
func (r *Registry) MoveToRoom(identity string, conn Conn, roomName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(identity)
	members, ok := r.rooms[roomName]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[roomName] = members
	}
	members[identity] = conn
	r.memberOf[identity] = roomName
}

// MoveToLobby moves the identity from the named room back to the lobby.
// Returns whether the identity was actually found in that room.
func (r *Registry) MoveToLobby(identity, roomName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.rooms[roomName][identity]
	if !ok {
		return false
	}
	r.removeFromRoomLocked(identity, roomName)
	r.lobby[identity] = conn
	return true
}

// RemoveFromLobby deletes the identity from the lobby; no-op if absent.
func (r *Registry) RemoveFromLobby(identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lobby, identity)
}

// RemoveFromRoom deletes the identity from the named room; no-op if absent.
// Idempotent, so the disconnect path is safe to race with a forced close.
func (r *Registry) RemoveFromRoom(identity, roomName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeFromRoomLocked(identity, roomName)
}

// ActiveRoomNames returns a snapshot of the rooms that currently have at
// least one live member.
func (r *Registry) ActiveRoomNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rooms))
	for name := range r.rooms {
		names = append(names, name)
	}
	return names
}

// LobbyConns returns a snapshot of the lobby's connection handles so sends
// can happen outside the lock.
func (r *Registry) LobbyConns() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]Conn, 0, len(r.lobby))
	for _, conn := range r.lobby {
		conns = append(conns, conn)
	}
	return conns
}

// RoomConns returns a snapshot of a room's connection handles.
func (r *Registry) RoomConns(roomName string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[roomName]
	conns := make([]Conn, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	return conns
}

// removeRoom deletes the room's directory entry and returns the member
// handles that were in it, both in one critical section. Used by the
// router's CloseRoom so no caller can observe members without a directory
// entry or the other way round.
func (r *Registry) removeRoom(roomName string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.rooms[roomName]
	conns := make([]Conn, 0, len(members))
	for identity, conn := range members {
		delete(r.memberOf, identity)
		conns = append(conns, conn)
	}
	delete(r.rooms, roomName)
	return conns
}

// detachLocked removes the identity from wherever it currently is.
func (r *Registry) detachLocked(identity string) {
	delete(r.lobby, identity)
	if roomName, ok := r.memberOf[identity]; ok {
		r.removeFromRoomLocked(identity, roomName)
	}
}

// removeFromRoomLocked deletes the identity from a room and drops the room's
// entry as soon as it has no members left.
func (r *Registry) removeFromRoomLocked(identity, roomName string) {
	members, ok := r.rooms[roomName]
	if !ok {
		return
	}
	if _, ok := members[identity]; !ok {
		return
	}
	delete(members, identity)
	delete(r.memberOf, identity)
	if len(members) == 0 {
		delete(r.rooms, roomName)
	}
}
