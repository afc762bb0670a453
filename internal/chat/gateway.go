package chat

import (
	"context"

	"chat-relay/internal/message"
	"chat-relay/internal/room"
	"chat-relay/internal/user"
)

// Gateway is the synchronous persistence boundary the session protocol
// drives. Lookups that find nothing return the entity package's ErrNotFound;
// anything else is a store failure and aborts the current command only.
type Gateway interface {
	GetOrCreateUser(ctx context.Context, username string) (*user.User, error)
	GetRoomByName(ctx context.Context, name string) (*room.Room, error)
	GetRoomByID(ctx context.Context, id string) (*room.Room, error)
	ListRooms(ctx context.Context) ([]*room.Room, error)
	GetOrCreateRoom(ctx context.Context, name, adminID string) (*room.Room, error)
	ListMessages(ctx context.Context, roomID string, offset, limit int) ([]*message.Message, error)
	AppendMessage(ctx context.Context, msg *message.Message) error
	SetLastRoom(ctx context.Context, userID, roomID string) error
	// DeleteRoom removes the room, its message history, and every user's
	// last-room reference that pointed at it.
	DeleteRoom(ctx context.Context, roomID string) error
}

// Store implements Gateway over the entity repositories.
type Store struct {
	users    user.Repository
	rooms    room.Repository
	messages message.Repository
}

// NewStore wires the entity repositories into one persistence gateway.
func NewStore(users user.Repository, rooms room.Repository, messages message.Repository) *Store {
	return &Store{users: users, rooms: rooms, messages: messages}
}

func (s *Store) GetOrCreateUser(ctx context.Context, username string) (*user.User, error) {
	return s.users.GetOrCreate(ctx, username)
}

func (s *Store) GetRoomByName(ctx context.Context, name string) (*room.Room, error) {
	return s.rooms.GetByName(ctx, name)
}

func (s *Store) GetRoomByID(ctx context.Context, id string) (*room.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

func (s *Store) ListRooms(ctx context.Context) ([]*room.Room, error) {
	return s.rooms.GetAll(ctx)
}

func (s *Store) GetOrCreateRoom(ctx context.Context, name, adminID string) (*room.Room, error) {
	return s.rooms.GetOrCreate(ctx, name, adminID)
}

func (s *Store) ListMessages(ctx context.Context, roomID string, offset, limit int) ([]*message.Message, error) {
	return s.messages.ListForRoom(ctx, roomID, offset, limit)
}

func (s *Store) AppendMessage(ctx context.Context, msg *message.Message) error {
	return s.messages.Append(ctx, msg)
}

func (s *Store) SetLastRoom(ctx context.Context, userID, roomID string) error {
	return s.users.SetLastRoom(ctx, userID, roomID)
}

// DeleteRoom cascades: message history first, then the dangling last-room
// references, then the room record itself.
func (s *Store) DeleteRoom(ctx context.Context, roomID string) error {
	if err := s.messages.DeleteForRoom(ctx, roomID); err != nil {
		return err
	}
	if err := s.users.ClearLastRoom(ctx, roomID); err != nil {
		return err
	}
	return s.rooms.Delete(ctx, roomID)
}
