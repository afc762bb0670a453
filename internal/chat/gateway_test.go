package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/message"
	"chat-relay/internal/room"
	"chat-relay/internal/user"
)

// The repo fakes record which calls the store makes and in what order.
type recordingUserRepo struct {
	calls *[]string
	err   error
}

func (r *recordingUserRepo) GetOrCreate(context.Context, string) (*user.User, error) {
	return &user.User{ID: "u1"}, nil
}
func (r *recordingUserRepo) SetLastRoom(context.Context, string, string) error { return nil }
func (r *recordingUserRepo) ClearLastRoom(context.Context, string) error {
	*r.calls = append(*r.calls, "users.ClearLastRoom")
	return r.err
}

type recordingRoomRepo struct {
	calls *[]string
}

func (r *recordingRoomRepo) GetByName(context.Context, string) (*room.Room, error) {
	return nil, room.ErrNotFound
}
func (r *recordingRoomRepo) GetByID(context.Context, string) (*room.Room, error) {
	return nil, room.ErrNotFound
}
func (r *recordingRoomRepo) GetAll(context.Context) ([]*room.Room, error) {
	return []*room.Room{}, nil
}
func (r *recordingRoomRepo) GetOrCreate(context.Context, string, string) (*room.Room, error) {
	return &room.Room{ID: "r1"}, nil
}
func (r *recordingRoomRepo) Delete(context.Context, string) error {
	*r.calls = append(*r.calls, "rooms.Delete")
	return nil
}

type recordingMessageRepo struct {
	calls *[]string
	err   error
}

func (r *recordingMessageRepo) ListForRoom(context.Context, string, int, int) ([]*message.Message, error) {
	return []*message.Message{}, nil
}
func (r *recordingMessageRepo) Append(context.Context, *message.Message) error { return nil }
func (r *recordingMessageRepo) DeleteForRoom(context.Context, string) error {
	*r.calls = append(*r.calls, "messages.DeleteForRoom")
	return r.err
}

func TestStore_DeleteRoomCascadesInOrder(t *testing.T) {
	var calls []string
	store := NewStore(
		&recordingUserRepo{calls: &calls},
		&recordingRoomRepo{calls: &calls},
		&recordingMessageRepo{calls: &calls},
	)

	err := store.DeleteRoom(context.Background(), "r1")

	require.NoError(t, err)
	require.Equal(t, []string{"messages.DeleteForRoom", "users.ClearLastRoom", "rooms.Delete"}, calls)
}

func TestStore_DeleteRoomStopsOnFirstFailure(t *testing.T) {
	var calls []string
	store := NewStore(
		&recordingUserRepo{calls: &calls},
		&recordingRoomRepo{calls: &calls},
		&recordingMessageRepo{calls: &calls, err: errBroken},
	)

	err := store.DeleteRoom(context.Background(), "r1")

	require.ErrorIs(t, err, errBroken)
	// The room record survives so a retry can finish the cascade.
	require.Equal(t, []string{"messages.DeleteForRoom"}, calls)
}
