package message

import "context"

// Repository manages durable message history.
type Repository interface {
	// ListForRoom returns a room's messages ordered by timestamp ascending.
	ListForRoom(ctx context.Context, roomID string, offset, limit int) ([]*Message, error)
	Append(ctx context.Context, msg *Message) error
	DeleteForRoom(ctx context.Context, roomID string) error
}
