package user

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no user record matches the lookup.
var ErrNotFound = errors.New("user not found")

// Repository manages durable user records.
type Repository interface {
	// GetOrCreate resolves the record for a display name, persisting a new
	// one the first time the name is seen.
	GetOrCreate(ctx context.Context, username string) (*User, error)
	// SetLastRoom records the room a user should auto-rejoin on reconnect.
	SetLastRoom(ctx context.Context, userID, roomID string) error
	// ClearLastRoom resets the last-room reference of every user that points
	// at the given room.
	ClearLastRoom(ctx context.Context, roomID string) error
}
