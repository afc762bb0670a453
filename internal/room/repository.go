package room

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no room record matches the lookup.
var ErrNotFound = errors.New("room not found")

// Repository manages durable room records.
type Repository interface {
	GetByName(ctx context.Context, name string) (*Room, error)
	GetByID(ctx context.Context, id string) (*Room, error)
	GetAll(ctx context.Context) ([]*Room, error)
	// GetOrCreate resolves a room by name, creating it with the proposed
	// admin if it does not exist yet. Joining an existing room never changes
	// its admin.
	GetOrCreate(ctx context.Context, name, adminID string) (*Room, error)
	Delete(ctx context.Context, id string) error
}
