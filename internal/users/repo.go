package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a user does not exist.
var ErrNotFound = errors.New("user not found")

// Repo defines persistence operations for users.
type Repo interface {
	// GetOrCreateByEmail returns the user with email, creating it with candidate if absent.
	GetOrCreateByEmail(ctx context.Context, candidate User) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
