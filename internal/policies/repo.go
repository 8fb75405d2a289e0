package policies

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no matching policy exists.
var ErrNotFound = errors.New("policy not found")

// Repo defines persistence operations for analysis policies.
type Repo interface {
	// Active returns the most recently updated active policy.
	Active(ctx context.Context) (Policy, error)
	Create(ctx context.Context, p Policy) (Policy, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// List returns all policies, most recently updated first.
	List(ctx context.Context) ([]Policy, error)
}
