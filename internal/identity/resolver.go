package identity

import (
	"context"

	"glucowizard-backend/internal/shared/server/middleware"
	"glucowizard-backend/internal/users"
)

// UserStore maps verified emails onto local users.
type UserStore interface {
	EnsureByEmail(ctx context.Context, email string) (users.User, error)
}

// Resolver verifies a token and returns the matching local user as a Principal.
type Resolver struct {
	Verifier Verifier
	Users    UserStore
}

func (r Resolver) Resolve(ctx context.Context, token string) (middleware.Principal, error) {
	id, err := r.Verifier.Verify(ctx, token)
	if err != nil {
		return middleware.Principal{}, err
	}
	u, err := r.Users.EnsureByEmail(ctx, id.Email)
	if err != nil {
		return middleware.Principal{}, err
	}
	return middleware.Principal{UserID: u.ID, Email: u.Email, Username: u.Username}, nil
}

var _ middleware.Resolver = Resolver{}
