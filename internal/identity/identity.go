package identity

import (
	"context"
	"errors"
)

// ErrUnauthorized is returned for any token that cannot be verified.
var ErrUnauthorized = errors.New("unauthorized")

// Identity is the verified subject of an access token.
type Identity struct {
	Subject string
	Email   string
}

// Verifier verifies bearer tokens issued by the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}
