package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"glucowizard-backend/internal/shared/telemetry"
	"glucowizard-backend/internal/shared/util"
)

// ErrInvalidEmail is returned when an identity carries no usable email.
var ErrInvalidEmail = errors.New("invalid email")

// Service resolves local users.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

// EnsureByEmail returns the local user for email, creating one on first sight.
// The username defaults to the email's local part.
func (s *Service) EnsureByEmail(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return User{}, ErrInvalidEmail
	}
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}
	candidate := User{
		ID:        uuid.NewString(),
		Email:     email,
		Username:  email[:at],
		CreatedAt: now,
		UpdatedAt: now,
	}
	u, err := s.Repo.GetOrCreateByEmail(ctx, candidate)
	if err != nil {
		return User{}, fmt.Errorf("get or create user: %w", err)
	}
	if u.ID == candidate.ID {
		telemetry.Info("users.created", map[string]any{
			"user_id":    u.ID,
			"email_hash": util.HashEmail(email),
		})
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}
