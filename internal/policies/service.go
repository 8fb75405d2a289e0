package policies

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service exposes analysis policies to the workflow and the admin CLI.
type Service struct {
	Repo Repo
}

// ActiveInstructions returns the instructions of the active policy, or "" when none is active.
func (s *Service) ActiveInstructions(ctx context.Context) (string, error) {
	p, err := s.Repo.Active(ctx)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load active policy: %w", err)
	}
	return p.CustomInstructions, nil
}

// Add stores a new policy.
func (s *Service) Add(ctx context.Context, instructions string, active bool) (Policy, error) {
	instructions = strings.TrimSpace(instructions)
	if instructions == "" {
		return Policy{}, fmt.Errorf("instructions are required")
	}
	return s.Repo.Create(ctx, Policy{IsActive: active, CustomInstructions: instructions})
}

// SetActive toggles a policy.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	return s.Repo.SetActive(ctx, id, active)
}

// List returns all policies, most recently updated first.
func (s *Service) List(ctx context.Context) ([]Policy, error) {
	return s.Repo.List(ctx)
}
