package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// SupabaseVerifier asks the Supabase auth API who a token belongs to.
type SupabaseVerifier struct {
	client *resty.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewSupabaseVerifier builds a verifier against the project at baseURL.
func NewSupabaseVerifier(baseURL, apiKey string, timeout time.Duration) (*SupabaseVerifier, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("apikey", apiKey).
		SetHeader("Accept", "application/json")
	return &SupabaseVerifier{client: client}, nil
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	if strings.TrimSpace(token) == "" {
		return Identity{}, ErrUnauthorized
	}
	var user supabaseUser
	resp, err := v.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/auth/v1/user")
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if resp.IsError() {
		return Identity{}, fmt.Errorf("%w: identity provider status %d", ErrUnauthorized, resp.StatusCode())
	}
	if user.ID == "" || user.Email == "" {
		return Identity{}, fmt.Errorf("%w: identity provider returned no subject", ErrUnauthorized)
	}
	return Identity{Subject: user.ID, Email: user.Email}, nil
}
