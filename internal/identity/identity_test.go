package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucowizard-backend/internal/users"
)

func signToken(t *testing.T, secret string, claims accessClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestJWTVerifier(t *testing.T) {
	now := time.Date(2026, time.February, 1, 12, 0, 0, 0, time.UTC)
	v, err := NewJWTVerifier("s3cret", "authenticated")
	require.NoError(t, err)
	v.now = func() time.Time { return now }

	valid := accessClaims{
		Email: "erin@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "sub-1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	tests := []struct {
		name    string
		token   func() string
		wantErr bool
	}{
		{name: "valid", token: func() string { return signToken(t, "s3cret", valid) }},
		{name: "wrong secret", token: func() string { return signToken(t, "other", valid) }, wantErr: true},
		{name: "expired", token: func() string {
			c := valid
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))
			return signToken(t, "s3cret", c)
		}, wantErr: true},
		{name: "wrong audience", token: func() string {
			c := valid
			c.Audience = jwt.ClaimStrings{"anon"}
			return signToken(t, "s3cret", c)
		}, wantErr: true},
		{name: "missing email", token: func() string {
			c := valid
			c.Email = ""
			return signToken(t, "s3cret", c)
		}, wantErr: true},
		{name: "garbage", token: func() string { return "not.a.jwt" }, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.Verify(context.Background(), tt.token())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Identity{Subject: "sub-1", Email: "erin@example.com"}, id)
		})
	}
}

func TestSupabaseVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"sub-2","email":"frank@example.com","aud":"authenticated"}`))
	}))
	defer srv.Close()

	v, err := NewSupabaseVerifier(srv.URL+"/", "anon-key", time.Second)
	require.NoError(t, err)

	id, err := v.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, Identity{Subject: "sub-2", Email: "frank@example.com"}, id)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

type fixedVerifier struct {
	id  Identity
	err error
}

func (f fixedVerifier) Verify(context.Context, string) (Identity, error) { return f.id, f.err }

func TestResolverMapsToLocalUser(t *testing.T) {
	svc := &users.Service{Repo: users.NewMemoryRepo()}
	r := Resolver{Verifier: fixedVerifier{id: Identity{Subject: "s", Email: "gina@example.com"}}, Users: svc}

	p1, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	p2, err := r.Resolve(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, p1.UserID, p2.UserID)
	assert.Equal(t, "gina", p1.Username)

	r.Verifier = fixedVerifier{err: ErrUnauthorized}
	_, err = r.Resolve(context.Background(), "tok")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}
