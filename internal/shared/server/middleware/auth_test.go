package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubResolver struct {
	principal Principal
	err       error
	gotToken  string
}

func (s *stubResolver) Resolve(_ context.Context, token string) (Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(&stubResolver{err: errors.New("should not be called")}))
	router.OPTIONS("/api/v1/reports/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/reports/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer   "},
		{name: "resolver error", header: "Bearer tok", err: errors.New("invalid")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			router.Use(Auth(&stubResolver{principal: Principal{UserID: "u1"}, err: tt.err}))
			router.GET("/api/v1/reports/", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
		})
	}
}

func TestAuthStoresPrincipal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resolver := &stubResolver{principal: Principal{UserID: "u1", Email: "a@b.co", Username: "a"}}
	router := gin.New()
	router.Use(Auth(resolver))
	var gotID, gotEmail, gotName string
	router.GET("/api/v1/users/me/", func(c *gin.Context) {
		gotID = UserIDFromContext(c)
		gotEmail = UserEmailFromContext(c)
		gotName = UserNameFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/", nil)
	req.Header.Set("Authorization", "bearer tok-123")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resolver.gotToken != "tok-123" {
		t.Fatalf("expected token forwarded, got %q", resolver.gotToken)
	}
	if gotID != "u1" || gotEmail != "a@b.co" || gotName != "a" {
		t.Fatalf("unexpected principal: %q %q %q", gotID, gotEmail, gotName)
	}
}
