package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glucowizard-backend/internal/shared/storage/object"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8080/", "secret")
	require.NoError(t, err)
	return s
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(t.TempDir(), "http://localhost:8080", " ")
	assert.Error(t, err)
}

func TestSaveWithKeyOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.SaveWithKey(ctx, "reports/u1/a.pdf", "application/pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	_, err = s.SaveWithKey(ctx, "reports/u1/a.pdf", "application/pdf", strings.NewReader("second"))
	require.NoError(t, err)

	rc, err := s.Open(ctx, "reports/u1/a.pdf")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestSaveWithKeyRejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveWithKey(context.Background(), "../escape.pdf", "application/pdf", strings.NewReader("x"))
	assert.True(t, errors.Is(err, object.ErrInvalidKey))
}

func TestSignedURLRoundTrip(t *testing.T) {
	s := newTestStore(t)
	raw, err := s.SignedURL(context.Background(), "reports/u1/lab results.pdf", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", u.Host)
	assert.Equal(t, "/api/v1/files/reports/u1/lab results.pdf", u.Path)

	token := u.Query().Get("token")
	require.NotEmpty(t, token)
	assert.NoError(t, s.VerifyToken(token, "reports/u1/lab results.pdf"))
	assert.ErrorIs(t, s.VerifyToken(token, "reports/u2/other.pdf"), ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	s := newTestStore(t)
	issued := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return issued }
	raw, err := s.SignedURL(context.Background(), "reports/u1/a.pdf", time.Hour)
	require.NoError(t, err)
	u, _ := url.Parse(raw)

	s.now = func() time.Time { return issued.Add(2 * time.Hour) }
	assert.ErrorIs(t, s.VerifyToken(u.Query().Get("token"), "reports/u1/a.pdf"), ErrInvalidToken)
}

func TestDownloadHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := newTestStore(t)
	_, err := s.SaveWithKey(context.Background(), "reports/u1/a.pdf", "application/pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	raw, err := s.SignedURL(context.Background(), "reports/u1/a.pdf", time.Hour)
	require.NoError(t, err)
	u, _ := url.Parse(raw)

	r := gin.New()
	(&Handler{Store: s}).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, u.RequestURI(), nil))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/pdf", resp.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.4", resp.Body.String())

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/files/reports/u1/a.pdf?token=bogus", nil))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/files/reports/u1/a.pdf", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestSaveWithKeyRecordsContentType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveWithKey(ctx, "reports/u1/scan.bin", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", s.ContentType("reports/u1/scan.bin"))

	_, err = s.SaveWithKey(ctx, "reports/u1/scan.bin", "", strings.NewReader("raw"))
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", s.ContentType("reports/u1/scan.bin"))

	_, err = s.SaveWithKey(ctx, "reports/u1/labs.PDF", "", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", s.ContentType("reports/u1/labs.PDF"))

	_, err = s.SaveWithKey(ctx, metaDir+"/reports/u1/scan.bin", "text/plain", strings.NewReader("x"))
	assert.Error(t, err)
}
