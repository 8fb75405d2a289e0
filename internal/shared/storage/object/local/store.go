package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"glucowizard-backend/internal/shared/storage/object"
)

// ErrInvalidToken is returned when a download token is missing, expired or issued for another key.
var ErrInvalidToken = errors.New("invalid download token")

// DownloadPath is the route prefix that serves files from the local store.
const DownloadPath = "/api/v1/files/"

const metaDir = ".content-types"

// Store implements ObjectStore using the local filesystem. Signed URLs point
// back at this service and carry an HS256 token scoped to one key.
type Store struct {
	baseDir string
	baseURL string
	secret  []byte
	now     func() time.Time
}

type downloadClaims struct {
	Key string `json:"key"`
	jwt.RegisteredClaims
}

// New creates a new local object store rooted at baseDir.
func New(baseDir, publicBaseURL, secret string) (*Store, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("local store: url signing secret is required")
	}
	return &Store{
		baseDir: baseDir,
		baseURL: strings.TrimRight(publicBaseURL, "/"),
		secret:  []byte(secret),
		now:     time.Now,
	}, nil
}

// SaveWithKey writes the reader to disk at a specific storage key. The
// declared content type is kept beside the data and served on download.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (written int64, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return 0, fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			written, err = 0, fmt.Errorf("close file: %w", cerr)
		}
	}()

	written, err = io.Copy(f, r)
	if err != nil {
		return 0, fmt.Errorf("write body: %w", err)
	}
	if err := s.writeContentType(storageKey, contentType); err != nil {
		return 0, err
	}
	return written, nil
}

// ContentType returns the type recorded by SaveWithKey, or one derived from
// the key's extension for objects saved without one.
func (s *Store) ContentType(storageKey string) string {
	if metaPath, err := s.metaPath(storageKey); err == nil {
		if raw, err := os.ReadFile(metaPath); err == nil {
			if ct := strings.TrimSpace(string(raw)); ct != "" {
				return ct
			}
		}
	}
	if strings.EqualFold(filepath.Ext(storageKey), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

func (s *Store) writeContentType(storageKey, contentType string) error {
	metaPath, err := s.metaPath(storageKey)
	if err != nil {
		return err
	}
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		if err := os.Remove(metaPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("clear content type: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(metaPath, []byte(contentType), 0o644); err != nil {
		return fmt.Errorf("write content type: %w", err)
	}
	return nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := s.resolve(storageKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// SignedURL returns a download URL served by this process, valid for ttl.
func (s *Store) SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return "", err
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, downloadClaims{
		Key: clean,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return s.baseURL + DownloadPath + escapeKey(clean) + "?token=" + url.QueryEscape(signed), nil
}

// VerifyToken checks that token grants access to storageKey.
func (s *Store) VerifyToken(token, storageKey string) error {
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return err
	}
	claims := &downloadClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Key != clean {
		return ErrInvalidToken
	}
	return nil
}

func (s *Store) resolve(storageKey string) (string, error) {
	clean, err := s.cleanKey(storageKey)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, filepath.FromSlash(clean)), nil
}

func (s *Store) metaPath(storageKey string) (string, error) {
	clean, err := s.cleanKey(storageKey)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.baseDir, metaDir, filepath.FromSlash(clean)), nil
}

// cleanKey also keeps callers out of the content-type directory.
func (s *Store) cleanKey(storageKey string) (string, error) {
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return "", err
	}
	if clean == metaDir || strings.HasPrefix(clean, metaDir+"/") {
		return "", fmt.Errorf("local store: reserved key %q", clean)
	}
	return clean, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

var _ object.ObjectStore = (*Store)(nil)
