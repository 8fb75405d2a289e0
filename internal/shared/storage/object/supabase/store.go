package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"glucowizard-backend/internal/shared/storage/object"
)

// Store implements ObjectStore on top of the Supabase Storage REST API.
type Store struct {
	client  *resty.Client
	baseURL string
	bucket  string
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// New creates a Supabase storage client for one bucket. baseURL is the project URL.
func New(baseURL, serviceKey, bucket string, timeout time.Duration) (*Store, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" || strings.TrimSpace(serviceKey) == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("supabase bucket is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL+"/storage/v1").
		SetTimeout(timeout).
		SetAuthToken(serviceKey).
		SetHeader("apikey", serviceKey)

	return &Store{client: client, baseURL: baseURL, bucket: bucket}, nil
}

// SaveWithKey uploads r to the bucket, replacing any existing object.
func (s *Store) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return 0, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("read body: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "true").
		SetBody(data).
		Post(s.objectPath("object", clean))
	if err != nil {
		return 0, fmt.Errorf("supabase upload bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	if resp.IsError() {
		return 0, fmt.Errorf("supabase upload bucket=%s key=%s: status %d: %s", s.bucket, clean, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return int64(len(data)), nil
}

// Open downloads an object. The caller closes the returned body.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(s.objectPath("object", clean))
	if err != nil {
		return nil, fmt.Errorf("supabase download bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 512))
		body.Close()
		return nil, fmt.Errorf("supabase download bucket=%s key=%s: status %d: %s", s.bucket, clean, resp.StatusCode(), bytes.TrimSpace(msg))
	}
	return body, nil
}

// SignedURL asks Supabase for a signed download URL valid for ttl.
func (s *Store) SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	clean, err := object.CleanKey(storageKey)
	if err != nil {
		return "", err
	}
	seconds := int(ttl / time.Second)
	if seconds <= 0 {
		seconds = 1
	}
	var out signResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(signRequest{ExpiresIn: seconds}).
		SetResult(&out).
		Post(s.objectPath("object/sign", clean))
	if err != nil {
		return "", fmt.Errorf("supabase sign bucket=%s key=%s: %w", s.bucket, clean, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("supabase sign bucket=%s key=%s: status %d: %s", s.bucket, clean, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if out.SignedURL == "" {
		return "", fmt.Errorf("supabase sign bucket=%s key=%s: empty signedURL", s.bucket, clean)
	}
	return s.absolute(out.SignedURL), nil
}

func (s *Store) objectPath(kind, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/" + kind + "/" + url.PathEscape(s.bucket) + "/" + strings.Join(parts, "/")
}

// absolute resolves the relative path Supabase returns against the storage endpoint.
func (s *Store) absolute(signed string) string {
	if strings.HasPrefix(signed, "http://") || strings.HasPrefix(signed, "https://") {
		return signed
	}
	return s.baseURL + "/storage/v1/" + strings.TrimLeft(signed, "/")
}

var _ object.ObjectStore = (*Store)(nil)
