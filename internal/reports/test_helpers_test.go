package reports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"glucowizard-backend/internal/inference"
	"glucowizard-backend/internal/queue"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
	signErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, signErr: map[string]error{}}
}

func (m *memStore) SaveWithKey(_ context.Context, key, _ string, r io.Reader) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := m.signErr[key]; err != nil {
		return "", err
	}
	return "https://files.test/" + key + "?ttl=" + ttl.String(), nil
}

type stubInference struct {
	mu     sync.Mutex
	result inference.Result
	err    error
	calls  int
	parts  []inference.Part
}

func (s *stubInference) Capability() inference.Capability { return inference.CapabilityResponses }

func (s *stubInference) Generate(_ context.Context, parts []inference.Part) (inference.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.parts = parts
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type staticPolicy string

func (p staticPolicy) ActiveInstructions(context.Context) (string, error) { return string(p), nil }

type recordingQueue struct {
	mu   sync.Mutex
	msgs []queue.Message
	err  error
}

func (q *recordingQueue) Send(_ context.Context, msg queue.Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
	return q.err
}

func structuredResult() *inference.StructuredResponse {
	return &inference.StructuredResponse{
		ID:         "resp_123",
		OutputText: "Readings are mostly in range.",
		Raw:        map[string]any{"id": "resp_123", "output_text": "Readings are mostly in range."},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
