package blob

import (
	"context"
	"sync"

	"sinistra/pkg/platform/sentinel"
)

// InMemory is the development and test blob store.
type InMemory struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewInMemory() *InMemory {
	return &InMemory{blobs: make(map[string][]byte)}
}

func (s *InMemory) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.blobs[key] = cp
	return key, nil
}

func (s *InMemory) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *InMemory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
