package storage

import (
	"context"
	"sync"

	"github.com/CreativeUnicorns/cogbot"
)

// MemoryStorage implements the Storage interface using an in-memory map.
// This is useful for testing or when persistence is not required.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStorage creates a new instance of MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string][]byte),
	}
}

// Read returns a copy of the blob stored under name.
// It returns cogbot.ErrNotFound if the name was never written.
func (s *MemoryStorage) Read(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[name]
	if !ok {
		return nil, cogbot.ErrNotFound
	}
	// Return a copy so callers cannot modify the stored blob
	return append([]byte(nil), data...), nil
}

// Write stores a copy of data under name.
func (s *MemoryStorage) Write(_ context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[name] = append([]byte(nil), data...)
	return nil
}

// Close is a no-op for MemoryStorage as there are no external resources to release.
func (s *MemoryStorage) Close() error {
	return nil
}
