// internal/adapters/out/memory/local_storage.go
package memory

import (
	"context"
	"sync"
)

// LocalStorage is an in-process key/value store. Nothing survives a restart.
type LocalStorage struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{items: map[string]string{}}
}

func (s *LocalStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *LocalStorage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *LocalStorage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Len is the number of stored keys.
func (s *LocalStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
