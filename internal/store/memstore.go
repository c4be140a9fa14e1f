package store

import (
	"context"
	"slices"
	"sync"

	"github.com/heysubinoy/kvrest/pkg/kv"
)

// MemStore is an in-memory implementation of the kv.Store interface.
// It uses a map protected by a RWMutex for thread-safe operations.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// Compile-time check to ensure MemStore implements kv.Store.
var _ kv.Store[[]byte] = (*MemStore)(nil)

// NewMemStore creates and returns a new MemStore instance.
func NewMemStore() *MemStore {
	return &MemStore{
		data: make(map[string][]byte),
	}
}

// Insert stores a key-value pair in the store.
// Always returns nil for in-memory operations.
func (s *MemStore) Insert(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = slices.Clone(value)
	return nil
}

// Read retrieves a value by key from the store.
func (s *MemStore) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	if !ok {
		return nil, kv.NotFound(key)
	}
	return slices.Clone(val), nil
}

func (s *MemStore) Has(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.data[key]
	return ok, nil
}

// Keys returns all keys in lexical order.
func (s *MemStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys, nil
}

// Delete removes a key from the store.
func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return kv.NotFound(key)
	}
	delete(s.data, key)
	return nil
}

func (s *MemStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.data)
	return nil
}

// dump returns a copy of the entire map.
func (s *MemStore) dump() map[string][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.data))
	for k, v := range s.data {
		out[k] = slices.Clone(v)
	}
	return out
}

// replace swaps the contents of the store for data.
func (s *MemStore) replace(data map[string][]byte) {
	if data == nil {
		data = make(map[string][]byte)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = data
}
