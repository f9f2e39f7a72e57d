// Package memory provides in-memory, mutex-protected adapters for the
// attribute.Store and policy.CatalogStore outbound ports. Suitable for
// development, tests, and any deployment that accepts losing registry and
// catalog state across restarts.
package memory

import (
	"context"
	"sync"

	"github.com/abac-gate/engine/internal/domain/attribute"
)

// AttributeStore implements attribute.Store with a single in-memory map
// of Identifier -> (Key -> Value), plus a registered-id set. Thread-safe
// for concurrent access.
type AttributeStore struct {
	mu         sync.RWMutex
	attrs      map[attribute.Identifier]map[attribute.Key]attribute.Value
	registered map[attribute.Identifier]bool
}

// NewAttributeStore creates an empty in-memory attribute store.
func NewAttributeStore() *AttributeStore {
	return &AttributeStore{
		attrs:      make(map[attribute.Identifier]map[attribute.Key]attribute.Value),
		registered: make(map[attribute.Identifier]bool),
	}
}

// Set writes a single attribute and marks id registered.
func (s *AttributeStore) Set(_ context.Context, id attribute.Identifier, key attribute.Key, value attribute.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(id, key, value)
	return nil
}

// SetBatch writes parallel keys/values atomically; callers must have
// already validated the slices are equal length (attribute.ErrLengthMismatch
// is a Registry-level concern, not a Store-level one).
func (s *AttributeStore) SetBatch(_ context.Context, id attribute.Identifier, keys []attribute.Key, values []attribute.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registered[id] = true
	if len(keys) == 0 {
		return nil
	}
	for i, k := range keys {
		s.setLocked(id, k, values[i])
	}
	return nil
}

// setLocked writes id/key/value and marks id registered. Caller must hold s.mu.
func (s *AttributeStore) setLocked(id attribute.Identifier, key attribute.Key, value attribute.Value) {
	m, ok := s.attrs[id]
	if !ok {
		m = make(map[attribute.Key]attribute.Value)
		s.attrs[id] = m
	}
	m[key] = value
	s.registered[id] = true
}

// Get reads a single attribute, returning the zero Value if unset.
func (s *AttributeStore) Get(_ context.Context, id attribute.Identifier, key attribute.Key) (attribute.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attrs[id][key], nil
}

// GetAll returns a copy of every attribute written for id.
func (s *AttributeStore) GetAll(_ context.Context, id attribute.Identifier) (map[attribute.Key]attribute.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.attrs[id]
	out := make(map[attribute.Key]attribute.Value, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out, nil
}

// IsRegistered reports whether id has ever had an attribute written.
func (s *AttributeStore) IsRegistered(_ context.Context, id attribute.Identifier) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registered[id], nil
}

// Compile-time interface verification.
var _ attribute.Store = (*AttributeStore)(nil)
