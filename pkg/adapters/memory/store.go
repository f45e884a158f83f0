// Package memory implements an in-process SessionStore, suitable for tests
// and single-instance deployments.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fewston/stile/pkg/domain"
)

// Store implements ports.SessionStore in memory. Safe for concurrent use.
// Sessions are kept JSON-encoded so loads hand out isolated copies, matching
// the behavior of serializing stores like Redis.
type Store[D any] struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore[D any]() *Store[D] {
	return &Store[D]{
		data: make(map[string][]byte),
	}
}

// Save persists the session in memory.
func (s *Store[D]) Save(ctx context.Context, key string, sess *domain.Session[D]) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return nil
}

// Load retrieves the session from memory.
func (s *Store[D]) Load(ctx context.Context, key string) (*domain.Session[D], error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var sess domain.Session[D]
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &sess, nil
}

// Delete removes the session.
func (s *Store[D]) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the keys of live sessions.
func (s *Store[D]) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for key := range s.data {
		keys = append(keys, key)
	}
	return keys, nil
}
