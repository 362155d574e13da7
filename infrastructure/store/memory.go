// Package store provides session.Store implementations. Only an
// in-memory store exists; persistence design is out of scope and the
// store interface keeps it that way.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/session"
)

// MemoryStore keeps sessions in a process-local map. The mutex only
// guards the map itself; per-session serialization is the service's job.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

var _ session.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*session.Session)}
}

// Create stores a new session, failing on duplicate ids.
func (m *MemoryStore) Create(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[s.ID]; exists {
		return fmt.Errorf("session %s already exists", s.ID)
	}
	m.sessions[s.ID] = s
	return nil
}

// Get returns the stored session or domain.ErrSessionNotFound.
func (m *MemoryStore) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrSessionNotFound)
	}
	return s, nil
}

// Save replaces the stored session, last write wins.
func (m *MemoryStore) Save(_ context.Context, s *session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}
