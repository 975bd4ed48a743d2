package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in a map.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get implements Store. An expired session is closed and removed.
func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if s.Expired() {
		m.remove(id)
		return nil, ErrNotFound
	}
	return s, nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	if !m.remove(id) {
		return ErrNotFound
	}
	return nil
}

// Cleanup implements Store.
func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.RLock()
	var expired []string
	for id, s := range m.sessions {
		if s.Expired() {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if m.remove(id) {
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll closes and removes every session.
func (m *MemoryStore) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (m *MemoryStore) remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
	return ok
}

var _ Store = (*MemoryStore)(nil)
