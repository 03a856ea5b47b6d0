package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and dev mode.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Create stores a new session.
func (m *MemoryStore) Create(ctx context.Context, s Session) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	m.sessions[s.ID] = s
	return s, nil
}

// Get returns a session by id.
func (m *MemoryStore) Get(ctx context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

// ListByFaculty returns every session owned by facultyID.
func (m *MemoryStore) ListByFaculty(ctx context.Context, facultyID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if s.FacultyID == facultyID {
			out = append(out, s)
		}
	}
	return out, nil
}

// ListActiveByClass returns active sessions for a class.
func (m *MemoryStore) ListActiveByClass(ctx context.Context, classID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Session
	for _, s := range m.sessions {
		if s.ClassID == classID && s.Status == StatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

// Transition applies a guarded lifecycle change under the store lock.
func (m *MemoryStore) Transition(ctx context.Context, id, facultyID string, from []Status, to Status, endedAt *time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	if s.FacultyID != facultyID {
		return Session{}, ErrNotOwner
	}
	if !statusIn(s.Status, from) {
		return Session{}, ErrInvalidTransition
	}
	s.Status = to
	s.UpdatedAt = time.Now().UTC()
	if endedAt != nil {
		s.EndedAt = endedAt
	}
	m.sessions[id] = s
	return s, nil
}
