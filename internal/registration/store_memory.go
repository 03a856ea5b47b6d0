package registration

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for tests and dev mode. One lock covers
// registrations and subjects so Approve stays atomic.
type MemoryStore struct {
	mu            sync.Mutex
	registrations map[string]PendingRegistration
	subjects      map[string]Subject // keyed by email
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		registrations: make(map[string]PendingRegistration),
		subjects:      make(map[string]Subject),
	}
}

// Create stores a new pending registration.
func (m *MemoryStore) Create(ctx context.Context, reg PendingRegistration) (PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.registrations {
		if existing.Email == reg.Email {
			return PendingRegistration{}, ErrDuplicateEmail
		}
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.Status = StatusPending
	reg.SubmittedAt = time.Now().UTC()
	m.registrations[reg.ID] = reg
	return reg, nil
}

// Get returns a registration by id.
func (m *MemoryStore) Get(ctx context.Context, id string) (PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return PendingRegistration{}, ErrNotFound
	}
	return reg, nil
}

// ListByStatus returns registrations in the given state.
func (m *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PendingRegistration
	for _, reg := range m.registrations {
		if reg.Status == status {
			out = append(out, reg)
		}
	}
	return out, nil
}

// Approve flips a pending registration to approved and creates its subject
// under the same lock.
func (m *MemoryStore) Approve(ctx context.Context, id, reviewedBy string) (PendingRegistration, Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return PendingRegistration{}, Subject{}, ErrNotFound
	}
	if reg.Status != StatusPending {
		return PendingRegistration{}, Subject{}, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	reg.Status = StatusApproved
	reg.ReviewedAt = &now
	reg.ReviewedBy = reviewedBy
	m.registrations[id] = reg

	subj := Subject{
		ID:         uuid.NewString(),
		Role:       reg.Role,
		Name:       reg.Name,
		Email:      reg.Email,
		PRN:        reg.PRN,
		ClassID:    reg.ClassID,
		Department: reg.Department,
	}
	m.subjects[subj.Email] = subj
	return reg, subj, nil
}

// Reject flips a pending registration to rejected with its reason.
func (m *MemoryStore) Reject(ctx context.Context, id, reason, reviewedBy string) (PendingRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return PendingRegistration{}, ErrNotFound
	}
	if reg.Status != StatusPending {
		return PendingRegistration{}, ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	reg.Status = StatusRejected
	reg.RejectionReason = reason
	reg.ReviewedAt = &now
	reg.ReviewedBy = reviewedBy
	m.registrations[id] = reg
	return reg, nil
}

// FindSubjectByEmail returns the migrated subject for an email.
func (m *MemoryStore) FindSubjectByEmail(ctx context.Context, email string) (Subject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	subj, ok := m.subjects[email]
	if !ok {
		return Subject{}, ErrSubjectNotFound
	}
	return subj, nil
}
