package registration

import (
	"context"
	"errors"
	"log"
	"strings"

	"attendverify/internal/bus"
)

// Service owns the registration approval state machine.
type Service struct {
	store Store
	bus   bus.Bus
}

// NewService creates the service.
func NewService(store Store, b bus.Bus) *Service {
	return &Service{store: store, bus: b}
}

// Submit files a new registration for review.
func (s *Service) Submit(ctx context.Context, reg PendingRegistration) (PendingRegistration, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if reg.Email == "" || reg.Name == "" {
		return PendingRegistration{}, errors.New("email and name required")
	}
	if reg.Role != RoleStudent && reg.Role != RoleFaculty {
		return PendingRegistration{}, errors.New("role must be student or faculty")
	}

	created, err := s.store.Create(ctx, reg)
	if err != nil {
		return PendingRegistration{}, err
	}
	s.publish(ctx, created, "submitted")
	return created, nil
}

// Get returns a registration by id.
func (s *Service) Get(ctx context.Context, id string) (PendingRegistration, error) {
	return s.store.Get(ctx, id)
}

// ListByStatus returns registrations in the given state.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]PendingRegistration, error) {
	return s.store.ListByStatus(ctx, status)
}

// Approve moves a pending registration to approved and migrates its profile
// into the permanent subject table. Both happen or neither does.
func (s *Service) Approve(ctx context.Context, id, reviewedBy string) (PendingRegistration, Subject, error) {
	reg, subj, err := s.store.Approve(ctx, id, reviewedBy)
	if err != nil {
		return PendingRegistration{}, Subject{}, err
	}
	s.publish(ctx, reg, "approved")
	return reg, subj, nil
}

// Reject moves a pending registration to rejected. The reason is mandatory:
// applicants see it on their pending-approval screen.
func (s *Service) Reject(ctx context.Context, id, reason, reviewedBy string) (PendingRegistration, error) {
	if strings.TrimSpace(reason) == "" {
		return PendingRegistration{}, ErrReasonRequired
	}
	reg, err := s.store.Reject(ctx, id, reason, reviewedBy)
	if err != nil {
		return PendingRegistration{}, err
	}
	s.publish(ctx, reg, "rejected")
	return reg, nil
}

// FindSubjectByEmail returns the migrated subject for an email.
func (s *Service) FindSubjectByEmail(ctx context.Context, email string) (Subject, error) {
	return s.store.FindSubjectByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) publish(ctx context.Context, reg PendingRegistration, change string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, bus.Event{
		Topic:    bus.RegistrationTopic(reg.Email),
		Kind:     bus.KindRegistration,
		EntityID: reg.ID,
		Change:   change,
	})
	if err != nil {
		log.Printf("registration %s: publish %s event failed: %v", reg.ID, change, err)
	}
}
