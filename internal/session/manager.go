package session

import (
	"context"
	"errors"
	"log"
	"time"

	"attendverify/internal/bus"
	"attendverify/internal/geofence"
)

// Manager owns session lifecycle and configuration defaults.
type Manager struct {
	store          Store
	bus            bus.Bus
	defaultRadiusM float64
}

// NewManager creates a lifecycle manager. defaultRadiusM is applied to
// sessions created without an explicit fence radius.
func NewManager(store Store, b bus.Bus, defaultRadiusM float64) *Manager {
	if defaultRadiusM <= 0 {
		defaultRadiusM = 100
	}
	return &Manager{store: store, bus: b, defaultRadiusM: defaultRadiusM}
}

// CreateParams carries instructor input for a new session. Nil optionals get
// the configured defaults: radius defaultRadiusM, all requirement flags true.
type CreateParams struct {
	ClassID   string
	FacultyID string
	Name      string
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time

	Center       *geofence.Point
	FenceRadiusM *float64

	RequireFace     *bool
	RequireGeo      *bool
	RequireLiveness *bool
}

// Create validates params and opens a new active session.
func (m *Manager) Create(ctx context.Context, p CreateParams) (Session, error) {
	if p.ClassID == "" || p.FacultyID == "" || p.Name == "" {
		return Session{}, errors.New("class, faculty and session name required")
	}
	if !p.EndTime.After(p.StartTime) {
		return Session{}, errors.New("end time must be after start time")
	}

	s := Session{
		ClassID:         p.ClassID,
		FacultyID:       p.FacultyID,
		Name:            p.Name,
		Date:            p.Date,
		StartTime:       p.StartTime,
		EndTime:         p.EndTime,
		Center:          p.Center,
		FenceRadiusM:    m.defaultRadiusM,
		RequireFace:     true,
		RequireGeo:      true,
		RequireLiveness: true,
		Status:          StatusActive,
	}
	if p.FenceRadiusM != nil && *p.FenceRadiusM > 0 {
		s.FenceRadiusM = *p.FenceRadiusM
	}
	if p.RequireFace != nil {
		s.RequireFace = *p.RequireFace
	}
	if p.RequireGeo != nil {
		s.RequireGeo = *p.RequireGeo
	}
	if p.RequireLiveness != nil {
		s.RequireLiveness = *p.RequireLiveness
	}

	created, err := m.store.Create(ctx, s)
	if err != nil {
		return Session{}, err
	}
	m.publish(ctx, created, "created")
	return created, nil
}

// Get returns a session by id.
func (m *Manager) Get(ctx context.Context, id string) (Session, error) {
	return m.store.Get(ctx, id)
}

// ListByFaculty returns an instructor's sessions.
func (m *Manager) ListByFaculty(ctx context.Context, facultyID string) ([]Session, error) {
	return m.store.ListByFaculty(ctx, facultyID)
}

// ListActiveByClass returns the sessions a class member can currently submit to.
func (m *Manager) ListActiveByClass(ctx context.Context, classID string) ([]Session, error) {
	return m.store.ListActiveByClass(ctx, classID)
}

// Pause suspends an active session.
func (m *Manager) Pause(ctx context.Context, id, facultyID string) (Session, error) {
	return m.transition(ctx, id, facultyID, []Status{StatusActive}, StatusPaused, nil, "paused")
}

// Resume reactivates a paused session.
func (m *Manager) Resume(ctx context.Context, id, facultyID string) (Session, error) {
	return m.transition(ctx, id, facultyID, []Status{StatusPaused}, StatusActive, nil, "resumed")
}

// End terminates a session. Ended sessions are immutable; the stamped time is
// the barrier the decision policy enforces for late-arriving submissions.
func (m *Manager) End(ctx context.Context, id, facultyID string) (Session, error) {
	now := time.Now().UTC()
	return m.transition(ctx, id, facultyID, []Status{StatusActive, StatusPaused}, StatusEnded, &now, "ended")
}

func (m *Manager) transition(ctx context.Context, id, facultyID string, from []Status, to Status, endedAt *time.Time, change string) (Session, error) {
	s, err := m.store.Transition(ctx, id, facultyID, from, to, endedAt)
	if err != nil {
		return Session{}, err
	}
	m.publish(ctx, s, change)
	return s, nil
}

func (m *Manager) publish(ctx context.Context, s Session, change string) {
	if m.bus == nil {
		return
	}
	err := m.bus.Publish(ctx, bus.Event{
		Topic:    bus.SessionTopic(s.ID),
		Kind:     bus.KindSession,
		EntityID: s.ID,
		Change:   change,
	})
	if err != nil {
		log.Printf("session %s: publish %s event failed: %v", s.ID, change, err)
	}
}
