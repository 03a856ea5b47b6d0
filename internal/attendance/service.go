package attendance

import (
	"context"
	"errors"
	"log"
	"time"

	"attendverify/internal/bus"
	"attendverify/internal/metrics"
	"attendverify/internal/session"
)

// Service runs a submission through collection, policy, and the ledger.
type Service struct {
	sessions  session.Store
	ledger    LedgerStore
	collector *Collector
	bus       bus.Bus
	grace     time.Duration
	metrics   *metrics.Metrics
}

// NewService wires the attendance pipeline. grace is the engine-wide window
// after start time during which a verified submission is present, not late.
func NewService(sessions session.Store, ledger LedgerStore, collector *Collector, b bus.Bus, grace time.Duration, m *metrics.Metrics) *Service {
	if grace <= 0 {
		grace = 10 * time.Minute
	}
	return &Service{sessions: sessions, ledger: ledger, collector: collector, bus: b, grace: grace, metrics: m}
}

// Submit verifies one attendance attempt and records the decision. The
// submission time is the server clock, not anything the client claims.
// Resubmitting is always safe: the ledger upsert converges the single
// record to the latest decision.
func (s *Service) Submit(ctx context.Context, sub Submission) (Record, ResultVector, error) {
	if sub.SessionID == "" || sub.SubjectID == "" {
		return Record{}, ResultVector{}, errors.New("session id and subject id required")
	}
	if sub.SubjectKind == "" {
		sub.SubjectKind = SubjectStudent
	}

	sess, err := s.sessions.Get(ctx, sub.SessionID)
	if err != nil {
		return Record{}, ResultVector{}, err
	}

	submittedAt := time.Now().UTC()
	vector := s.collector.Collect(ctx, sess, sub)

	status, err := Decide(sess, vector, submittedAt, s.grace)
	if err != nil {
		s.metrics.IncDecision("rejected")
		return Record{}, vector, err
	}

	rec := Record{
		SessionID:        sub.SessionID,
		SubjectID:        sub.SubjectID,
		SubjectKind:      sub.SubjectKind,
		Status:           status,
		MarkedAt:         submittedAt,
		FaceVerified:     vector.FaceOK && sess.RequireFace,
		GeoVerified:      vector.GeoOK && sess.RequireGeo,
		LivenessVerified: vector.LivenessOK && sess.RequireLiveness,
		Latitude:         sub.Latitude,
		Longitude:        sub.Longitude,
		DistanceM:        vector.DistanceM,
		FaceScore:        vector.FaceScore,
		LivenessScore:    vector.LivenessScore,
		DeviceInfo:       sub.DeviceInfo,
		IPAddress:        sub.IPAddress,
	}

	saved, err := s.ledger.Upsert(ctx, rec)
	if err != nil {
		return Record{}, vector, err
	}

	s.metrics.IncDecision(string(status))
	s.publish(ctx, saved, "marked")
	return saved, vector, nil
}

// Override lets the owning instructor set a subject's status directly
// (e.g. excused). It flows through the same upsert, so it creates the row
// when the subject never submitted.
func (s *Service) Override(ctx context.Context, sessionID, facultyID, subjectID string, kind SubjectKind, status Status) (Record, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if sess.FacultyID != facultyID {
		return Record{}, session.ErrNotOwner
	}

	rec, err := s.ledger.Get(ctx, sessionID, subjectID, kind)
	if errors.Is(err, ErrRecordNotFound) {
		rec = Record{SessionID: sessionID, SubjectID: subjectID, SubjectKind: kind}
	} else if err != nil {
		return Record{}, err
	}
	rec.Status = status
	rec.MarkedAt = time.Now().UTC()

	saved, err := s.ledger.Upsert(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	s.publish(ctx, saved, "overridden")
	return saved, nil
}

// Records returns a session's ledger for the owning instructor.
func (s *Service) Records(ctx context.Context, sessionID, facultyID string) ([]Record, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.FacultyID != facultyID {
		return nil, session.ErrNotOwner
	}
	return s.ledger.ListBySession(ctx, sessionID)
}

// Analytics computes the session summary from the ledger.
func (s *Service) Analytics(ctx context.Context, sessionID string) (Summary, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return Summary{}, err
	}
	records, err := s.ledger.ListBySession(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(records), nil
}

func (s *Service) publish(ctx context.Context, rec Record, change string) {
	if s.bus == nil {
		return
	}
	err := s.bus.Publish(ctx, bus.Event{
		Topic:    bus.SessionTopic(rec.SessionID),
		Kind:     bus.KindAttendance,
		EntityID: rec.ID,
		Change:   change,
	})
	if err != nil {
		log.Printf("session %s: publish attendance event failed: %v", rec.SessionID, err)
	}
}
