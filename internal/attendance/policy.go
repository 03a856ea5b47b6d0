package attendance

import (
	"time"

	"attendverify/internal/session"
)

// Decide turns a result vector into a final attendance status. Pure: no I/O,
// no clock reads; callers pass the collector-validated submission time.
//
// Rules, first match wins:
//  1. session not active -> rejected, nothing recorded
//  2. submitted after end time -> rejected (the stored end time is the
//     barrier, not whatever the client observed)
//  3. any required check failed -> absent, with the observed per-check
//     booleans kept for audit
//  4. within the grace window after start -> present
//  5. otherwise (before end time) -> late
//
// Submissions before start time to an already-active session count as
// present: the instructor opening the session early is the authorization.
func Decide(s session.Session, v ResultVector, submittedAt time.Time, grace time.Duration) (Status, error) {
	switch s.Status {
	case session.StatusActive:
	case session.StatusPaused:
		return "", ErrSessionNotActive
	default:
		return "", ErrSessionEnded
	}
	if submittedAt.After(s.EndTime) {
		return "", ErrSessionEnded
	}

	if !RequiredPassed(s, v) {
		return StatusAbsent, nil
	}

	if submittedAt.After(s.StartTime.Add(grace)) {
		return StatusLate, nil
	}
	return StatusPresent, nil
}

// RequiredPassed reports whether every check the session requires passed.
func RequiredPassed(s session.Session, v ResultVector) bool {
	if s.RequireFace && !v.FaceOK {
		return false
	}
	if s.RequireGeo && !v.GeoOK {
		return false
	}
	if s.RequireLiveness && !v.LivenessOK {
		return false
	}
	return true
}
