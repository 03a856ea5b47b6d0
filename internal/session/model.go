package session

import (
	"errors"
	"time"

	"attendverify/internal/geofence"
)

// Status is the session lifecycle state.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

var (
	// ErrNotFound means no session exists for the id.
	ErrNotFound = errors.New("session not found")
	// ErrNotOwner means the caller is not the session's instructor.
	ErrNotOwner = errors.New("only the owning instructor may modify a session")
	// ErrInvalidTransition means the requested lifecycle change is not allowed
	// from the session's current state.
	ErrInvalidTransition = errors.New("invalid session transition")
)

// Session is a time-boxed attendance-taking window tied to a class meeting.
type Session struct {
	ID        string    `json:"id"`
	ClassID   string    `json:"class_id"`
	FacultyID string    `json:"faculty_id"`
	Name      string    `json:"session_name"`
	Date      time.Time `json:"session_date"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Center       *geofence.Point `json:"location,omitempty"`
	FenceRadiusM float64         `json:"geo_fence_radius"`

	RequireFace     bool `json:"require_face_recognition"`
	RequireGeo      bool `json:"require_geo_fencing"`
	RequireLiveness bool `json:"require_liveness_detection"`

	Status    Status     `json:"status"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
