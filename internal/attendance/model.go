package attendance

import (
	"errors"
	"time"
)

// SubjectKind selects which attendance table a record belongs to.
type SubjectKind string

const (
	SubjectStudent SubjectKind = "student"
	SubjectFaculty SubjectKind = "faculty"
)

// Status is the recorded attendance outcome.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	// StatusExcused is only ever set by instructor override, never by policy.
	StatusExcused Status = "excused"
)

var (
	// ErrSessionEnded rejects submissions to an ended session or after its
	// end time. No record is written.
	ErrSessionEnded = errors.New("session has ended")
	// ErrSessionNotActive rejects submissions while a session is paused.
	ErrSessionNotActive = errors.New("session is not active")
	// ErrRecordNotFound means no attendance record exists for the key.
	ErrRecordNotFound = errors.New("attendance record not found")
)

// Cause explains why a verification check did not pass. Operators need to
// tell "model said no" apart from "model didn't answer".
type Cause string

const (
	CauseNone        Cause = ""
	CauseMismatch    Cause = "mismatch"
	CauseUnavailable Cause = "unavailable"
)

// Submission is one attendance attempt. It is transient: evidence flows
// through the collector and policy, only the resulting record is persisted.
type Submission struct {
	SessionID   string
	SubjectID   string
	SubjectKind SubjectKind

	Latitude  *float64
	Longitude *float64
	ImageURL  string

	DeviceInfo string
	IPAddress  string
}

// ResultVector is the merged outcome of the three verification channels for
// one submission. Skipped checks report OK with no cause.
type ResultVector struct {
	FaceOK     bool
	GeoOK      bool
	LivenessOK bool

	FaceScore     *float64
	LivenessScore *float64
	DistanceM     *float64

	FaceCause     Cause
	GeoCause      Cause
	LivenessCause Cause
}

// Record is the single attendance row for a (session, subject) pair.
type Record struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"session_id"`
	SubjectID   string      `json:"subject_id"`
	SubjectKind SubjectKind `json:"subject_kind"`

	Status   Status    `json:"attendance_status"`
	MarkedAt time.Time `json:"marked_at"`

	FaceVerified     bool `json:"face_verified"`
	GeoVerified      bool `json:"geo_location_verified"`
	LivenessVerified bool `json:"liveness_verified"`

	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	DistanceM     *float64 `json:"distance_from_center,omitempty"`
	FaceScore     *float64 `json:"face_confidence_score,omitempty"`
	LivenessScore *float64 `json:"liveness_score,omitempty"`

	DeviceInfo string    `json:"device_info,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}
