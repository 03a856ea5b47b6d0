package registration

import (
	"errors"
	"time"
)

// Role is the subject type an applicant registers as.
type Role string

const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
)

// Status is the registration review state. approved and rejected are
// terminal; a reviewed registration never re-enters pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var (
	// ErrNotFound means no registration exists for the id.
	ErrNotFound = errors.New("registration not found")
	// ErrAlreadyReviewed rejects a second approve/reject on a terminal
	// registration.
	ErrAlreadyReviewed = errors.New("registration already reviewed")
	// ErrReasonRequired rejects a rejection without a reason.
	ErrReasonRequired = errors.New("rejection reason required")
	// ErrDuplicateEmail means a registration for the email already exists.
	ErrDuplicateEmail = errors.New("registration for this email already exists")
	// ErrSubjectNotFound means no migrated subject exists for the lookup.
	ErrSubjectNotFound = errors.New("subject not found")
)

// PendingRegistration is a sign-up awaiting administrator review.
type PendingRegistration struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`

	Name       string `json:"name"`
	PRN        string `json:"prn,omitempty"`
	ClassID    string `json:"class_id,omitempty"`
	Department string `json:"department,omitempty"`

	Status          Status     `json:"status"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	SubmittedAt     time.Time  `json:"submitted_at"`
}

// Subject is a permanent student or faculty profile, created when a
// registration is approved.
type Subject struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`

	PRN        string `json:"prn,omitempty"`
	ClassID    string `json:"class_id,omitempty"`
	Department string `json:"department,omitempty"`
}
