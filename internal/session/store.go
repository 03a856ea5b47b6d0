package session

import (
	"context"
	"time"
)

// Store persists attendance sessions.
//
// Transition is the atomic lifecycle primitive: it flips status only when the
// session currently belongs to facultyID and its status is one of from, in a
// single conditional write. Implementations return ErrNotFound, ErrNotOwner,
// or ErrInvalidTransition when the guard does not hold.
type Store interface {
	Create(ctx context.Context, s Session) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	ListByFaculty(ctx context.Context, facultyID string) ([]Session, error)
	ListActiveByClass(ctx context.Context, classID string) ([]Session, error)
	Transition(ctx context.Context, id, facultyID string, from []Status, to Status, endedAt *time.Time) (Session, error)
}

func statusIn(s Status, set []Status) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
