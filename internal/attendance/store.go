package attendance

import "context"

// LedgerStore enforces the one-record-per-(session, subject) invariant.
//
// Upsert must be a single atomic conditional write keyed on the composite
// natural key: two concurrent submissions from the same subject must converge
// to one row holding the later decision, never two rows and never an error
// surfaced to the caller.
type LedgerStore interface {
	Upsert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, sessionID, subjectID string, kind SubjectKind) (Record, error)
	ListBySession(ctx context.Context, sessionID string) ([]Record, error)
}
