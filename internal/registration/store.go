package registration

import "context"

// Store persists registrations and the subjects approval migrates them into.
//
// Approve and Reject are the atomic review primitives: both flip status only
// while it is still pending (conditional write), and Approve additionally
// creates the subject row in the same transaction. A registration can never
// end up approved without its profile, or vice versa.
type Store interface {
	Create(ctx context.Context, reg PendingRegistration) (PendingRegistration, error)
	Get(ctx context.Context, id string) (PendingRegistration, error)
	ListByStatus(ctx context.Context, status Status) ([]PendingRegistration, error)
	Approve(ctx context.Context, id, reviewedBy string) (PendingRegistration, Subject, error)
	Reject(ctx context.Context, id, reason, reviewedBy string) (PendingRegistration, error)

	FindSubjectByEmail(ctx context.Context, email string) (Subject, error)
}
