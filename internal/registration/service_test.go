package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitTestRegistration(t *testing.T, svc *Service) PendingRegistration {
	t.Helper()
	reg, err := svc.Submit(context.Background(), PendingRegistration{
		Email:   "Jay.Patil@example.edu",
		Role:    RoleStudent,
		Name:    "Jay Patil",
		PRN:     "PRN-1042",
		ClassID: "c1",
	})
	require.NoError(t, err)
	return reg
}

func TestSubmitNormalizesAndPends(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	reg := submitTestRegistration(t, svc)

	assert.Equal(t, StatusPending, reg.Status)
	assert.Equal(t, "jay.patil@example.edu", reg.Email)
	assert.NotEmpty(t, reg.ID)
	assert.False(t, reg.SubmittedAt.IsZero())
}

func TestSubmitDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryStore(), nil)
	submitTestRegistration(t, svc)

	_, err := svc.Submit(context.Background(), PendingRegistration{
		Email: "jay.patil@example.edu", Role: RoleStudent, Name: "Jay Patil",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestApproveMigratesProfile(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	reg := submitTestRegistration(t, svc)

	approved, subj, err := svc.Approve(ctx, reg.ID, "admin@example.edu")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, "admin@example.edu", approved.ReviewedBy)

	assert.NotEmpty(t, subj.ID)
	assert.Equal(t, reg.Email, subj.Email)
	assert.Equal(t, RoleStudent, subj.Role)
	assert.Equal(t, "PRN-1042", subj.PRN)

	found, err := svc.FindSubjectByEmail(ctx, reg.Email)
	require.NoError(t, err)
	assert.Equal(t, subj.ID, found.ID)
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	reg := submitTestRegistration(t, svc)

	_, _, err := svc.Approve(ctx, reg.ID, "admin@example.edu")
	require.NoError(t, err)

	// A later reject must fail and leave the registration approved.
	_, err = svc.Reject(ctx, reg.ID, "changed my mind", "admin@example.edu")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	got, err := svc.Get(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	// So must a second approve.
	_, _, err = svc.Approve(ctx, reg.ID, "admin@example.edu")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestRejectRequiresReason(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	reg := submitTestRegistration(t, svc)

	_, err := svc.Reject(ctx, reg.ID, "   ", "admin@example.edu")
	assert.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := svc.Reject(ctx, reg.ID, "PRN not found in enrollment list", "admin@example.edu")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "PRN not found in enrollment list", rejected.RejectionReason)

	// Rejection never creates a subject.
	_, err = svc.FindSubjectByEmail(ctx, reg.Email)
	assert.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestListByStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryStore(), nil)
	reg := submitTestRegistration(t, svc)

	pending, err := svc.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	_, _, err = svc.Approve(ctx, reg.ID, "admin@example.edu")
	require.NoError(t, err)

	pending, err = svc.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
