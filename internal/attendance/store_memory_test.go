package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerUpsertConverges(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	first, err := ledger.Upsert(ctx, Record{
		SessionID: "s1", SubjectID: "stu1", SubjectKind: SubjectStudent,
		Status: StatusPresent, MarkedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	second, err := ledger.Upsert(ctx, Record{
		SessionID: "s1", SubjectID: "stu1", SubjectKind: SubjectStudent,
		Status: StatusAbsent, MarkedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "resubmission updates, never duplicates")

	records, err := ledger.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusAbsent, records[0].Status)
}

func TestMemoryLedgerConcurrentSubmissionsSingleRow(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	const n = 64
	var wg sync.WaitGroup
	statuses := []Status{StatusPresent, StatusLate, StatusAbsent}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := ledger.Upsert(ctx, Record{
				SessionID: "s1", SubjectID: "stu1", SubjectKind: SubjectStudent,
				Status: statuses[i%len(statuses)], MarkedAt: time.Now().UTC(),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	records, err := ledger.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, records, 1, "N concurrent submissions must leave exactly one record")
	assert.Contains(t, statuses, records[0].Status)
}

func TestMemoryLedgerPartitionsBySubjectKind(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	_, err := ledger.Upsert(ctx, Record{SessionID: "s1", SubjectID: "x", SubjectKind: SubjectStudent, Status: StatusPresent})
	require.NoError(t, err)
	_, err = ledger.Upsert(ctx, Record{SessionID: "s1", SubjectID: "x", SubjectKind: SubjectFaculty, Status: StatusPresent})
	require.NoError(t, err)

	records, err := ledger.ListBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, records, 2, "same id in different subject tables is two records")

	_, err = ledger.Get(ctx, "s1", "missing", SubjectStudent)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
