package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process LedgerStore for tests and dev mode. The
// single mutex gives the same writes-serialized-per-key behavior the
// Postgres upsert provides.
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]Record)}
}

func ledgerKey(sessionID, subjectID string, kind SubjectKind) string {
	return sessionID + "|" + string(kind) + "|" + subjectID
}

// Upsert inserts or replaces the record for its (session, subject) key.
func (m *MemoryLedger) Upsert(ctx context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledgerKey(rec.SessionID, rec.SubjectID, rec.SubjectKind)
	if existing, ok := m.records[key]; ok {
		rec.ID = existing.ID
	} else if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = time.Now().UTC()
	m.records[key] = rec
	return rec, nil
}

// Get returns the record for one subject in one session.
func (m *MemoryLedger) Get(ctx context.Context, sessionID, subjectID string, kind SubjectKind) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[ledgerKey(sessionID, subjectID, kind)]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// ListBySession returns every record for a session, stable by subject id.
func (m *MemoryLedger) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for _, rec := range m.records {
		if rec.SessionID == sessionID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}
