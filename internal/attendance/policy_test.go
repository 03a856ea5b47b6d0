package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendverify/internal/session"
)

func testSession(status session.Status, start, end time.Time) session.Session {
	return session.Session{
		ID:              "s1",
		Status:          status,
		StartTime:       start,
		EndTime:         end,
		RequireFace:     true,
		RequireGeo:      true,
		RequireLiveness: true,
	}
}

func allPassed() ResultVector {
	return ResultVector{FaceOK: true, GeoOK: true, LivenessOK: true}
}

func TestDecideOrdering(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(50 * time.Minute)
	grace := 10 * time.Minute

	tests := []struct {
		name        string
		status      session.Status
		vector      ResultVector
		submittedAt time.Time
		want        Status
		wantErr     error
	}{
		{
			name:        "ended session rejects even with perfect evidence",
			status:      session.StatusEnded,
			vector:      allPassed(),
			submittedAt: start.Add(5 * time.Minute),
			wantErr:     ErrSessionEnded,
		},
		{
			name:        "paused session rejects",
			status:      session.StatusPaused,
			vector:      allPassed(),
			submittedAt: start.Add(5 * time.Minute),
			wantErr:     ErrSessionNotActive,
		},
		{
			name:        "after end time rejects before any check is considered",
			status:      session.StatusActive,
			vector:      allPassed(),
			submittedAt: end.Add(time.Minute),
			wantErr:     ErrSessionEnded,
		},
		{
			name:        "failed required check marks absent",
			status:      session.StatusActive,
			vector:      ResultVector{FaceOK: false, GeoOK: true, LivenessOK: true, FaceCause: CauseMismatch},
			submittedAt: start.Add(5 * time.Minute),
			want:        StatusAbsent,
		},
		{
			name:        "within grace window is present",
			status:      session.StatusActive,
			vector:      allPassed(),
			submittedAt: start.Add(5 * time.Minute),
			want:        StatusPresent,
		},
		{
			name:        "exactly at grace boundary is present",
			status:      session.StatusActive,
			vector:      allPassed(),
			submittedAt: start.Add(grace),
			want:        StatusPresent,
		},
		{
			name:        "after grace but before end is late",
			status:      session.StatusActive,
			vector:      allPassed(),
			submittedAt: start.Add(45 * time.Minute),
			want:        StatusLate,
		},
		{
			name:        "before start to an open session is present",
			status:      session.StatusActive,
			vector:      allPassed(),
			submittedAt: start.Add(-2 * time.Minute),
			want:        StatusPresent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(testSession(tt.status, start, end), tt.vector, tt.submittedAt, grace)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideFailClosedNeverPresent(t *testing.T) {
	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s := testSession(session.StatusActive, start, start.Add(50*time.Minute))

	// Geo required but unevaluable: the collector reports it failed with an
	// unavailable cause. That must never yield present.
	v := ResultVector{FaceOK: true, GeoOK: false, LivenessOK: true, GeoCause: CauseUnavailable}
	got, err := Decide(s, v, start.Add(time.Minute), 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, StatusAbsent, got)
}

func TestRequiredPassedSkipsUnrequiredChannels(t *testing.T) {
	start := time.Now().UTC()
	s := testSession(session.StatusActive, start, start.Add(time.Hour))
	s.RequireFace = false
	s.RequireLiveness = false

	v := ResultVector{FaceOK: false, GeoOK: true, LivenessOK: false}
	assert.True(t, RequiredPassed(s, v))

	s.RequireGeo = true
	v.GeoOK = false
	assert.False(t, RequiredPassed(s, v))
}
