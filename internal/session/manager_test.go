package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendverify/internal/geofence"
)

func newTestManager() *Manager {
	return NewManager(NewMemoryStore(), nil, 100)
}

func createParams() CreateParams {
	now := time.Now().UTC()
	return CreateParams{
		ClassID:   "c1",
		FacultyID: "fac1",
		Name:      "morning lecture",
		Date:      now,
		StartTime: now,
		EndTime:   now.Add(50 * time.Minute),
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	m := newTestManager()
	s, err := m.Create(context.Background(), createParams())
	require.NoError(t, err)

	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, 100.0, s.FenceRadiusM)
	assert.True(t, s.RequireFace)
	assert.True(t, s.RequireGeo)
	assert.True(t, s.RequireLiveness)
	assert.Nil(t, s.Center)
}

func TestCreateHonorsExplicitConfig(t *testing.T) {
	m := newTestManager()
	p := createParams()
	radius := 25.0
	off := false
	p.FenceRadiusM = &radius
	p.RequireLiveness = &off
	p.Center = &geofence.Point{Lat: 19.0761, Lon: 72.8774}

	s, err := m.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 25.0, s.FenceRadiusM)
	assert.False(t, s.RequireLiveness)
	assert.True(t, s.RequireFace)
	require.NotNil(t, s.Center)
}

func TestCreateRejectsInvertedWindow(t *testing.T) {
	m := newTestManager()
	p := createParams()
	p.EndTime = p.StartTime.Add(-time.Minute)
	_, err := m.Create(context.Background(), p)
	assert.Error(t, err)
}

func TestLifecycleTransitions(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	s, err := m.Create(ctx, createParams())
	require.NoError(t, err)

	paused, err := m.Pause(ctx, s.ID, "fac1")
	require.NoError(t, err)
	assert.Equal(t, StatusPaused, paused.Status)

	// Pausing a paused session is invalid.
	_, err = m.Pause(ctx, s.ID, "fac1")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	resumed, err := m.Resume(ctx, s.ID, "fac1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, resumed.Status)

	ended, err := m.End(ctx, s.ID, "fac1")
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, ended.Status)
	require.NotNil(t, ended.EndedAt)

	// Ended is terminal.
	_, err = m.Resume(ctx, s.ID, "fac1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = m.Pause(ctx, s.ID, "fac1")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestEndFromPaused(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	s, err := m.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = m.Pause(ctx, s.ID, "fac1")
	require.NoError(t, err)
	ended, err := m.End(ctx, s.ID, "fac1")
	require.NoError(t, err)
	assert.Equal(t, StatusEnded, ended.Status)
}

func TestOnlyOwnerMayTransition(t *testing.T) {
	ctx := context.Background()
	m := newTestManager()
	s, err := m.Create(ctx, createParams())
	require.NoError(t, err)

	_, err = m.End(ctx, s.ID, "fac2")
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status, "failed transition must not change state")
}

func TestTransitionUnknownSession(t *testing.T) {
	m := newTestManager()
	_, err := m.Pause(context.Background(), "missing", "fac1")
	assert.ErrorIs(t, err, ErrNotFound)
}
