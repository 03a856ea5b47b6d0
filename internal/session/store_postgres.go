package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"attendverify/internal/geofence"
)

// PostgresStore persists sessions in the attendance_sessions table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const sessionColumns = `id, class_id, faculty_id, session_name, session_date, start_time, end_time,
	location_latitude, location_longitude, geo_fence_radius,
	require_face_recognition, require_geo_fencing, require_liveness_detection,
	status, ended_at, created_at, updated_at`

// Create inserts a new session row.
func (p *PostgresStore) Create(ctx context.Context, s Session) (Session, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	var lat, lon *float64
	if s.Center != nil {
		lat, lon = &s.Center.Lat, &s.Center.Lon
	}
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO attendance_sessions
			(id, class_id, faculty_id, session_name, session_date, start_time, end_time,
			 location_latitude, location_longitude, geo_fence_radius,
			 require_face_recognition, require_geo_fencing, require_liveness_detection, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING created_at, updated_at
	`, s.ID, s.ClassID, s.FacultyID, s.Name, s.Date, s.StartTime, s.EndTime,
		lat, lon, s.FenceRadiusM,
		s.RequireFace, s.RequireGeo, s.RequireLiveness, s.Status)
	if err := row.Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Get returns a session by id.
func (p *PostgresStore) Get(ctx context.Context, id string) (Session, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM attendance_sessions WHERE id = $1`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return s, err
}

// ListByFaculty returns sessions owned by facultyID, newest first.
func (p *PostgresStore) ListByFaculty(ctx context.Context, facultyID string) ([]Session, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM attendance_sessions WHERE faculty_id = $1 ORDER BY created_at DESC`,
		facultyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// ListActiveByClass returns active sessions for a class, newest first.
func (p *PostgresStore) ListActiveByClass(ctx context.Context, classID string) ([]Session, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM attendance_sessions WHERE class_id = $1 AND status = 'active' ORDER BY created_at DESC`,
		classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSessions(rows)
}

// Transition flips status in a single conditional UPDATE so two racing
// instructors cannot both win. Zero rows updated means the guard failed; a
// follow-up read disambiguates why.
func (p *PostgresStore) Transition(ctx context.Context, id, facultyID string, from []Status, to Status, endedAt *time.Time) (Session, error) {
	placeholders := make([]string, len(from))
	args := []any{id, facultyID, to, endedAt}
	for i, st := range from {
		placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
		args = append(args, st)
	}
	query := `
		UPDATE attendance_sessions
		SET status = $3, ended_at = COALESCE($4, ended_at), updated_at = NOW()
		WHERE id = $1 AND faculty_id = $2 AND status IN (` + strings.Join(placeholders, ",") + `)
		RETURNING ` + sessionColumns

	row := p.db.QueryRowContext(ctx, query, args...)
	s, err := scanSession(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Session{}, err
	}

	current, gerr := p.Get(ctx, id)
	if gerr != nil {
		return Session{}, gerr
	}
	if current.FacultyID != facultyID {
		return Session{}, ErrNotOwner
	}
	return Session{}, ErrInvalidTransition
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var s Session
	var lat, lon *float64
	if err := row.Scan(&s.ID, &s.ClassID, &s.FacultyID, &s.Name, &s.Date, &s.StartTime, &s.EndTime,
		&lat, &lon, &s.FenceRadiusM,
		&s.RequireFace, &s.RequireGeo, &s.RequireLiveness,
		&s.Status, &s.EndedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return Session{}, err
	}
	if lat != nil && lon != nil {
		s.Center = &geofence.Point{Lat: *lat, Lon: *lon}
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]Session, error) {
	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
