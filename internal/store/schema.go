package store

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied idempotently at startup. Column names follow the
// production portal tables so existing data keeps working.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		prn TEXT,
		class_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS faculty (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		department TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_sessions (
		id UUID PRIMARY KEY,
		class_id TEXT NOT NULL,
		faculty_id UUID NOT NULL,
		session_name TEXT NOT NULL,
		session_date DATE NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ NOT NULL,
		location_latitude DOUBLE PRECISION,
		location_longitude DOUBLE PRECISION,
		geo_fence_radius DOUBLE PRECISION NOT NULL DEFAULT 100,
		require_face_recognition BOOLEAN NOT NULL DEFAULT TRUE,
		require_geo_fencing BOOLEAN NOT NULL DEFAULT TRUE,
		require_liveness_detection BOOLEAN NOT NULL DEFAULT TRUE,
		status TEXT NOT NULL DEFAULT 'active',
		ended_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS student_attendance (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		student_id UUID NOT NULL,
		attendance_status TEXT NOT NULL,
		marked_at TIMESTAMPTZ NOT NULL,
		face_verified BOOLEAN NOT NULL DEFAULT FALSE,
		geo_location_verified BOOLEAN NOT NULL DEFAULT FALSE,
		liveness_verified BOOLEAN NOT NULL DEFAULT FALSE,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		distance_from_center DOUBLE PRECISION,
		face_confidence_score DOUBLE PRECISION,
		liveness_score DOUBLE PRECISION,
		device_info TEXT,
		ip_address TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, student_id)
	)`,
	`CREATE TABLE IF NOT EXISTS faculty_attendance (
		id UUID PRIMARY KEY,
		session_id UUID NOT NULL,
		faculty_id UUID NOT NULL,
		attendance_status TEXT NOT NULL,
		marked_at TIMESTAMPTZ NOT NULL,
		face_verified BOOLEAN NOT NULL DEFAULT FALSE,
		geo_location_verified BOOLEAN NOT NULL DEFAULT FALSE,
		liveness_verified BOOLEAN NOT NULL DEFAULT FALSE,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		distance_from_center DOUBLE PRECISION,
		face_confidence_score DOUBLE PRECISION,
		liveness_score DOUBLE PRECISION,
		device_info TEXT,
		ip_address TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (session_id, faculty_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pending_registrations (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		role TEXT NOT NULL,
		name TEXT NOT NULL,
		prn TEXT,
		class_id TEXT,
		department TEXT,
		status TEXT NOT NULL DEFAULT 'pending',
		rejection_reason TEXT,
		reviewed_at TIMESTAMPTZ,
		reviewed_by TEXT,
		submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_faculty ON attendance_sessions (faculty_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_class ON attendance_sessions (class_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_pending_status ON pending_registrations (status)`,
}

// EnsureSchema creates missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
