package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// PostgresLedger persists attendance records, partitioned by subject kind
// into student_attendance and faculty_attendance as in the source schema.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a ledger over db.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func tableFor(kind SubjectKind) (table, subjectCol string, err error) {
	switch kind {
	case SubjectStudent:
		return "student_attendance", "student_id", nil
	case SubjectFaculty:
		return "faculty_attendance", "faculty_id", nil
	default:
		return "", "", fmt.Errorf("unknown subject kind %q", kind)
	}
}

// Upsert writes the record in one INSERT ... ON CONFLICT statement. The
// unique (session_id, subject) index makes concurrent submissions for the
// same subject serialize inside Postgres instead of racing in two round
// trips.
func (p *PostgresLedger) Upsert(ctx context.Context, rec Record) (Record, error) {
	table, subjectCol, err := tableFor(rec.SubjectKind)
	if err != nil {
		return Record{}, err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	query := `
		INSERT INTO ` + table + `
			(id, session_id, ` + subjectCol + `, attendance_status, marked_at,
			 face_verified, geo_location_verified, liveness_verified,
			 latitude, longitude, distance_from_center,
			 face_confidence_score, liveness_score, device_info, ip_address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		ON CONFLICT (session_id, ` + subjectCol + `) DO UPDATE SET
			attendance_status = EXCLUDED.attendance_status,
			marked_at = EXCLUDED.marked_at,
			face_verified = EXCLUDED.face_verified,
			geo_location_verified = EXCLUDED.geo_location_verified,
			liveness_verified = EXCLUDED.liveness_verified,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			distance_from_center = EXCLUDED.distance_from_center,
			face_confidence_score = EXCLUDED.face_confidence_score,
			liveness_score = EXCLUDED.liveness_score,
			device_info = EXCLUDED.device_info,
			ip_address = EXCLUDED.ip_address,
			updated_at = NOW()
		RETURNING id, updated_at`

	row := p.db.QueryRowContext(ctx, query,
		rec.ID, rec.SessionID, rec.SubjectID, rec.Status, rec.MarkedAt,
		rec.FaceVerified, rec.GeoVerified, rec.LivenessVerified,
		rec.Latitude, rec.Longitude, rec.DistanceM,
		rec.FaceScore, rec.LivenessScore, rec.DeviceInfo, rec.IPAddress)
	if err := row.Scan(&rec.ID, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns one subject's record for a session.
func (p *PostgresLedger) Get(ctx context.Context, sessionID, subjectID string, kind SubjectKind) (Record, error) {
	table, subjectCol, err := tableFor(kind)
	if err != nil {
		return Record{}, err
	}
	row := p.db.QueryRowContext(ctx, `
		SELECT id, session_id, `+subjectCol+`, attendance_status, marked_at,
			face_verified, geo_location_verified, liveness_verified,
			latitude, longitude, distance_from_center,
			face_confidence_score, liveness_score, device_info, ip_address, updated_at
		FROM `+table+` WHERE session_id = $1 AND `+subjectCol+` = $2
	`, sessionID, subjectID)
	rec, err := scanRecord(row, kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

// ListBySession returns student and faculty records for a session.
func (p *PostgresLedger) ListBySession(ctx context.Context, sessionID string) ([]Record, error) {
	var out []Record
	for _, kind := range []SubjectKind{SubjectStudent, SubjectFaculty} {
		table, subjectCol, err := tableFor(kind)
		if err != nil {
			return nil, err
		}
		rows, err := p.db.QueryContext(ctx, `
			SELECT id, session_id, `+subjectCol+`, attendance_status, marked_at,
				face_verified, geo_location_verified, liveness_verified,
				latitude, longitude, distance_from_center,
				face_confidence_score, liveness_score, device_info, ip_address, updated_at
			FROM `+table+` WHERE session_id = $1 ORDER BY `+subjectCol,
			sessionID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			rec, err := scanRecord(rows, kind)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, rec)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner, kind SubjectKind) (Record, error) {
	var rec Record
	var device, ip sql.NullString
	if err := row.Scan(&rec.ID, &rec.SessionID, &rec.SubjectID, &rec.Status, &rec.MarkedAt,
		&rec.FaceVerified, &rec.GeoVerified, &rec.LivenessVerified,
		&rec.Latitude, &rec.Longitude, &rec.DistanceM,
		&rec.FaceScore, &rec.LivenessScore, &device, &ip, &rec.UpdatedAt); err != nil {
		return Record{}, err
	}
	rec.SubjectKind = kind
	rec.DeviceInfo = device.String
	rec.IPAddress = ip.String
	return rec, nil
}
