package registration

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// PostgresStore persists registrations in pending_registrations and migrates
// approved ones into students/faculty.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store over db.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const regColumns = `id, email, role, name, prn, class_id, department,
	status, rejection_reason, reviewed_at, reviewed_by, submitted_at`

// Create inserts a new pending registration.
func (p *PostgresStore) Create(ctx context.Context, reg PendingRegistration) (PendingRegistration, error) {
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	reg.Status = StatusPending
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO pending_registrations (id, email, role, name, prn, class_id, department, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'pending')
		RETURNING submitted_at
	`, reg.ID, reg.Email, reg.Role, reg.Name, nullable(reg.PRN), nullable(reg.ClassID), nullable(reg.Department))
	if err := row.Scan(&reg.SubmittedAt); err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return PendingRegistration{}, ErrDuplicateEmail
		}
		return PendingRegistration{}, err
	}
	return reg, nil
}

// Get returns a registration by id.
func (p *PostgresStore) Get(ctx context.Context, id string) (PendingRegistration, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+regColumns+` FROM pending_registrations WHERE id = $1`, id)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingRegistration{}, ErrNotFound
	}
	return reg, err
}

// ListByStatus returns registrations in the given state, oldest first.
func (p *PostgresStore) ListByStatus(ctx context.Context, status Status) ([]PendingRegistration, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+regColumns+` FROM pending_registrations WHERE status = $1 ORDER BY submitted_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PendingRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	return out, rows.Err()
}

// Approve flips status and inserts the subject row in one transaction. The
// conditional UPDATE on status='pending' makes a second concurrent review
// lose cleanly instead of double-migrating.
func (p *PostgresStore) Approve(ctx context.Context, id, reviewedBy string) (PendingRegistration, Subject, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return PendingRegistration{}, Subject{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		UPDATE pending_registrations
		SET status = 'approved', reviewed_at = NOW(), reviewed_by = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING `+regColumns, id, reviewedBy)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingRegistration{}, Subject{}, p.reviewConflict(ctx, id)
	}
	if err != nil {
		return PendingRegistration{}, Subject{}, err
	}

	subj := Subject{
		ID:         uuid.NewString(),
		Role:       reg.Role,
		Name:       reg.Name,
		Email:      reg.Email,
		PRN:        reg.PRN,
		ClassID:    reg.ClassID,
		Department: reg.Department,
	}
	if reg.Role == RoleFaculty {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO faculty (id, name, email, department)
			VALUES ($1,$2,$3,$4)
		`, subj.ID, subj.Name, subj.Email, nullable(subj.Department))
	} else {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO students (id, name, email, prn, class_id)
			VALUES ($1,$2,$3,$4,$5)
		`, subj.ID, subj.Name, subj.Email, nullable(subj.PRN), nullable(subj.ClassID))
	}
	if err != nil {
		return PendingRegistration{}, Subject{}, err
	}

	if err := tx.Commit(); err != nil {
		return PendingRegistration{}, Subject{}, err
	}
	return reg, subj, nil
}

// Reject flips a pending registration to rejected with its reason.
func (p *PostgresStore) Reject(ctx context.Context, id, reason, reviewedBy string) (PendingRegistration, error) {
	row := p.db.QueryRowContext(ctx, `
		UPDATE pending_registrations
		SET status = 'rejected', rejection_reason = $2, reviewed_at = NOW(), reviewed_by = $3
		WHERE id = $1 AND status = 'pending'
		RETURNING `+regColumns, id, reason, reviewedBy)
	reg, err := scanRegistration(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PendingRegistration{}, p.reviewConflict(ctx, id)
	}
	return reg, err
}

// FindSubjectByEmail looks the email up in students, then faculty.
func (p *PostgresStore) FindSubjectByEmail(ctx context.Context, email string) (Subject, error) {
	var subj Subject
	var prn, classID sql.NullString
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, email, prn, class_id FROM students WHERE email = $1`, email).
		Scan(&subj.ID, &subj.Name, &subj.Email, &prn, &classID)
	if err == nil {
		subj.Role = RoleStudent
		subj.PRN = prn.String
		subj.ClassID = classID.String
		return subj, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Subject{}, err
	}

	var dept sql.NullString
	err = p.db.QueryRowContext(ctx,
		`SELECT id, name, email, department FROM faculty WHERE email = $1`, email).
		Scan(&subj.ID, &subj.Name, &subj.Email, &dept)
	if errors.Is(err, sql.ErrNoRows) {
		return Subject{}, ErrSubjectNotFound
	}
	if err != nil {
		return Subject{}, err
	}
	subj.Role = RoleFaculty
	subj.Department = dept.String
	return subj, nil
}

// reviewConflict distinguishes a missing registration from one already in a
// terminal state.
func (p *PostgresStore) reviewConflict(ctx context.Context, id string) error {
	if _, err := p.Get(ctx, id); err != nil {
		return err
	}
	return ErrAlreadyReviewed
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (PendingRegistration, error) {
	var reg PendingRegistration
	var prn, classID, dept, reason, reviewedBy sql.NullString
	if err := row.Scan(&reg.ID, &reg.Email, &reg.Role, &reg.Name, &prn, &classID, &dept,
		&reg.Status, &reason, &reg.ReviewedAt, &reviewedBy, &reg.SubmittedAt); err != nil {
		return PendingRegistration{}, err
	}
	reg.PRN = prn.String
	reg.ClassID = classID.String
	reg.Department = dept.String
	reg.RejectionReason = reason.String
	reg.ReviewedBy = reviewedBy.String
	return reg, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
