package assessments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practicheck/practicheck/internal/platform/db"
	"github.com/practicheck/practicheck/internal/shared"
)

// Repository defines persistence operations for assessment requests and
// lecturer assignments. The ForUpdate methods run inside the assignment
// transaction and take row locks.
type Repository interface {
	WithinTx(ctx context.Context, fn func(pgx.Tx) error) error

	CreateRequest(ctx context.Context, req *Request) error
	ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Request, error)
	ListPendingForFaculty(ctx context.Context, tenantID, facultyID uuid.UUID) ([]Request, error)

	GetRequestForUpdate(ctx context.Context, tx pgx.Tx, tenantID, requestID uuid.UUID) (*Request, error)
	GetLecturerForUpdate(ctx context.Context, tx pgx.Tx, tenantID, lecturerID uuid.UUID) (*lecturerCapacity, error)
	MarkAssigned(ctx context.Context, tx pgx.Tx, requestID, lecturerID uuid.UUID) error
	UpsertAssignment(ctx context.Context, tx pgx.Tx, a *Assignment) error
	RecountLecturerLoad(ctx context.Context, tx pgx.Tx, lecturerID uuid.UUID) (int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// WithinTx runs fn in a transaction on the repository's pool.
func (r *PGRepository) WithinTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

const requestColumns = `id, tenant_id, student_id, faculty_id, assessment_type, status,
	preferred_date, location, notes, assigned_lecturer_id, created_at, updated_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	err := row.Scan(&req.ID, &req.TenantID, &req.StudentID, &req.FacultyID, &req.AssessmentType,
		&req.Status, &req.PreferredDate, &req.Location, &req.Notes, &req.AssignedLecturerID,
		&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PGRepository) CreateRequest(ctx context.Context, req *Request) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO assessment_requests (tenant_id, student_id, faculty_id, assessment_type, status, preferred_date, location, notes)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		req.TenantID, req.StudentID, req.FacultyID, req.AssessmentType,
		req.PreferredDate, req.Location, req.Notes).
		Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("assessments: create request: %w", err)
	}
	req.Status = StatusPending
	return nil
}

func (r *PGRepository) ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]Request, error) {
	return r.listRequests(ctx, `
		SELECT `+requestColumns+` FROM assessment_requests
		WHERE tenant_id = $1 AND student_id = $2 ORDER BY created_at DESC`,
		tenantID, studentID)
}

func (r *PGRepository) ListPendingForFaculty(ctx context.Context, tenantID, facultyID uuid.UUID) ([]Request, error) {
	return r.listRequests(ctx, `
		SELECT `+requestColumns+` FROM assessment_requests
		WHERE tenant_id = $1 AND faculty_id = $2 AND status = 'pending' ORDER BY created_at`,
		tenantID, facultyID)
}

func (r *PGRepository) listRequests(ctx context.Context, query string, args ...any) ([]Request, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("assessments: list requests: %w", err)
	}
	defer rows.Close()

	var out []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("assessments: scan request: %w", err)
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// GetRequestForUpdate locks the request row for the assignment transaction.
func (r *PGRepository) GetRequestForUpdate(ctx context.Context, tx pgx.Tx, tenantID, requestID uuid.UUID) (*Request, error) {
	req, err := scanRequest(tx.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM assessment_requests
		WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, requestID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("assessments: lock request: %w", err)
	}
	return req, nil
}

// GetLecturerForUpdate locks the lecturer's capacity row so two concurrent
// assignments cannot both read the same count.
func (r *PGRepository) GetLecturerForUpdate(ctx context.Context, tx pgx.Tx, tenantID, lecturerID uuid.UUID) (*lecturerCapacity, error) {
	var c lecturerCapacity
	err := tx.QueryRow(ctx, `
		SELECT u.id, u.tenant_id, u.faculty_id, lp.max_students, lp.current_students, u.is_active
		FROM users u
		JOIN lecturer_profiles lp ON u.id = lp.user_id
		WHERE u.id = $1 AND u.tenant_id = $2 AND u.role = 'lecturer'
		FOR UPDATE OF lp`, lecturerID, tenantID).
		Scan(&c.UserID, &c.TenantID, &c.FacultyID, &c.MaxStudents, &c.CurrentStudents, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("assessments: lock lecturer: %w", err)
	}
	return &c, nil
}

func (r *PGRepository) MarkAssigned(ctx context.Context, tx pgx.Tx, requestID, lecturerID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE assessment_requests
		SET status = 'assigned', assigned_lecturer_id = $1, updated_at = NOW()
		WHERE id = $2`, lecturerID, requestID)
	if err != nil {
		return fmt.Errorf("assessments: mark assigned: %w", err)
	}
	return nil
}

// UpsertAssignment inserts the assignment or reactivates a previously
// deactivated one for the same tuple.
func (r *PGRepository) UpsertAssignment(ctx context.Context, tx pgx.Tx, a *Assignment) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO lecturer_assignments (tenant_id, student_id, lecturer_id, assessment_type, is_active, assigned_at)
		VALUES ($1, $2, $3, $4, true, NOW())
		ON CONFLICT (tenant_id, student_id, lecturer_id, assessment_type)
		DO UPDATE SET is_active = true, assigned_at = NOW()
		RETURNING id, assigned_at`,
		a.TenantID, a.StudentID, a.LecturerID, a.AssessmentType).
		Scan(&a.ID, &a.AssignedAt)
	if err != nil {
		return fmt.Errorf("assessments: upsert assignment: %w", err)
	}
	a.IsActive = true
	return nil
}

// RecountLecturerLoad refreshes current_students from the live assignment
// rows rather than incrementing, so the counter self-heals.
func (r *PGRepository) RecountLecturerLoad(ctx context.Context, tx pgx.Tx, lecturerID uuid.UUID) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `
		UPDATE lecturer_profiles
		SET current_students = (
			SELECT COUNT(DISTINCT student_id)
			FROM lecturer_assignments
			WHERE lecturer_id = $1 AND is_active = true
		)
		WHERE user_id = $1
		RETURNING current_students`, lecturerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("assessments: recount load: %w", err)
	}
	return count, nil
}

var _ Repository = (*PGRepository)(nil)
