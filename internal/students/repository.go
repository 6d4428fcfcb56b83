package students

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practicheck/practicheck/internal/platform/db"
	"github.com/practicheck/practicheck/internal/shared"
)

// Repository defines persistence operations for student records.
type Repository interface {
	PreRegister(ctx context.Context, tenantID uuid.UUID, s *Student) error
	ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID, p shared.Pagination) ([]Student, int, error)
	GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Student, error)
	SetActive(ctx context.Context, tenantID, userID uuid.UUID, active bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// PreRegister inserts a provisioned student: a user row with no password and
// the profile carrying the tenant-scoped student number. Both the email and
// the (tenant, student_id) pair are unique.
func (r *PGRepository) PreRegister(ctx context.Context, tenantID uuid.UUID, s *Student) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, name, role, tenant_id, faculty_id, is_active, is_password_temporary)
			VALUES ($1, NULL, $2, 'student', $3, $4, true, false)
			RETURNING id, created_at`,
			s.Email, s.Name, tenantID, s.FacultyID).
			Scan(&s.UserID, &s.CreatedAt)
		if err != nil {
			return fmt.Errorf("students: insert user: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO student_profiles (user_id, student_id, faculty_id, course_id, program, year_of_study)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			s.UserID, s.StudentID, s.FacultyID, s.CourseID, s.Program, s.YearOfStudy)
		if err != nil {
			return fmt.Errorf("students: insert profile: %w", err)
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntry
		}
		return err
	}
	s.IsActive = true
	return nil
}

const studentSelect = `
	SELECT u.id, u.email, u.name, sp.student_id, sp.faculty_id, sp.course_id,
	       sp.program, sp.year_of_study,
	       u.password_hash IS NOT NULL AND u.password_hash <> '',
	       u.is_active, u.created_at
	FROM users u
	JOIN student_profiles sp ON u.id = sp.user_id`

func scanStudent(row pgx.Row) (*Student, error) {
	var s Student
	err := row.Scan(&s.UserID, &s.Email, &s.Name, &s.StudentID, &s.FacultyID, &s.CourseID,
		&s.Program, &s.YearOfStudy, &s.Registered, &s.IsActive, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID, p shared.Pagination) ([]Student, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM users u JOIN student_profiles sp ON u.id = sp.user_id
		WHERE u.tenant_id = $1 AND sp.faculty_id = $2 AND u.role = 'student'`,
		tenantID, facultyID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("students: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, studentSelect+`
		WHERE u.tenant_id = $1 AND sp.faculty_id = $2 AND u.role = 'student'
		ORDER BY sp.student_id LIMIT $3 OFFSET $4`,
		tenantID, facultyID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("students: list: %w", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("students: scan: %w", err)
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Student, error) {
	s, err := scanStudent(r.pool.QueryRow(ctx, studentSelect+`
		WHERE u.id = $1 AND u.tenant_id = $2 AND u.role = 'student'`, userID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("students: get: %w", err)
	}
	return s, nil
}

func (r *PGRepository) SetActive(ctx context.Context, tenantID, userID uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND role = 'student'`,
		active, userID, tenantID)
	if err != nil {
		return fmt.Errorf("students: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
