package lecturers

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

// Repository defines persistence operations for lecturer records.
type Repository interface {
	Provision(ctx context.Context, tenantID uuid.UUID, l *Lecturer, passwordHash string) error
	ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID, p shared.Pagination) ([]Lecturer, int, error)
	GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Lecturer, error)
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

// Provision inserts the lecturer user with a temporary password and the
// profile with its capacity, in one transaction.
func (r *PGRepository) Provision(ctx context.Context, tenantID uuid.UUID, l *Lecturer, passwordHash string) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, name, role, tenant_id, faculty_id, is_active, is_password_temporary)
			VALUES ($1, $2, $3, 'lecturer', $4, $5, true, true)
			RETURNING id, created_at`,
			l.Email, passwordHash, l.Name, tenantID, l.FacultyID).
			Scan(&l.UserID, &l.CreatedAt)
		if err != nil {
			return fmt.Errorf("lecturers: insert user: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO lecturer_profiles (user_id, staff_id, tenant_id, department, specialization, office_location, max_students, current_students)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 0)`,
			l.UserID, l.StaffID, tenantID, l.Department, l.Specialization, l.OfficeLocation, l.MaxStudents)
		if err != nil {
			return fmt.Errorf("lecturers: insert profile: %w", err)
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
	l.IsActive = true
	return nil
}

const lecturerSelect = `
	SELECT u.id, u.email, u.name, lp.staff_id, u.faculty_id,
	       lp.department, lp.specialization, lp.office_location,
	       lp.max_students, lp.current_students, u.is_active, u.created_at
	FROM users u
	JOIN lecturer_profiles lp ON u.id = lp.user_id`

func scanLecturer(row pgx.Row) (*Lecturer, error) {
	var l Lecturer
	err := row.Scan(&l.UserID, &l.Email, &l.Name, &l.StaffID, &l.FacultyID,
		&l.Department, &l.Specialization, &l.OfficeLocation,
		&l.MaxStudents, &l.CurrentStudents, &l.IsActive, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID, p shared.Pagination) ([]Lecturer, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM users u JOIN lecturer_profiles lp ON u.id = lp.user_id
		WHERE u.tenant_id = $1 AND u.faculty_id = $2 AND u.role = 'lecturer'`,
		tenantID, facultyID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("lecturers: count: %w", err)
	}

	rows, err := r.pool.Query(ctx, lecturerSelect+`
		WHERE u.tenant_id = $1 AND u.faculty_id = $2 AND u.role = 'lecturer'
		ORDER BY lp.staff_id LIMIT $3 OFFSET $4`,
		tenantID, facultyID, p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("lecturers: list: %w", err)
	}
	defer rows.Close()

	var out []Lecturer
	for rows.Next() {
		l, err := scanLecturer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("lecturers: scan: %w", err)
		}
		out = append(out, *l)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) GetByUserID(ctx context.Context, tenantID, userID uuid.UUID) (*Lecturer, error) {
	l, err := scanLecturer(r.pool.QueryRow(ctx, lecturerSelect+`
		WHERE u.id = $1 AND u.tenant_id = $2 AND u.role = 'lecturer'`, userID, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("lecturers: get: %w", err)
	}
	return l, nil
}

func (r *PGRepository) SetActive(ctx context.Context, tenantID, userID uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2 AND tenant_id = $3 AND role = 'lecturer'`,
		active, userID, tenantID)
	if err != nil {
		return fmt.Errorf("lecturers: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
