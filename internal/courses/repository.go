package courses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practicheck/practicheck/internal/shared"
)

// Repository defines persistence operations for courses.
type Repository interface {
	Create(ctx context.Context, c *Course) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Course, error)
	ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID) ([]Course, error)
	Update(ctx context.Context, c *Course) error
	SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const courseColumns = `id, tenant_id, faculty_id, name, code, duration_years, is_active, created_at, updated_at`

func scanCourse(row pgx.Row) (*Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.TenantID, &c.FacultyID, &c.Name, &c.Code, &c.DurationYears,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) Create(ctx context.Context, c *Course) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO courses (tenant_id, faculty_id, name, code, duration_years, is_active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING id, created_at, updated_at`,
		c.TenantID, c.FacultyID, c.Name, c.Code, c.DurationYears).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntry
		}
		return fmt.Errorf("courses: create: %w", err)
	}
	c.IsActive = true
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Course, error) {
	c, err := scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("courses: get: %w", err)
	}
	return c, nil
}

func (r *PGRepository) ListByFaculty(ctx context.Context, tenantID, facultyID uuid.UUID) ([]Course, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE tenant_id = $1 AND faculty_id = $2 ORDER BY name`,
		tenantID, facultyID)
	if err != nil {
		return nil, fmt.Errorf("courses: list: %w", err)
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("courses: scan: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, c *Course) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE courses SET name = $1, duration_years = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4`,
		c.Name, c.DurationYears, c.ID, c.TenantID)
	if err != nil {
		return fmt.Errorf("courses: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses SET is_active = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3`,
		active, id, tenantID)
	if err != nil {
		return fmt.Errorf("courses: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
