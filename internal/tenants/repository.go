package tenants

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

// Repository defines persistence operations for tenants and the public
// directory read models.
type Repository interface {
	Create(ctx context.Context, t *Tenant) error
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	List(ctx context.Context, p shared.Pagination) ([]Tenant, int, error)
	Update(ctx context.Context, t *Tenant) error
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error

	ActiveUniversities(ctx context.Context) ([]DirectoryUniversity, error)
	FacultiesOf(ctx context.Context, tenantID uuid.UUID) ([]DirectoryFaculty, error)
	CoursesOf(ctx context.Context, facultyID uuid.UUID) ([]DirectoryCourse, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const tenantColumns = `id, name, location, domain, status, plan, monthly_fee, health_score, created_at, updated_at`

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Location, &t.Domain, &t.Status, &t.Plan,
		&t.MonthlyFee, &t.HealthScore, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PGRepository) Create(ctx context.Context, t *Tenant) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO tenants (name, location, domain, status, plan, monthly_fee, health_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		t.Name, t.Location, t.Domain, t.Status, t.Plan, t.MonthlyFee, t.HealthScore).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntry
		}
		return fmt.Errorf("tenants: create: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	t, err := scanTenant(r.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("tenants: get: %w", err)
	}
	return t, nil
}

func (r *PGRepository) List(ctx context.Context, p shared.Pagination) ([]Tenant, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tenants`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("tenants: count: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY name LIMIT $1 OFFSET $2`,
		p.PerPage, p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("tenants: list: %w", err)
	}
	defer rows.Close()

	var out []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("tenants: scan: %w", err)
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, t *Tenant) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tenants
		SET name = $1, location = $2, domain = $3, plan = $4, monthly_fee = $5, health_score = $6, updated_at = NOW()
		WHERE id = $7`,
		t.Name, t.Location, t.Domain, t.Plan, t.MonthlyFee, t.HealthScore, t.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntry
		}
		return fmt.Errorf("tenants: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE tenants SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("tenants: set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ActiveUniversities(ctx context.Context) ([]DirectoryUniversity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, location FROM tenants WHERE status = 'active' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("tenants: directory: %w", err)
	}
	defer rows.Close()

	var out []DirectoryUniversity
	for rows.Next() {
		var u DirectoryUniversity
		if err := rows.Scan(&u.ID, &u.Name, &u.Location); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepository) FacultiesOf(ctx context.Context, tenantID uuid.UUID) ([]DirectoryFaculty, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT f.id, f.name, f.code
		FROM faculties f
		JOIN tenants t ON f.tenant_id = t.id
		WHERE f.tenant_id = $1 AND t.status = 'active' AND f.is_active = true
		ORDER BY f.name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("tenants: faculties: %w", err)
	}
	defer rows.Close()

	var out []DirectoryFaculty
	for rows.Next() {
		var f DirectoryFaculty
		if err := rows.Scan(&f.ID, &f.Name, &f.Code); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepository) CoursesOf(ctx context.Context, facultyID uuid.UUID) ([]DirectoryCourse, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, c.code
		FROM courses c
		JOIN faculties f ON c.faculty_id = f.id
		JOIN tenants t ON f.tenant_id = t.id
		WHERE c.faculty_id = $1 AND t.status = 'active' AND c.is_active = true
		ORDER BY c.name`, facultyID)
	if err != nil {
		return nil, fmt.Errorf("tenants: courses: %w", err)
	}
	defer rows.Close()

	var out []DirectoryCourse
	for rows.Next() {
		var c DirectoryCourse
		if err := rows.Scan(&c.ID, &c.Name, &c.Code); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
