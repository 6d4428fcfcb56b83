package faculties

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

// Repository defines persistence operations for faculties.
type Repository interface {
	CreateWithAdmin(ctx context.Context, f *Faculty, adminEmail, adminName, passwordHash string) (*ProvisionedAdmin, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Faculty, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Faculty, error)
	Update(ctx context.Context, f *Faculty) error
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

const facultyColumns = `id, tenant_id, name, code, description, is_active, created_at, updated_at`

func scanFaculty(row pgx.Row) (*Faculty, error) {
	var f Faculty
	err := row.Scan(&f.ID, &f.TenantID, &f.Name, &f.Code, &f.Description, &f.IsActive, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateWithAdmin inserts the faculty and its provisioned admin account in
// one transaction. Either both exist afterwards or neither does.
func (r *PGRepository) CreateWithAdmin(ctx context.Context, f *Faculty, adminEmail, adminName, passwordHash string) (*ProvisionedAdmin, error) {
	var admin ProvisionedAdmin
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO faculties (tenant_id, name, code, description, is_active)
			VALUES ($1, $2, $3, $4, true)
			RETURNING id, created_at, updated_at`,
			f.TenantID, f.Name, f.Code, f.Description).
			Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return fmt.Errorf("faculties: insert: %w", err)
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, name, role, tenant_id, faculty_id, is_active, is_password_temporary)
			VALUES ($1, $2, $3, 'faculty_admin', $4, $5, true, true)
			RETURNING id`,
			adminEmail, passwordHash, adminName, f.TenantID, f.ID).
			Scan(&admin.UserID)
		if err != nil {
			return fmt.Errorf("faculties: insert admin: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO faculty_admin_profiles (user_id, staff_id, phone, office_location)
			VALUES ($1, '', '', '')`,
			admin.UserID)
		if err != nil {
			return fmt.Errorf("faculties: insert admin profile: %w", err)
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, shared.ErrDuplicateEntry
		}
		return nil, err
	}
	f.IsActive = true
	admin.Email = adminEmail
	admin.Name = adminName
	return &admin, nil
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Faculty, error) {
	f, err := scanFaculty(r.pool.QueryRow(ctx,
		`SELECT `+facultyColumns+` FROM faculties WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("faculties: get: %w", err)
	}
	return f, nil
}

func (r *PGRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]Faculty, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+facultyColumns+` FROM faculties WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("faculties: list: %w", err)
	}
	defer rows.Close()

	var out []Faculty
	for rows.Next() {
		f, err := scanFaculty(rows)
		if err != nil {
			return nil, fmt.Errorf("faculties: scan: %w", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func (r *PGRepository) Update(ctx context.Context, f *Faculty) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE faculties SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND tenant_id = $4`,
		f.Name, f.Description, f.ID, f.TenantID)
	if err != nil {
		return fmt.Errorf("faculties: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, tenantID, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE faculties SET is_active = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3`,
		active, id, tenantID)
	if err != nil {
		return fmt.Errorf("faculties: set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
