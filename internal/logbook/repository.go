package logbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/practicheck/practicheck/internal/shared"
)

// Repository defines persistence operations for logbook entries.
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to *time.Time) ([]Entry, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const entryColumns = `id, tenant_id, student_id, entry_date, activities, skills_gained, challenges, is_edited, created_at, updated_at`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.TenantID, &e.StudentID, &e.EntryDate, &e.Activities,
		&e.SkillsGained, &e.Challenges, &e.IsEdited, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts an entry. The (student_id, entry_date) unique constraint
// turns a second entry for the same day into ErrDuplicateEntry.
func (r *PGRepository) Create(ctx context.Context, e *Entry) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO logbook_entries (tenant_id, student_id, entry_date, activities, skills_gained, challenges, is_edited)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id, created_at, updated_at`,
		e.TenantID, e.StudentID, e.EntryDate, e.Activities, e.SkillsGained, e.Challenges).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrDuplicateEntry
		}
		return fmt.Errorf("logbook: create: %w", err)
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*Entry, error) {
	e, err := scanEntry(r.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM logbook_entries WHERE id = $1 AND tenant_id = $2`, id, tenantID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("logbook: get: %w", err)
	}
	return e, nil
}

// Update writes the revision and flips is_edited in one statement guarded on
// is_edited = false, so a raced second edit loses.
func (r *PGRepository) Update(ctx context.Context, e *Entry) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE logbook_entries
		SET activities = $1, skills_gained = $2, challenges = $3, is_edited = true, updated_at = NOW()
		WHERE id = $4 AND tenant_id = $5 AND is_edited = false`,
		e.Activities, e.SkillsGained, e.Challenges, e.ID, e.TenantID)
	if err != nil {
		return fmt.Errorf("logbook: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrAlreadyEdited
	}
	e.IsEdited = true
	return nil
}

func (r *PGRepository) ListForStudent(ctx context.Context, tenantID, studentID uuid.UUID, from, to *time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM logbook_entries WHERE tenant_id = $1 AND student_id = $2`
	args := []any{tenantID, studentID}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND entry_date >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND entry_date <= $%d", len(args))
	}
	query += " ORDER BY entry_date DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("logbook: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("logbook: scan: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
