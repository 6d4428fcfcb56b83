package auth

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

// RegistrationRecord is the read model backing student registration
// validation. It reflects what the university pre-registered for the email.
type RegistrationRecord struct {
	UserID         uuid.UUID
	StudentID      string
	FacultyID      uuid.UUID
	CourseID       uuid.UUID
	HasPassword    bool
	UniversityName string
	FacultyName    string
	CourseName     string
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindStudent(ctx context.Context, studentID string, tenantID uuid.UUID) (*User, *StudentProfile, error)
	FindLecturer(ctx context.Context, staffID string, tenantID uuid.UUID) (*User, *LecturerProfile, error)
	FindByEmailRole(ctx context.Context, email string, role shared.Role) ([]User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetSupervisorProfile(ctx context.Context, userID uuid.UUID) (*SupervisorProfile, error)
	GetAdminProfile(ctx context.Context, userID uuid.UUID, role shared.Role) (*AdminProfile, error)
	TenantActive(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	SetPassword(ctx context.Context, userID uuid.UUID, hash string, temporary bool) error
	CreateSupervisor(ctx context.Context, user User, hash string, profile SupervisorProfile) (uuid.UUID, error)
	FindRegistration(ctx context.Context, email string, tenantID uuid.UUID) (*RegistrationRecord, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `u.id, u.email, u.password_hash, u.name, u.role, u.tenant_id, u.faculty_id,
	u.is_active, u.is_password_temporary, u.last_login, u.created_at, u.updated_at`

func scanUser(row pgx.Row, withTenantName bool) (*User, error) {
	var u User
	dest := []any{&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.TenantID, &u.FacultyID,
		&u.IsActive, &u.IsPasswordTemporary, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt}
	if withTenantName {
		var tenantName *string
		dest = append(dest, &tenantName)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		if tenantName != nil {
			u.UniversityName = *tenantName
		}
		return &u, nil
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindStudent looks up an active student by the composite (student_id,
// tenant_id) key.
func (r *PGRepository) FindStudent(ctx context.Context, studentID string, tenantID uuid.UUID) (*User, *StudentProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, t.name,
		       sp.student_id, sp.faculty_id, sp.course_id, sp.program, sp.year_of_study
		FROM users u
		JOIN student_profiles sp ON u.id = sp.user_id
		JOIN tenants t ON u.tenant_id = t.id
		WHERE sp.student_id = $1 AND u.tenant_id = $2 AND u.role = 'student' AND u.is_active = true`,
		studentID, tenantID)

	var u User
	var tenantName *string
	var p StudentProfile
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.TenantID, &u.FacultyID,
		&u.IsActive, &u.IsPasswordTemporary, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &tenantName,
		&p.StudentID, &p.FacultyID, &p.CourseID, &p.Program, &p.YearOfStudy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, fmt.Errorf("auth: find student: %w", err)
	}
	if tenantName != nil {
		u.UniversityName = *tenantName
	}
	p.UserID = u.ID
	return &u, &p, nil
}

// FindLecturer looks up an active lecturer by the composite (staff_id,
// tenant_id) key.
func (r *PGRepository) FindLecturer(ctx context.Context, staffID string, tenantID uuid.UUID) (*User, *LecturerProfile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, t.name,
		       lp.staff_id, lp.department, lp.specialization, lp.office_location, lp.max_students, lp.current_students
		FROM users u
		JOIN lecturer_profiles lp ON u.id = lp.user_id
		JOIN tenants t ON u.tenant_id = t.id
		WHERE lp.staff_id = $1 AND u.tenant_id = $2 AND u.role = 'lecturer' AND u.is_active = true`,
		staffID, tenantID)

	var u User
	var tenantName *string
	var p LecturerProfile
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.TenantID, &u.FacultyID,
		&u.IsActive, &u.IsPasswordTemporary, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt, &tenantName,
		&p.StaffID, &p.Department, &p.Specialization, &p.OfficeLocation, &p.MaxStudents, &p.CurrentStudents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, fmt.Errorf("auth: find lecturer: %w", err)
	}
	if tenantName != nil {
		u.UniversityName = *tenantName
	}
	p.UserID = u.ID
	return &u, &p, nil
}

// FindByEmailRole returns every active user matching (email, role). More than
// one row means the credential is ambiguous; the caller decides.
func (r *PGRepository) FindByEmailRole(ctx context.Context, email string, role shared.Role) ([]User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`, t.name
		FROM users u
		LEFT JOIN tenants t ON u.tenant_id = t.id
		WHERE lower(u.email) = lower($1) AND u.role = $2 AND u.is_active = true
		LIMIT 3`,
		email, role)
	if err != nil {
		return nil, fmt.Errorf("auth: find by email: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows, true)
		if err != nil {
			return nil, fmt.Errorf("auth: scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// GetUserByID fetches a user row regardless of active flag; callers decide
// how to treat deactivated accounts.
func (r *PGRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`, t.name
		FROM users u
		LEFT JOIN tenants t ON u.tenant_id = t.id
		WHERE u.id = $1`, id)
	u, err := scanUser(row, true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: get user: %w", err)
	}
	return u, nil
}

// GetSupervisorProfile loads the supervisor extension row.
func (r *PGRepository) GetSupervisorProfile(ctx context.Context, userID uuid.UUID) (*SupervisorProfile, error) {
	var p SupervisorProfile
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, company_name, industry, position, phone, company_address, years_experience
		FROM supervisor_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.CompanyName, &p.Industry, &p.Position, &p.Phone, &p.CompanyAddress, &p.YearsExperience)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: get supervisor profile: %w", err)
	}
	return &p, nil
}

// GetAdminProfile loads the faculty or university admin extension row.
func (r *PGRepository) GetAdminProfile(ctx context.Context, userID uuid.UUID, role shared.Role) (*AdminProfile, error) {
	table := "university_admin_profiles"
	if role == shared.RoleFacultyAdmin {
		table = "faculty_admin_profiles"
	}
	var p AdminProfile
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, staff_id, phone, office_location FROM `+table+` WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.StaffID, &p.Phone, &p.OfficeLocation)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: get admin profile: %w", err)
	}
	return &p, nil
}

// TenantActive reports whether the tenant exists with status 'active'.
func (r *PGRepository) TenantActive(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tenants WHERE id = $1 AND status = 'active')`, id).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("auth: tenant active: %w", err)
	}
	return ok, nil
}

// UpdateLastLogin stamps the user's last successful authentication.
func (r *PGRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

// SetPassword replaces the stored hash and the temporary flag.
func (r *PGRepository) SetPassword(ctx context.Context, userID uuid.UUID, hash string, temporary bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $1, is_password_temporary = $2, updated_at = NOW() WHERE id = $3`,
		hash, temporary, userID)
	if err != nil {
		return fmt.Errorf("auth: set password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CreateSupervisor inserts the user and profile rows in one transaction.
func (r *PGRepository) CreateSupervisor(ctx context.Context, user User, hash string, profile SupervisorProfile) (uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role, is_active, is_password_temporary)
		VALUES ($1, $2, $3, 'supervisor', true, false)
		RETURNING id`,
		user.Email, hash, user.Name).Scan(&userID)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, shared.ErrDuplicateEntry
		}
		return uuid.Nil, fmt.Errorf("auth: insert supervisor: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO supervisor_profiles (user_id, company_name, industry, position, phone, company_address, years_experience)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		userID, profile.CompanyName, profile.Industry, profile.Position, profile.Phone, profile.CompanyAddress, profile.YearsExperience)
	if err != nil {
		return uuid.Nil, fmt.Errorf("auth: insert supervisor profile: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("auth: commit: %w", err)
	}
	return userID, nil
}

// FindRegistration loads the pre-registered student record for an email
// within one tenant, regardless of faculty/course, so the caller can compare
// against the applicant's selection.
func (r *PGRepository) FindRegistration(ctx context.Context, email string, tenantID uuid.UUID) (*RegistrationRecord, error) {
	var rec RegistrationRecord
	var hash *string
	err := r.pool.QueryRow(ctx, `
		SELECT u.id, u.password_hash, sp.student_id, sp.faculty_id, sp.course_id,
		       t.name, f.name, c.name
		FROM users u
		JOIN student_profiles sp ON u.id = sp.user_id
		JOIN tenants t ON u.tenant_id = t.id
		JOIN faculties f ON sp.faculty_id = f.id
		JOIN courses c ON sp.course_id = c.id
		WHERE lower(u.email) = lower($1) AND u.tenant_id = $2 AND u.role = 'student' AND u.is_active = true`,
		email, tenantID).
		Scan(&rec.UserID, &hash, &rec.StudentID, &rec.FacultyID, &rec.CourseID,
			&rec.UniversityName, &rec.FacultyName, &rec.CourseName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("auth: find registration: %w", err)
	}
	rec.HasPassword = hash != nil && *hash != ""
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repository = (*PGRepository)(nil)
