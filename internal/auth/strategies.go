package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/practicheck/practicheck/internal/shared"
)

var emailFolder = cases.Fold()

// NormalizeEmail lowercases an address for case-insensitive comparison.
func NormalizeEmail(email string) string {
	return emailFolder.String(email)
}

// Login authenticates credentials under the strategy belonging to role. All
// failure modes except an ambiguous credential collapse into
// ErrInvalidCredentials; the precise cause is wrapped for server-side logs
// but must never reach the client.
func (s *Service) Login(ctx context.Context, role shared.Role, creds Credentials) (*LoginResult, error) {
	switch role {
	case shared.RoleStudent:
		return s.loginStudent(ctx, creds)
	case shared.RoleLecturer:
		return s.loginLecturer(ctx, creds)
	case shared.RoleSupervisor, shared.RolePlatformAdmin:
		return s.loginGlobal(ctx, role, creds)
	case shared.RoleFacultyAdmin, shared.RoleUniversityAdmin:
		return s.loginTenantAdmin(ctx, role, creds)
	default:
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrInvalidCredentials, role)
	}
}

func (s *Service) loginStudent(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if creds.StudentID == "" || creds.TenantID == nil {
		return nil, fmt.Errorf("%w: student login requires student_id and tenant", shared.ErrInvalidCredentials)
	}
	if err := s.requireActiveTenant(ctx, *creds.TenantID); err != nil {
		return nil, err
	}

	user, profile, err := s.repo.FindStudent(ctx, creds.StudentID, *creds.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.hasher.verifyAgainstMissing(creds.Password)
			return nil, fmt.Errorf("%w: unknown student", shared.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.verifyPassword(user, creds.Password); err != nil {
		return nil, err
	}

	result, err := s.finishLogin(ctx, user, Claims{StudentID: profile.StudentID})
	if err != nil {
		return nil, err
	}
	result.User.Profile = profile
	return result, nil
}

func (s *Service) loginLecturer(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if creds.StaffID == "" || creds.TenantID == nil {
		return nil, fmt.Errorf("%w: lecturer login requires staff_id and tenant", shared.ErrInvalidCredentials)
	}
	if err := s.requireActiveTenant(ctx, *creds.TenantID); err != nil {
		return nil, err
	}

	user, profile, err := s.repo.FindLecturer(ctx, creds.StaffID, *creds.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.hasher.verifyAgainstMissing(creds.Password)
			return nil, fmt.Errorf("%w: unknown lecturer", shared.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.verifyPassword(user, creds.Password); err != nil {
		return nil, err
	}

	result, err := s.finishLogin(ctx, user, Claims{StaffID: profile.StaffID})
	if err != nil {
		return nil, err
	}
	// Lecturers provisioned with a generated password must be told to rotate
	// it on first login.
	temp := user.IsPasswordTemporary
	result.User.IsPasswordTemporary = &temp
	result.User.Profile = profile
	return result, nil
}

// loginGlobal covers roles identified by email alone, with no tenant scope.
func (s *Service) loginGlobal(ctx context.Context, role shared.Role, creds Credentials) (*LoginResult, error) {
	if creds.Email == "" {
		return nil, fmt.Errorf("%w: %s login requires email", shared.ErrInvalidCredentials, role)
	}

	users, err := s.repo.FindByEmailRole(ctx, NormalizeEmail(creds.Email), role)
	if err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		s.hasher.verifyAgainstMissing(creds.Password)
		return nil, fmt.Errorf("%w: unknown %s", shared.ErrInvalidCredentials, role)
	case 1:
	default:
		return nil, fmt.Errorf("%w: email %q matches multiple %s accounts", shared.ErrAmbiguousCredential, creds.Email, role)
	}

	user := users[0]
	if err := s.verifyPassword(&user, creds.Password); err != nil {
		return nil, err
	}

	result, err := s.finishLogin(ctx, &user, Claims{})
	if err != nil {
		return nil, err
	}
	if role == shared.RoleSupervisor {
		if profile, err := s.repo.GetSupervisorProfile(ctx, user.ID); err == nil {
			result.User.Profile = profile
		}
	}
	return result, nil
}

// loginTenantAdmin covers faculty and university admins: email within role,
// and the account's tenant must be active.
func (s *Service) loginTenantAdmin(ctx context.Context, role shared.Role, creds Credentials) (*LoginResult, error) {
	if creds.Email == "" {
		return nil, fmt.Errorf("%w: %s login requires email", shared.ErrInvalidCredentials, role)
	}

	users, err := s.repo.FindByEmailRole(ctx, NormalizeEmail(creds.Email), role)
	if err != nil {
		return nil, err
	}
	switch len(users) {
	case 0:
		s.hasher.verifyAgainstMissing(creds.Password)
		return nil, fmt.Errorf("%w: unknown %s", shared.ErrInvalidCredentials, role)
	case 1:
	default:
		return nil, fmt.Errorf("%w: email %q matches multiple %s accounts", shared.ErrAmbiguousCredential, creds.Email, role)
	}

	user := users[0]
	if user.TenantID == nil {
		return nil, fmt.Errorf("%w: %s account without tenant", shared.ErrInvalidCredentials, role)
	}
	if err := s.requireActiveTenant(ctx, *user.TenantID); err != nil {
		return nil, err
	}
	if err := s.verifyPassword(&user, creds.Password); err != nil {
		return nil, err
	}

	result, err := s.finishLogin(ctx, &user, Claims{})
	if err != nil {
		return nil, err
	}
	if profile, err := s.repo.GetAdminProfile(ctx, user.ID, role); err == nil {
		result.User.Profile = profile
	}
	return result, nil
}

func (s *Service) requireActiveTenant(ctx context.Context, tenantID uuid.UUID) error {
	active, err := s.repo.TenantActive(ctx, tenantID)
	if err != nil {
		return err
	}
	if !active {
		return fmt.Errorf("%w: tenant %s not active", shared.ErrInvalidCredentials, tenantID)
	}
	return nil
}

// verifyPassword checks the stored hash. Accounts still in the provisioned
// state (no password set) can never authenticate.
func (s *Service) verifyPassword(user *User, plaintext string) error {
	if user.PasswordHash == nil || *user.PasswordHash == "" {
		s.hasher.verifyAgainstMissing(plaintext)
		return fmt.Errorf("%w: account has no password", shared.ErrInvalidCredentials)
	}
	ok, err := s.hasher.Verify(plaintext, *user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: password mismatch", shared.ErrInvalidCredentials)
	}
	return nil
}
