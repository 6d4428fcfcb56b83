package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements authentication flows on top of the repository, the
// hasher and the token service.
type Service struct {
	repo   Repository
	hasher Hasher
	tokens *TokenService
	mailer shared.EmailEnqueuer
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the auth service.
func NewService(repo Repository, hasher Hasher, tokens *TokenService, mailer shared.EmailEnqueuer, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, mailer: mailer, audit: audit, logger: logger}
}

// finishLogin stamps last_login, issues the token and assembles the shared
// part of the response payload.
func (s *Service) finishLogin(ctx context.Context, user *User, claims Claims) (*LoginResult, error) {
	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("update last_login failed", "user_id", user.ID, "error", err)
	}

	claims.Email = user.Email
	claims.Role = user.Role
	claims.TenantID = user.TenantID
	token, err := s.tokens.Issue(user.ID, claims)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:     token,
		TokenType: "bearer",
		User: UserPayload{
			ID:             user.ID,
			Email:          user.Email,
			Name:           user.Name,
			Role:           user.Role,
			TenantID:       user.TenantID,
			UniversityName: user.UniversityName,
		},
	}, nil
}

// Resolve turns a raw token string into a live identity. The account is
// re-read on every call so deactivation takes effect immediately even while
// the token is still temporally valid.
func (s *Service) Resolve(ctx context.Context, tokenString string) (*shared.Identity, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject: %v", shared.ErrTokenInvalid, err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: user gone", shared.ErrUnauthorized)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", shared.ErrUnauthorized)
	}
	if user.Role.TenantScoped() && user.TenantID != nil {
		active, err := s.repo.TenantActive(ctx, *user.TenantID)
		if err != nil {
			return nil, err
		}
		if !active {
			return nil, fmt.Errorf("%w: tenant not active", shared.ErrUnauthorized)
		}
	}

	return &shared.Identity{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		TenantID:  user.TenantID,
		FacultyID: user.FacultyID,
	}, nil
}

// ChangePassword verifies the current password and replaces it, clearing the
// temporary flag. Used by lecturers rotating a provisioned password, but any
// authenticated account may call it.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.verifyPassword(user, current); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	if err := s.repo.SetPassword(ctx, userID, hash, false); err != nil {
		return err
	}
	s.recordActivity(ctx, user.TenantID, userID, "password.changed", "user", userID.String(), nil)
	return nil
}

// RegistrationValidation is the outcome of checking a student's claimed
// enrollment against what the university pre-registered.
type RegistrationValidation struct {
	Valid              bool       `json:"valid"`
	HasPassword        bool       `json:"has_password"`
	Message            string     `json:"message"`
	StudentID          string     `json:"student_id,omitempty"`
	UniversityName     string     `json:"university_name,omitempty"`
	FacultyName        string     `json:"faculty_name,omitempty"`
	CourseName         string     `json:"course_name,omitempty"`
	SuggestedFacultyID *uuid.UUID `json:"suggested_faculty_id,omitempty"`
	SuggestedCourseID  *uuid.UUID `json:"suggested_course_id,omitempty"`
}

// ValidateRegistration answers one of three ways: the selection matches the
// pre-registered record, the email is registered under a different
// faculty/course (with the correct one suggested), or there is no record at
// all.
func (s *Service) ValidateRegistration(ctx context.Context, email string, tenantID, facultyID, courseID uuid.UUID) (*RegistrationValidation, error) {
	rec, err := s.repo.FindRegistration(ctx, NormalizeEmail(email), tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return &RegistrationValidation{
				Valid:   false,
				Message: "no registration found for this email; contact your university administration",
			}, nil
		}
		return nil, err
	}

	if rec.FacultyID != facultyID || rec.CourseID != courseID {
		fID, cID := rec.FacultyID, rec.CourseID
		return &RegistrationValidation{
			Valid:              false,
			Message:            fmt.Sprintf("you are registered under %s / %s; select those to continue", rec.FacultyName, rec.CourseName),
			SuggestedFacultyID: &fID,
			SuggestedCourseID:  &cID,
		}, nil
	}

	return &RegistrationValidation{
		Valid:          true,
		HasPassword:    rec.HasPassword,
		Message:        "registration confirmed",
		StudentID:      rec.StudentID,
		UniversityName: rec.UniversityName,
		FacultyName:    rec.FacultyName,
		CourseName:     rec.CourseName,
	}, nil
}

// CompleteRegistration sets the student's first password on a pre-registered
// account. An account that already holds a password must use login instead.
func (s *Service) CompleteRegistration(ctx context.Context, email string, tenantID, facultyID, courseID uuid.UUID, password string) (*LoginResult, error) {
	rec, err := s.repo.FindRegistration(ctx, NormalizeEmail(email), tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("%w: no registration for email", shared.ErrNotFound)
		}
		return nil, err
	}
	if rec.FacultyID != facultyID || rec.CourseID != courseID {
		return nil, fmt.Errorf("%w: faculty/course does not match registration", shared.ErrValidation)
	}
	if rec.HasPassword {
		return nil, fmt.Errorf("%w: account already registered", shared.ErrInvalidState)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPassword(ctx, rec.UserID, hash, false); err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, rec.UserID)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, user.TenantID, user.ID, "student.registered", "user", user.ID.String(),
		map[string]any{"student_id": rec.StudentID})

	return s.finishLogin(ctx, user, Claims{StudentID: rec.StudentID})
}

// SupervisorRegistration is the self-service signup input for industry
// supervisors.
type SupervisorRegistration struct {
	Email           string
	Name            string
	Password        string
	CompanyName     string
	Industry        string
	Position        string
	Phone           string
	CompanyAddress  string
	YearsExperience int
}

// RegisterSupervisor creates a supervisor account and logs it in. Supervisors
// are global accounts; the email must be unused within the role.
func (s *Service) RegisterSupervisor(ctx context.Context, in SupervisorRegistration) (*LoginResult, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := User{Email: NormalizeEmail(in.Email), Name: in.Name, Role: shared.RoleSupervisor}
	profile := SupervisorProfile{
		CompanyName:     in.CompanyName,
		Industry:        in.Industry,
		Position:        in.Position,
		Phone:           in.Phone,
		CompanyAddress:  in.CompanyAddress,
		YearsExperience: in.YearsExperience,
	}
	userID, err := s.repo.CreateSupervisor(ctx, user, hash, profile)
	if err != nil {
		return nil, err
	}
	user.ID = userID
	profile.UserID = userID

	s.recordActivity(ctx, nil, userID, "supervisor.registered", "user", userID.String(),
		map[string]any{"company": in.CompanyName})
	s.enqueueEmail(ctx, shared.Email{
		To:      user.Email,
		Subject: "Welcome to Practicheck",
		Body:    fmt.Sprintf("Hello %s,\n\nYour supervisor account is ready. You can now be linked to attached students from %s.\n", in.Name, in.CompanyName),
	})

	result, err := s.finishLogin(ctx, &user, Claims{})
	if err != nil {
		return nil, err
	}
	result.User.Profile = &profile
	return result, nil
}

func (s *Service) recordActivity(ctx context.Context, tenantID *uuid.UUID, userID uuid.UUID, action, targetType, targetID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.ActivityLog{
		TenantID:   tenantID,
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}

func (s *Service) enqueueEmail(ctx context.Context, email shared.Email) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Enqueue(ctx, email); err != nil {
		s.logger.Warn("email enqueue failed", "to", email.To, "error", err)
	}
}
