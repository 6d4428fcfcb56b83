package students

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/authz"
	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements student roster management for faculty admins. Students
// are pre-registered without a password; they complete registration
// themselves through the auth flows.
type Service struct {
	repo   Repository
	mailer shared.EmailEnqueuer
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the student service.
func NewService(repo Repository, mailer shared.EmailEnqueuer, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, audit: audit, logger: logger}
}

// PreRegisterInput carries the roster entry to provision.
type PreRegisterInput struct {
	Email       string
	Name        string
	StudentID   string
	CourseID    uuid.UUID
	Program     string
	YearOfStudy int
}

// PreRegister provisions a student under the actor's faculty and sends an
// invitation to complete registration.
func (s *Service) PreRegister(ctx context.Context, actor *shared.Identity, in PreRegisterInput) (*Student, error) {
	if actor.TenantID == nil || actor.FacultyID == nil {
		return nil, fmt.Errorf("%w: actor has no faculty", shared.ErrForbidden)
	}

	student := &Student{
		Email:       auth.NormalizeEmail(in.Email),
		Name:        in.Name,
		StudentID:   in.StudentID,
		FacultyID:   *actor.FacultyID,
		CourseID:    in.CourseID,
		Program:     in.Program,
		YearOfStudy: in.YearOfStudy,
	}
	if err := s.repo.PreRegister(ctx, *actor.TenantID, student); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, "student.pre_registered", student.UserID.String(),
		map[string]any{"student_id": student.StudentID})
	s.sendInvitation(ctx, student)
	return student, nil
}

// List returns a roster page for one faculty the actor controls.
func (s *Service) List(ctx context.Context, actor *shared.Identity, facultyID uuid.UUID, page, perPage int) ([]Student, shared.Pagination, error) {
	if actor.TenantID == nil {
		return nil, shared.Pagination{}, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	if err := authz.CheckFaculty(actor, facultyID); err != nil {
		return nil, shared.Pagination{}, err
	}

	p := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.ListByFaculty(ctx, *actor.TenantID, facultyID, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, perPage, total), nil
}

// Deactivate disables the student's account without deleting the record.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Identity, userID uuid.UUID) error {
	if actor.TenantID == nil {
		return fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	student, err := s.repo.GetByUserID(ctx, *actor.TenantID, userID)
	if err != nil {
		return err
	}
	if err := authz.CheckFaculty(actor, student.FacultyID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, *actor.TenantID, userID, false); err != nil {
		return err
	}
	s.recordActivity(ctx, actor, "student.deactivated", userID.String(), nil)
	return nil
}

func (s *Service) sendInvitation(ctx context.Context, student *Student) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Enqueue(ctx, shared.Email{
		To:      student.Email,
		Subject: "Complete your Practicheck registration",
		Body: fmt.Sprintf("Hello %s,\n\nYour university has registered you for industrial attachment tracking under student number %s. Visit the registration page and set your password to activate your account.\n",
			student.Name, student.StudentID),
	})
	if err != nil {
		s.logger.Warn("invitation email enqueue failed", "to", student.Email, "error", err)
	}
}

func (s *Service) recordActivity(ctx context.Context, actor *shared.Identity, action, targetID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.ActivityLog{
		TenantID:   actor.TenantID,
		UserID:     actor.UserID,
		Action:     action,
		TargetType: "student",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
