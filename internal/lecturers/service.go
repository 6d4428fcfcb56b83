package lecturers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/authz"
	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements lecturer management for faculty admins. Lecturers are
// provisioned with a generated temporary password delivered by email and
// rotate it on first login.
type Service struct {
	repo   Repository
	hasher auth.Hasher
	mailer shared.EmailEnqueuer
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the lecturer service.
func NewService(repo Repository, hasher auth.Hasher, mailer shared.EmailEnqueuer, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, mailer: mailer, audit: audit, logger: logger}
}

// ProvisionInput carries the lecturer fields.
type ProvisionInput struct {
	Email          string
	Name           string
	StaffID        string
	Department     string
	Specialization string
	OfficeLocation string
	MaxStudents    int
}

// Provision creates a lecturer under the actor's faculty and emails the
// generated credentials.
func (s *Service) Provision(ctx context.Context, actor *shared.Identity, in ProvisionInput) (*Lecturer, error) {
	if actor.TenantID == nil || actor.FacultyID == nil {
		return nil, fmt.Errorf("%w: actor has no faculty", shared.ErrForbidden)
	}
	if in.MaxStudents <= 0 {
		return nil, fmt.Errorf("%w: max_students must be positive", shared.ErrValidation)
	}

	tempPassword, err := auth.GenerateTemporaryPassword(12)
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, err
	}

	lecturer := &Lecturer{
		Email:          auth.NormalizeEmail(in.Email),
		Name:           in.Name,
		StaffID:        in.StaffID,
		FacultyID:      *actor.FacultyID,
		Department:     in.Department,
		Specialization: in.Specialization,
		OfficeLocation: in.OfficeLocation,
		MaxStudents:    in.MaxStudents,
	}
	if err := s.repo.Provision(ctx, *actor.TenantID, lecturer, hash); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, "lecturer.provisioned", lecturer.UserID.String(),
		map[string]any{"staff_id": lecturer.StaffID})
	s.sendCredentials(ctx, lecturer, tempPassword)
	return lecturer, nil
}

// List returns a page of lecturers for one faculty the actor controls.
func (s *Service) List(ctx context.Context, actor *shared.Identity, facultyID uuid.UUID, page, perPage int) ([]Lecturer, shared.Pagination, error) {
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

// Deactivate disables the lecturer's account. Existing assignments stay on
// record; new ones cannot target an inactive lecturer.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Identity, userID uuid.UUID) error {
	if actor.TenantID == nil {
		return fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	lecturer, err := s.repo.GetByUserID(ctx, *actor.TenantID, userID)
	if err != nil {
		return err
	}
	if err := authz.CheckFaculty(actor, lecturer.FacultyID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, *actor.TenantID, userID, false); err != nil {
		return err
	}
	s.recordActivity(ctx, actor, "lecturer.deactivated", userID.String(), nil)
	return nil
}

func (s *Service) sendCredentials(ctx context.Context, lecturer *Lecturer, tempPassword string) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Enqueue(ctx, shared.Email{
		To:      lecturer.Email,
		Subject: "Your Practicheck lecturer account",
		Body: fmt.Sprintf("Hello %s,\n\nA lecturer account has been created for you under staff number %s.\n\nTemporary password: %s\n\nYou will be asked to change it on first login.\n",
			lecturer.Name, lecturer.StaffID, tempPassword),
	})
	if err != nil {
		s.logger.Warn("credential email enqueue failed", "to", lecturer.Email, "error", err)
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
		TargetType: "lecturer",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
