package courses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/authz"
	"github.com/practicheck/practicheck/internal/shared"
)

// DirectoryInvalidator drops the cached public listings after a mutation
// that can change what they show.
type DirectoryInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements course management. Faculty admins manage courses of
// their own faculty; university admins manage any faculty of their tenant.
type Service struct {
	repo   Repository
	dir    DirectoryInvalidator
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the course service.
func NewService(repo Repository, dir DirectoryInvalidator, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, dir: dir, audit: audit, logger: logger}
}

// CreateInput carries the course fields.
type CreateInput struct {
	FacultyID     uuid.UUID
	Name          string
	Code          string
	DurationYears int
}

// Create adds a course under a faculty the actor controls.
func (s *Service) Create(ctx context.Context, actor *shared.Identity, in CreateInput) (*Course, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	if err := authz.CheckFaculty(actor, in.FacultyID); err != nil {
		return nil, err
	}

	c := &Course{
		TenantID:      *actor.TenantID,
		FacultyID:     in.FacultyID,
		Name:          in.Name,
		Code:          in.Code,
		DurationYears: in.DurationYears,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "course.created", c.ID.String(), map[string]any{"code": c.Code})
	s.invalidateDirectory(ctx)
	return c, nil
}

// List returns the courses of one faculty the actor controls.
func (s *Service) List(ctx context.Context, actor *shared.Identity, facultyID uuid.UUID) ([]Course, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	if err := authz.CheckFaculty(actor, facultyID); err != nil {
		return nil, err
	}
	return s.repo.ListByFaculty(ctx, *actor.TenantID, facultyID)
}

// UpdateInput carries the mutable course fields.
type UpdateInput struct {
	Name          string
	DurationYears int
}

// Update edits a course.
func (s *Service) Update(ctx context.Context, actor *shared.Identity, id uuid.UUID, in UpdateInput) (*Course, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	c, err := s.repo.GetByID(ctx, *actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckFaculty(actor, c.FacultyID); err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.DurationYears = in.DurationYears
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "course.updated", id.String(), nil)
	s.invalidateDirectory(ctx)
	return c, nil
}

// Deactivate hides the course from the public directory.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Identity, id uuid.UUID) error {
	if actor.TenantID == nil {
		return fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	c, err := s.repo.GetByID(ctx, *actor.TenantID, id)
	if err != nil {
		return err
	}
	if err := authz.CheckFaculty(actor, c.FacultyID); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, *actor.TenantID, id, false); err != nil {
		return err
	}
	s.recordActivity(ctx, actor, "course.deactivated", id.String(), nil)
	s.invalidateDirectory(ctx)
	return nil
}

func (s *Service) invalidateDirectory(ctx context.Context) {
	if s.dir != nil {
		s.dir.Invalidate(ctx)
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
		TargetType: "course",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
