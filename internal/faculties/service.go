package faculties

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/shared"
)

// DirectoryInvalidator drops the cached public listings after a mutation
// that can change what they show.
type DirectoryInvalidator interface {
	Invalidate(ctx context.Context)
}

// Service implements faculty management for university admins.
type Service struct {
	repo   Repository
	hasher auth.Hasher
	mailer shared.EmailEnqueuer
	dir    DirectoryInvalidator
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the faculty service.
func NewService(repo Repository, hasher auth.Hasher, mailer shared.EmailEnqueuer, dir DirectoryInvalidator, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, hasher: hasher, mailer: mailer, dir: dir, audit: audit, logger: logger}
}

// CreateInput carries the faculty fields plus its first admin account.
type CreateInput struct {
	Name        string
	Code        string
	Description string
	AdminEmail  string
	AdminName   string
}

// Create adds a faculty and provisions its admin with a generated temporary
// password, delivered by email. The password never enters the response.
func (s *Service) Create(ctx context.Context, actor *shared.Identity, in CreateInput) (*Faculty, *ProvisionedAdmin, error) {
	if actor.TenantID == nil {
		return nil, nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}

	tempPassword, err := auth.GenerateTemporaryPassword(12)
	if err != nil {
		return nil, nil, err
	}
	hash, err := s.hasher.Hash(tempPassword)
	if err != nil {
		return nil, nil, err
	}

	f := &Faculty{
		TenantID:    *actor.TenantID,
		Name:        in.Name,
		Code:        in.Code,
		Description: in.Description,
	}
	admin, err := s.repo.CreateWithAdmin(ctx, f, auth.NormalizeEmail(in.AdminEmail), in.AdminName, hash)
	if err != nil {
		return nil, nil, err
	}

	s.recordActivity(ctx, actor, "faculty.created", f.ID.String(),
		map[string]any{"code": f.Code, "admin_user_id": admin.UserID})
	s.sendCredentials(ctx, admin, f.Name, tempPassword)
	s.invalidateDirectory(ctx)
	return f, admin, nil
}

// Get returns one faculty within the actor's tenant.
func (s *Service) Get(ctx context.Context, actor *shared.Identity, id uuid.UUID) (*Faculty, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	return s.repo.GetByID(ctx, *actor.TenantID, id)
}

// List returns every faculty of the actor's tenant.
func (s *Service) List(ctx context.Context, actor *shared.Identity) ([]Faculty, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	return s.repo.ListByTenant(ctx, *actor.TenantID)
}

// UpdateInput carries the mutable faculty fields. Code is immutable once
// assigned.
type UpdateInput struct {
	Name        string
	Description string
}

// Update edits a faculty's attributes.
func (s *Service) Update(ctx context.Context, actor *shared.Identity, id uuid.UUID, in UpdateInput) (*Faculty, error) {
	f, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	f.Name = in.Name
	f.Description = in.Description
	if err := s.repo.Update(ctx, f); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "faculty.updated", id.String(), nil)
	s.invalidateDirectory(ctx)
	return f, nil
}

// Deactivate hides the faculty from the public directory without deleting
// anything.
func (s *Service) Deactivate(ctx context.Context, actor *shared.Identity, id uuid.UUID) error {
	if actor.TenantID == nil {
		return fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	if err := s.repo.SetActive(ctx, *actor.TenantID, id, false); err != nil {
		return err
	}
	s.recordActivity(ctx, actor, "faculty.deactivated", id.String(), nil)
	s.invalidateDirectory(ctx)
	return nil
}

func (s *Service) invalidateDirectory(ctx context.Context) {
	if s.dir != nil {
		s.dir.Invalidate(ctx)
	}
}

func (s *Service) sendCredentials(ctx context.Context, admin *ProvisionedAdmin, facultyName, tempPassword string) {
	if s.mailer == nil {
		return
	}
	err := s.mailer.Enqueue(ctx, shared.Email{
		To:      admin.Email,
		Subject: "Your Practicheck faculty admin account",
		Body: fmt.Sprintf("Hello %s,\n\nAn administrator account for %s has been created for you.\n\nTemporary password: %s\n\nYou will be asked to change it on first login.\n",
			admin.Name, facultyName, tempPassword),
	})
	if err != nil {
		s.logger.Warn("credential email enqueue failed", "to", admin.Email, "error", err)
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
		TargetType: "faculty",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
