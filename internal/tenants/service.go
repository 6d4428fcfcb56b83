package tenants

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements tenant lifecycle management. All mutations are reserved
// for platform admins; the handler enforces the role, the service enforces
// state rules.
type Service struct {
	repo   Repository
	dir    *Directory
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the tenant service.
func NewService(repo Repository, dir *Directory, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, dir: dir, audit: audit, logger: logger}
}

// CreateInput carries the fields for onboarding a university.
type CreateInput struct {
	Name       string
	Location   string
	Domain     string
	Plan       string
	MonthlyFee float64
}

// Create onboards a new tenant in active status.
func (s *Service) Create(ctx context.Context, actor *shared.Identity, in CreateInput) (*Tenant, error) {
	t := &Tenant{
		Name:        in.Name,
		Location:    in.Location,
		Domain:      in.Domain,
		Status:      StatusActive,
		Plan:        in.Plan,
		MonthlyFee:  in.MonthlyFee,
		HealthScore: 100,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "tenant.created", t.ID.String(), map[string]any{"name": t.Name})
	s.dir.Invalidate(ctx)
	return t, nil
}

// Get returns one tenant.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of tenants with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Tenant, shared.Pagination, error) {
	p := shared.NewPagination(page, perPage, 0)
	items, total, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, perPage, total), nil
}

// UpdateInput carries mutable tenant attributes. Status changes go through
// ChangeStatus instead.
type UpdateInput struct {
	Name       string
	Location   string
	Domain     string
	Plan       string
	MonthlyFee float64
}

// Update edits tenant attributes.
func (s *Service) Update(ctx context.Context, actor *shared.Identity, id uuid.UUID, in UpdateInput) (*Tenant, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = in.Name
	t.Location = in.Location
	t.Domain = in.Domain
	t.Plan = in.Plan
	t.MonthlyFee = in.MonthlyFee
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "tenant.updated", id.String(), nil)
	s.dir.Invalidate(ctx)
	return t, nil
}

// allowedTransitions describes the tenant status machine. Any state may move
// to maintenance and back; suspension is reachable from anywhere and only
// reversible to active.
var allowedTransitions = map[Status][]Status{
	StatusActive:      {StatusMaintenance, StatusSuspended},
	StatusMaintenance: {StatusActive, StatusSuspended},
	StatusSuspended:   {StatusActive},
}

// ChangeStatus moves a tenant through the status machine. Tenants are never
// deleted; suspension cuts off every login under the tenant while keeping
// its data intact.
func (s *Service) ChangeStatus(ctx context.Context, actor *shared.Identity, id uuid.UUID, next Status) (*Tenant, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", shared.ErrValidation, next)
	}
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == next {
		return t, nil
	}
	if !transitionAllowed(t.Status, next) {
		return nil, fmt.Errorf("%w: cannot move tenant from %s to %s", shared.ErrInvalidState, t.Status, next)
	}
	if err := s.repo.SetStatus(ctx, id, next); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "tenant.status_changed", id.String(),
		map[string]any{"from": t.Status, "to": next})
	s.dir.Invalidate(ctx)
	t.Status = next
	return t, nil
}

func transitionAllowed(from, to Status) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (s *Service) recordActivity(ctx context.Context, actor *shared.Identity, action, targetID string, details map[string]any) {
	if s.audit == nil || actor == nil {
		return
	}
	err := s.audit.Record(ctx, shared.ActivityLog{
		UserID:     actor.UserID,
		Action:     action,
		TargetType: "tenant",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
