package logbook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements the logbook rules: one entry per day, one revision per
// entry, owner-only access.
type Service struct {
	repo   Repository
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the logbook service.
func NewService(repo Repository, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// EntryInput carries the writable entry fields.
type EntryInput struct {
	EntryDate    time.Time
	Activities   string
	SkillsGained string
	Challenges   string
}

// Create writes today's (or a backdated) entry for the calling student.
func (s *Service) Create(ctx context.Context, actor *shared.Identity, in EntryInput) (*Entry, error) {
	if actor.Role != shared.RoleStudent {
		return nil, fmt.Errorf("%w: only students keep logbooks", shared.ErrForbidden)
	}
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: student identity incomplete", shared.ErrForbidden)
	}
	if in.EntryDate.After(time.Now()) {
		return nil, fmt.Errorf("%w: entry_date cannot be in the future", shared.ErrValidation)
	}

	e := &Entry{
		TenantID:     *actor.TenantID,
		StudentID:    actor.UserID,
		EntryDate:    in.EntryDate.Truncate(24 * time.Hour),
		Activities:   in.Activities,
		SkillsGained: in.SkillsGained,
		Challenges:   in.Challenges,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "logbook.entry_created", e.ID.String(),
		map[string]any{"entry_date": e.EntryDate.Format("2006-01-02")})
	return e, nil
}

// Update applies the single permitted revision to an entry owned by the
// caller. A second revision fails with ErrAlreadyEdited.
func (s *Service) Update(ctx context.Context, actor *shared.Identity, id uuid.UUID, in EntryInput) (*Entry, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: student identity incomplete", shared.ErrForbidden)
	}
	e, err := s.repo.GetByID(ctx, *actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if e.StudentID != actor.UserID {
		return nil, fmt.Errorf("%w: not the entry owner", shared.ErrForbidden)
	}
	if e.IsEdited {
		return nil, fmt.Errorf("%w: entry %s", shared.ErrAlreadyEdited, id)
	}

	e.Activities = in.Activities
	e.SkillsGained = in.SkillsGained
	e.Challenges = in.Challenges
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	s.recordActivity(ctx, actor, "logbook.entry_edited", e.ID.String(), nil)
	return e, nil
}

// List returns the caller's entries, optionally bounded by date.
func (s *Service) List(ctx context.Context, actor *shared.Identity, from, to *time.Time) ([]Entry, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: student identity incomplete", shared.ErrForbidden)
	}
	return s.repo.ListForStudent(ctx, *actor.TenantID, actor.UserID, from, to)
}

func (s *Service) recordActivity(ctx context.Context, actor *shared.Identity, action, targetID string, details map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, shared.ActivityLog{
		TenantID:   actor.TenantID,
		UserID:     actor.UserID,
		Action:     action,
		TargetType: "logbook_entry",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
