package assessments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/practicheck/practicheck/internal/authz"
	"github.com/practicheck/practicheck/internal/shared"
)

// Service implements assessment request and lecturer assignment flows.
type Service struct {
	repo   Repository
	notify *shared.NotificationStore
	audit  *shared.ActivityLogger
	logger *slog.Logger
}

// NewService wires the assessment service.
func NewService(repo Repository, notify *shared.NotificationStore, audit *shared.ActivityLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, notify: notify, audit: audit, logger: logger}
}

// CreateInput carries the fields of a new assessment request.
type CreateInput struct {
	AssessmentType string
	PreferredDate  *time.Time
	Location       string
	Notes          string
}

// Create files a new pending request for the calling student. The faculty is
// derived from the student's own identity, never from input.
func (s *Service) Create(ctx context.Context, actor *shared.Identity, in CreateInput) (*Request, error) {
	if actor.Role != shared.RoleStudent {
		return nil, fmt.Errorf("%w: only students request assessments", shared.ErrForbidden)
	}
	if actor.TenantID == nil || actor.FacultyID == nil {
		return nil, fmt.Errorf("%w: student identity incomplete", shared.ErrForbidden)
	}

	req := &Request{
		TenantID:       *actor.TenantID,
		StudentID:      actor.UserID,
		FacultyID:      *actor.FacultyID,
		AssessmentType: in.AssessmentType,
		PreferredDate:  in.PreferredDate,
		Location:       in.Location,
		Notes:          in.Notes,
	}
	if err := s.repo.CreateRequest(ctx, req); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, "assessment.requested", req.ID.String(),
		map[string]any{"assessment_type": req.AssessmentType})
	s.notifyFacultyAdmins(ctx, req, actor.Name)
	return req, nil
}

// ListForStudent returns the calling student's own requests.
func (s *Service) ListForStudent(ctx context.Context, actor *shared.Identity) ([]Request, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	return s.repo.ListForStudent(ctx, *actor.TenantID, actor.UserID)
}

// ListPending returns the pending requests of one faculty the actor controls.
func (s *Service) ListPending(ctx context.Context, actor *shared.Identity, facultyID uuid.UUID) ([]Request, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	if err := authz.CheckFaculty(actor, facultyID); err != nil {
		return nil, err
	}
	return s.repo.ListPendingForFaculty(ctx, *actor.TenantID, facultyID)
}

// Assign resolves a pending request by binding a lecturer to the student.
// The whole decision runs in one transaction with the lecturer's capacity
// row locked: a lecturer at max_students rejects the assignment, and
// current_students is recounted from live assignments before commit.
func (s *Service) Assign(ctx context.Context, actor *shared.Identity, requestID, lecturerID uuid.UUID) (*Request, error) {
	if actor.TenantID == nil {
		return nil, fmt.Errorf("%w: actor has no tenant", shared.ErrForbidden)
	}
	tenantID := *actor.TenantID

	var assigned *Request
	err := s.repo.WithinTx(ctx, func(tx pgx.Tx) error {
		req, err := s.repo.GetRequestForUpdate(ctx, tx, tenantID, requestID)
		if err != nil {
			return err
		}
		if err := authz.CheckFaculty(actor, req.FacultyID); err != nil {
			return err
		}
		if req.Status != StatusPending {
			return fmt.Errorf("%w: request is %s, not pending", shared.ErrInvalidState, req.Status)
		}

		lecturer, err := s.repo.GetLecturerForUpdate(ctx, tx, tenantID, lecturerID)
		if err != nil {
			return err
		}
		if !lecturer.IsActive || lecturer.FacultyID != req.FacultyID {
			return fmt.Errorf("%w: no eligible lecturer", shared.ErrNotFound)
		}
		if lecturer.CurrentStudents >= lecturer.MaxStudents {
			return fmt.Errorf("%w: lecturer at %d/%d students",
				shared.ErrCapacityExceeded, lecturer.CurrentStudents, lecturer.MaxStudents)
		}

		if err := s.repo.MarkAssigned(ctx, tx, req.ID, lecturerID); err != nil {
			return err
		}
		assignment := &Assignment{
			TenantID:       tenantID,
			StudentID:      req.StudentID,
			LecturerID:     lecturerID,
			AssessmentType: req.AssessmentType,
		}
		if err := s.repo.UpsertAssignment(ctx, tx, assignment); err != nil {
			return err
		}
		if _, err := s.repo.RecountLecturerLoad(ctx, tx, lecturerID); err != nil {
			return err
		}

		req.Status = StatusAssigned
		req.AssignedLecturerID = &lecturerID
		assigned = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, "assessment.assigned", assigned.ID.String(),
		map[string]any{"lecturer_id": lecturerID, "student_id": assigned.StudentID})
	s.notifyAssignment(ctx, assigned, lecturerID)
	return assigned, nil
}

func (s *Service) notifyFacultyAdmins(ctx context.Context, req *Request, studentName string) {
	if s.notify == nil {
		return
	}
	err := s.notify.PushToFacultyAdmins(ctx, req.TenantID, req.FacultyID, shared.Notification{
		TenantID: &req.TenantID,
		Kind:     "assessment.requested",
		Title:    "New assessment request",
		Message:  fmt.Sprintf("%s requested a %s assessment", studentName, req.AssessmentType),
		Data:     map[string]any{"request_id": req.ID},
	})
	if err != nil {
		s.logger.Warn("faculty admin notification failed", "request_id", req.ID, "error", err)
	}
}

func (s *Service) notifyAssignment(ctx context.Context, req *Request, lecturerID uuid.UUID) {
	if s.notify == nil {
		return
	}
	for _, userID := range []uuid.UUID{req.StudentID, lecturerID} {
		err := s.notify.Push(ctx, shared.Notification{
			TenantID: &req.TenantID,
			UserID:   userID,
			Kind:     "assessment.assigned",
			Title:    "Assessment assigned",
			Message:  fmt.Sprintf("A lecturer has been assigned for the %s assessment", req.AssessmentType),
			Data:     map[string]any{"request_id": req.ID},
		})
		if err != nil {
			s.logger.Warn("assignment notification failed", "user_id", userID, "error", err)
		}
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
		TargetType: "assessment_request",
		TargetID:   targetID,
		Details:    details,
	})
	if err != nil {
		s.logger.Warn("activity log write failed", "action", action, "error", err)
	}
}
