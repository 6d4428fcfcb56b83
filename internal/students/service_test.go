package students

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

type rosterKey struct {
	tenantID  uuid.UUID
	studentID string
}

type fakeRepo struct {
	students map[uuid.UUID]*Student
	tenants  map[uuid.UUID]uuid.UUID
	roster   map[rosterKey]bool
	emails   map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		students: make(map[uuid.UUID]*Student),
		tenants:  make(map[uuid.UUID]uuid.UUID),
		roster:   make(map[rosterKey]bool),
		emails:   make(map[string]bool),
	}
}

func (r *fakeRepo) PreRegister(_ context.Context, tenantID uuid.UUID, s *Student) error {
	key := rosterKey{tenantID, s.StudentID}
	if r.roster[key] || r.emails[s.Email] {
		return shared.ErrDuplicateEntry
	}
	s.UserID = uuid.New()
	s.IsActive = true
	copied := *s
	r.students[s.UserID] = &copied
	r.tenants[s.UserID] = tenantID
	r.roster[key] = true
	r.emails[s.Email] = true
	return nil
}

func (r *fakeRepo) ListByFaculty(_ context.Context, tenantID, facultyID uuid.UUID, _ shared.Pagination) ([]Student, int, error) {
	var out []Student
	for id, s := range r.students {
		if r.tenants[id] == tenantID && s.FacultyID == facultyID {
			out = append(out, *s)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) GetByUserID(_ context.Context, tenantID, userID uuid.UUID) (*Student, error) {
	s, ok := r.students[userID]
	if !ok || r.tenants[userID] != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *fakeRepo) SetActive(_ context.Context, tenantID, userID uuid.UUID, active bool) error {
	s, ok := r.students[userID]
	if !ok || r.tenants[userID] != tenantID {
		return shared.ErrNotFound
	}
	s.IsActive = active
	return nil
}

var _ Repository = (*fakeRepo)(nil)

type fakeMailer struct {
	sent []shared.Email
}

func (m *fakeMailer) Enqueue(_ context.Context, e shared.Email) error {
	m.sent = append(m.sent, e)
	return nil
}

func facultyAdmin(tenantID, facultyID uuid.UUID) *shared.Identity {
	return &shared.Identity{
		UserID:    uuid.New(),
		Role:      shared.RoleFacultyAdmin,
		TenantID:  &tenantID,
		FacultyID: &facultyID,
	}
}

func newTestService(repo Repository, mailer shared.EmailEnqueuer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, mailer, nil, logger)
}

func TestPreRegister(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	actor := facultyAdmin(uuid.New(), uuid.New())

	s, err := svc.PreRegister(context.Background(), actor, PreRegisterInput{
		Email:       "Jane.Doe@Example.edu",
		Name:        "Jane Doe",
		StudentID:   "ENG/2024/001",
		CourseID:    uuid.New(),
		Program:     "BSc Software Engineering",
		YearOfStudy: 3,
	})
	require.NoError(t, err)
	require.Equal(t, "jane.doe@example.edu", s.Email)
	require.Equal(t, *actor.FacultyID, s.FacultyID)
	require.False(t, s.Registered)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, "jane.doe@example.edu", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, "ENG/2024/001")
}

func TestPreRegisterDuplicateStudentID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	actor := facultyAdmin(uuid.New(), uuid.New())
	ctx := context.Background()

	_, err := svc.PreRegister(ctx, actor, PreRegisterInput{
		Email: "a@example.edu", Name: "A", StudentID: "ENG/2024/001", CourseID: uuid.New(),
	})
	require.NoError(t, err)

	_, err = svc.PreRegister(ctx, actor, PreRegisterInput{
		Email: "b@example.edu", Name: "B", StudentID: "ENG/2024/001", CourseID: uuid.New(),
	})
	require.True(t, errors.Is(err, shared.ErrDuplicateEntry))
}

func TestPreRegisterRequiresFaculty(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeMailer{})
	tenantID := uuid.New()
	actor := &shared.Identity{UserID: uuid.New(), Role: shared.RoleUniversityAdmin, TenantID: &tenantID}

	_, err := svc.PreRegister(context.Background(), actor, PreRegisterInput{
		Email: "a@example.edu", Name: "A", StudentID: "ENG/2024/001", CourseID: uuid.New(),
	})
	require.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestListScopedToFaculty(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	tenantID := uuid.New()
	facultyID := uuid.New()
	actor := facultyAdmin(tenantID, facultyID)
	ctx := context.Background()

	_, err := svc.PreRegister(ctx, actor, PreRegisterInput{
		Email: "a@example.edu", Name: "A", StudentID: "ENG/2024/001", CourseID: uuid.New(),
	})
	require.NoError(t, err)

	items, page, err := svc.List(ctx, actor, facultyID, 1, 20)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1, page.Total)

	// A faculty admin cannot read another faculty's roster.
	_, _, err = svc.List(ctx, actor, uuid.New(), 1, 20)
	require.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestDeactivateChecksFaculty(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	tenantID := uuid.New()
	owner := facultyAdmin(tenantID, uuid.New())
	intruder := facultyAdmin(tenantID, uuid.New())
	ctx := context.Background()

	s, err := svc.PreRegister(ctx, owner, PreRegisterInput{
		Email: "a@example.edu", Name: "A", StudentID: "ENG/2024/001", CourseID: uuid.New(),
	})
	require.NoError(t, err)

	err = svc.Deactivate(ctx, intruder, s.UserID)
	require.True(t, errors.Is(err, shared.ErrForbidden))

	require.NoError(t, svc.Deactivate(ctx, owner, s.UserID))
	got, err := repo.GetByUserID(ctx, tenantID, s.UserID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}
