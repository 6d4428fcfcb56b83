package lecturers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/shared"
)

type staffKey struct {
	tenantID uuid.UUID
	staffID  string
}

type fakeRepo struct {
	lecturers map[uuid.UUID]*Lecturer
	tenants   map[uuid.UUID]uuid.UUID
	staff     map[staffKey]bool
	hashes    map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		lecturers: make(map[uuid.UUID]*Lecturer),
		tenants:   make(map[uuid.UUID]uuid.UUID),
		staff:     make(map[staffKey]bool),
		hashes:    make(map[string]string),
	}
}

func (r *fakeRepo) Provision(_ context.Context, tenantID uuid.UUID, l *Lecturer, passwordHash string) error {
	key := staffKey{tenantID, l.StaffID}
	if r.staff[key] {
		return shared.ErrDuplicateEntry
	}
	l.UserID = uuid.New()
	l.IsActive = true
	l.CurrentStudents = 0
	copied := *l
	r.lecturers[l.UserID] = &copied
	r.tenants[l.UserID] = tenantID
	r.staff[key] = true
	r.hashes[l.Email] = passwordHash
	return nil
}

func (r *fakeRepo) ListByFaculty(_ context.Context, tenantID, facultyID uuid.UUID, _ shared.Pagination) ([]Lecturer, int, error) {
	var out []Lecturer
	for id, l := range r.lecturers {
		if r.tenants[id] == tenantID && l.FacultyID == facultyID {
			out = append(out, *l)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) GetByUserID(_ context.Context, tenantID, userID uuid.UUID) (*Lecturer, error) {
	l, ok := r.lecturers[userID]
	if !ok || r.tenants[userID] != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *fakeRepo) SetActive(_ context.Context, tenantID, userID uuid.UUID, active bool) error {
	l, ok := r.lecturers[userID]
	if !ok || r.tenants[userID] != tenantID {
		return shared.ErrNotFound
	}
	l.IsActive = active
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
	return NewService(repo, auth.NewHasher(4), mailer, nil, logger)
}

func TestProvision(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	actor := facultyAdmin(uuid.New(), uuid.New())

	l, err := svc.Provision(context.Background(), actor, ProvisionInput{
		Email:       "Prof@Example.edu",
		Name:        "Prof Person",
		StaffID:     "STF-100",
		Department:  "Software Engineering",
		MaxStudents: 10,
	})
	require.NoError(t, err)
	require.Equal(t, "prof@example.edu", l.Email)
	require.Equal(t, *actor.FacultyID, l.FacultyID)
	require.Equal(t, 0, l.CurrentStudents)
	require.True(t, l.IsActive)

	// Credentials go out by email and never appear in the return value.
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "prof@example.edu", mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body, "Temporary password: ")
	require.NotEmpty(t, repo.hashes["prof@example.edu"])
}

func TestProvisionValidatesCapacity(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeMailer{})
	actor := facultyAdmin(uuid.New(), uuid.New())

	_, err := svc.Provision(context.Background(), actor, ProvisionInput{
		Email: "prof@example.edu", Name: "Prof", StaffID: "STF-100", MaxStudents: 0,
	})
	require.True(t, errors.Is(err, shared.ErrValidation))
}

func TestProvisionDuplicateStaffID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	actor := facultyAdmin(uuid.New(), uuid.New())
	ctx := context.Background()

	_, err := svc.Provision(ctx, actor, ProvisionInput{
		Email: "a@example.edu", Name: "A", StaffID: "STF-100", MaxStudents: 5,
	})
	require.NoError(t, err)

	_, err = svc.Provision(ctx, actor, ProvisionInput{
		Email: "b@example.edu", Name: "B", StaffID: "STF-100", MaxStudents: 5,
	})
	require.True(t, errors.Is(err, shared.ErrDuplicateEntry))
}

func TestDeactivateScopedToFaculty(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	tenantID := uuid.New()
	owner := facultyAdmin(tenantID, uuid.New())
	intruder := facultyAdmin(tenantID, uuid.New())
	ctx := context.Background()

	l, err := svc.Provision(ctx, owner, ProvisionInput{
		Email: "a@example.edu", Name: "A", StaffID: "STF-100", MaxStudents: 5,
	})
	require.NoError(t, err)

	err = svc.Deactivate(ctx, intruder, l.UserID)
	require.True(t, errors.Is(err, shared.ErrForbidden))

	require.NoError(t, svc.Deactivate(ctx, owner, l.UserID))
	got, err := repo.GetByUserID(ctx, tenantID, l.UserID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}
