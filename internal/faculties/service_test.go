package faculties

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/auth"
	"github.com/practicheck/practicheck/internal/shared"
)

type fakeRepo struct {
	faculties map[uuid.UUID]*Faculty
	admins    map[uuid.UUID]*ProvisionedAdmin
	hashes    map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		faculties: make(map[uuid.UUID]*Faculty),
		admins:    make(map[uuid.UUID]*ProvisionedAdmin),
		hashes:    make(map[string]string),
	}
}

func (r *fakeRepo) CreateWithAdmin(_ context.Context, f *Faculty, adminEmail, adminName, passwordHash string) (*ProvisionedAdmin, error) {
	for _, existing := range r.faculties {
		if existing.TenantID == f.TenantID && existing.Code == f.Code {
			return nil, shared.ErrDuplicateEntry
		}
	}
	f.ID = uuid.New()
	f.IsActive = true
	copied := *f
	r.faculties[f.ID] = &copied

	admin := &ProvisionedAdmin{UserID: uuid.New(), Email: adminEmail, Name: adminName}
	r.admins[admin.UserID] = admin
	r.hashes[adminEmail] = passwordHash
	return admin, nil
}

func (r *fakeRepo) GetByID(_ context.Context, tenantID, id uuid.UUID) (*Faculty, error) {
	f, ok := r.faculties[id]
	if !ok || f.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	copied := *f
	return &copied, nil
}

func (r *fakeRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]Faculty, error) {
	var out []Faculty
	for _, f := range r.faculties {
		if f.TenantID == tenantID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, f *Faculty) error {
	stored, ok := r.faculties[f.ID]
	if !ok || stored.TenantID != f.TenantID {
		return shared.ErrNotFound
	}
	*stored = *f
	return nil
}

func (r *fakeRepo) SetActive(_ context.Context, tenantID, id uuid.UUID, active bool) error {
	f, ok := r.faculties[id]
	if !ok || f.TenantID != tenantID {
		return shared.ErrNotFound
	}
	f.IsActive = active
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

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context) {
	f.calls++
}

func universityAdmin(tenantID uuid.UUID) *shared.Identity {
	return &shared.Identity{UserID: uuid.New(), Role: shared.RoleUniversityAdmin, TenantID: &tenantID}
}

func newTestService(repo Repository, mailer shared.EmailEnqueuer) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, auth.NewHasher(4), mailer, nil, nil, logger)
}

func TestCreateProvisionsAdmin(t *testing.T) {
	repo := newFakeRepo()
	mailer := &fakeMailer{}
	svc := newTestService(repo, mailer)
	tenantID := uuid.New()

	f, admin, err := svc.Create(context.Background(), universityAdmin(tenantID), CreateInput{
		Name:       "Engineering",
		Code:       "ENG",
		AdminEmail: "Dean@Example.edu",
		AdminName:  "Dean Person",
	})
	require.NoError(t, err)
	require.Equal(t, tenantID, f.TenantID)
	require.True(t, f.IsActive)
	require.Equal(t, "dean@example.edu", admin.Email)

	// Credentials go out by email only; the stored hash verifies against the
	// password inside the message body.
	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	require.Equal(t, "dean@example.edu", msg.To)
	require.Contains(t, msg.Body, "Temporary password: ")

	line := msg.Body[strings.Index(msg.Body, "Temporary password: ")+len("Temporary password: "):]
	password := strings.TrimSpace(strings.SplitN(line, "\n", 2)[0])
	require.Len(t, password, 12)
	ok, err := auth.NewHasher(4).Verify(password, repo.hashes["dean@example.edu"])
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	tenantID := uuid.New()
	actor := universityAdmin(tenantID)

	_, _, err := svc.Create(context.Background(), actor, CreateInput{
		Name: "Engineering", Code: "ENG", AdminEmail: "a@example.edu", AdminName: "A",
	})
	require.NoError(t, err)

	_, _, err = svc.Create(context.Background(), actor, CreateInput{
		Name: "Engineering II", Code: "ENG", AdminEmail: "b@example.edu", AdminName: "B",
	})
	require.True(t, errors.Is(err, shared.ErrDuplicateEntry))
}

func TestCreateRequiresTenant(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeMailer{})
	actor := &shared.Identity{UserID: uuid.New(), Role: shared.RolePlatformAdmin}

	_, _, err := svc.Create(context.Background(), actor, CreateInput{
		Name: "Engineering", Code: "ENG", AdminEmail: "a@example.edu", AdminName: "A",
	})
	require.True(t, errors.Is(err, shared.ErrForbidden))
}

func TestUpdateKeepsCode(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	tenantID := uuid.New()
	actor := universityAdmin(tenantID)
	ctx := context.Background()

	f, _, err := svc.Create(ctx, actor, CreateInput{
		Name: "Engineering", Code: "ENG", AdminEmail: "a@example.edu", AdminName: "A",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, actor, f.ID, UpdateInput{Name: "Engineering & Tech", Description: "renamed"})
	require.NoError(t, err)
	require.Equal(t, "Engineering & Tech", updated.Name)
	require.Equal(t, "ENG", updated.Code)
}

func TestTenantScoping(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeMailer{})
	ctx := context.Background()

	f, _, err := svc.Create(ctx, universityAdmin(uuid.New()), CreateInput{
		Name: "Engineering", Code: "ENG", AdminEmail: "a@example.edu", AdminName: "A",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, universityAdmin(uuid.New()), f.ID)
	require.True(t, errors.Is(err, shared.ErrNotFound))

	require.NoError(t, svc.Deactivate(ctx, universityAdmin(f.TenantID), f.ID))
	got, err := svc.Get(ctx, universityAdmin(f.TenantID), f.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestMutationsInvalidateDirectory(t *testing.T) {
	repo := newFakeRepo()
	dir := &fakeInvalidator{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, auth.NewHasher(4), &fakeMailer{}, dir, nil, logger)
	actor := universityAdmin(uuid.New())
	ctx := context.Background()

	f, _, err := svc.Create(ctx, actor, CreateInput{
		Name: "Engineering", Code: "ENG", AdminEmail: "a@example.edu", AdminName: "A",
	})
	require.NoError(t, err)
	require.Equal(t, 1, dir.calls)

	_, err = svc.Update(ctx, actor, f.ID, UpdateInput{Name: "Engineering & Tech"})
	require.NoError(t, err)
	require.Equal(t, 2, dir.calls)

	require.NoError(t, svc.Deactivate(ctx, actor, f.ID))
	require.Equal(t, 3, dir.calls)

	// Reads leave the cache alone.
	_, err = svc.Get(ctx, actor, f.ID)
	require.NoError(t, err)
	require.Equal(t, 3, dir.calls)
}
