package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

type fakeRepo struct {
	users              map[uuid.UUID]*User
	studentProfiles    map[uuid.UUID]*StudentProfile
	lecturerProfiles   map[uuid.UUID]*LecturerProfile
	supervisorProfiles map[uuid.UUID]*SupervisorProfile
	adminProfiles      map[uuid.UUID]*AdminProfile
	activeTenants      map[uuid.UUID]bool
	registrations      map[string]*RegistrationRecord
	lastLogins         map[uuid.UUID]time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:              make(map[uuid.UUID]*User),
		studentProfiles:    make(map[uuid.UUID]*StudentProfile),
		lecturerProfiles:   make(map[uuid.UUID]*LecturerProfile),
		supervisorProfiles: make(map[uuid.UUID]*SupervisorProfile),
		adminProfiles:      make(map[uuid.UUID]*AdminProfile),
		activeTenants:      make(map[uuid.UUID]bool),
		registrations:      make(map[string]*RegistrationRecord),
		lastLogins:         make(map[uuid.UUID]time.Time),
	}
}

func regKey(email string, tenantID uuid.UUID) string {
	return email + "|" + tenantID.String()
}

func (r *fakeRepo) FindStudent(_ context.Context, studentID string, tenantID uuid.UUID) (*User, *StudentProfile, error) {
	for id, p := range r.studentProfiles {
		u := r.users[id]
		if u == nil || !u.IsActive || u.Role != shared.RoleStudent {
			continue
		}
		if p.StudentID == studentID && u.TenantID != nil && *u.TenantID == tenantID {
			return u, p, nil
		}
	}
	return nil, nil, shared.ErrNotFound
}

func (r *fakeRepo) FindLecturer(_ context.Context, staffID string, tenantID uuid.UUID) (*User, *LecturerProfile, error) {
	for id, p := range r.lecturerProfiles {
		u := r.users[id]
		if u == nil || !u.IsActive || u.Role != shared.RoleLecturer {
			continue
		}
		if p.StaffID == staffID && u.TenantID != nil && *u.TenantID == tenantID {
			return u, p, nil
		}
	}
	return nil, nil, shared.ErrNotFound
}

func (r *fakeRepo) FindByEmailRole(_ context.Context, email string, role shared.Role) ([]User, error) {
	var out []User
	for _, u := range r.users {
		if u.IsActive && u.Role == role && u.Email == email {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeRepo) GetSupervisorProfile(_ context.Context, userID uuid.UUID) (*SupervisorProfile, error) {
	p, ok := r.supervisorProfiles[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) GetAdminProfile(_ context.Context, userID uuid.UUID, _ shared.Role) (*AdminProfile, error) {
	p, ok := r.adminProfiles[userID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) TenantActive(_ context.Context, id uuid.UUID) (bool, error) {
	return r.activeTenants[id], nil
}

func (r *fakeRepo) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	r.lastLogins[id] = time.Now()
	return nil
}

func (r *fakeRepo) SetPassword(_ context.Context, userID uuid.UUID, hash string, temporary bool) error {
	u, ok := r.users[userID]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = &hash
	u.IsPasswordTemporary = temporary
	if rec, ok := r.registrations[regKey(u.Email, deref(u.TenantID))]; ok {
		rec.HasPassword = true
	}
	return nil
}

func (r *fakeRepo) CreateSupervisor(_ context.Context, user User, hash string, profile SupervisorProfile) (uuid.UUID, error) {
	for _, existing := range r.users {
		if existing.Email == user.Email && existing.Role == shared.RoleSupervisor {
			return uuid.Nil, shared.ErrDuplicateEntry
		}
	}
	id := uuid.New()
	user.ID = id
	user.IsActive = true
	user.PasswordHash = &hash
	r.users[id] = &user
	profile.UserID = id
	r.supervisorProfiles[id] = &profile
	return id, nil
}

func (r *fakeRepo) FindRegistration(_ context.Context, email string, tenantID uuid.UUID) (*RegistrationRecord, error) {
	rec, ok := r.registrations[regKey(email, tenantID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func deref(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}

type fakeMailer struct {
	sent []shared.Email
}

func (m *fakeMailer) Enqueue(_ context.Context, email shared.Email) error {
	m.sent = append(m.sent, email)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, repo Repository) (*Service, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	svc := NewService(repo, NewHasher(4), NewTokenService("test-secret", "practicheck-test", time.Hour), mailer, nil, testLogger())
	return svc, mailer
}

func mustHash(t *testing.T, plaintext string) *string {
	t.Helper()
	hash, err := NewHasher(4).Hash(plaintext)
	require.NoError(t, err)
	return &hash
}

func seedStudent(t *testing.T, repo *fakeRepo, tenantID uuid.UUID, studentID, password string) *User {
	t.Helper()
	facultyID := uuid.New()
	u := &User{
		ID:        uuid.New(),
		Email:     "student@example.edu",
		Name:      "Ada Student",
		Role:      shared.RoleStudent,
		TenantID:  &tenantID,
		FacultyID: &facultyID,
		IsActive:  true,
	}
	if password != "" {
		u.PasswordHash = mustHash(t, password)
	}
	repo.users[u.ID] = u
	repo.studentProfiles[u.ID] = &StudentProfile{
		UserID:    u.ID,
		StudentID: studentID,
		FacultyID: facultyID,
		CourseID:  uuid.New(),
	}
	return u
}

func TestLoginStudent(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	user := seedStudent(t, repo, tenantID, "CS-2024-001", "correct-horse")
	svc, _ := newTestService(t, repo)

	result, err := svc.Login(context.Background(), shared.RoleStudent, Credentials{
		StudentID: "CS-2024-001",
		Password:  "correct-horse",
		TenantID:  &tenantID,
	})
	require.NoError(t, err)
	require.Equal(t, "bearer", result.TokenType)
	require.Equal(t, user.ID, result.User.ID)
	require.NotNil(t, result.User.Profile)
	require.Contains(t, repo.lastLogins, user.ID)

	claims, err := svc.tokens.Verify(result.Token)
	require.NoError(t, err)
	require.Equal(t, "CS-2024-001", claims.StudentID)
	require.Equal(t, shared.RoleStudent, claims.Role)
}

func TestLoginStudentFailuresAreGeneric(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	otherTenant := uuid.New()
	repo.activeTenants[tenantID] = true
	repo.activeTenants[otherTenant] = true
	seedStudent(t, repo, tenantID, "CS-2024-001", "correct-horse")
	svc, _ := newTestService(t, repo)

	cases := map[string]Credentials{
		"wrong password":  {StudentID: "CS-2024-001", Password: "nope", TenantID: &tenantID},
		"unknown student": {StudentID: "CS-9999-999", Password: "correct-horse", TenantID: &tenantID},
		"wrong tenant":    {StudentID: "CS-2024-001", Password: "correct-horse", TenantID: &otherTenant},
		"missing tenant":  {StudentID: "CS-2024-001", Password: "correct-horse"},
	}
	for name, creds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), shared.RoleStudent, creds)
			require.Error(t, err)
			require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
		})
	}
}

func TestLoginStudentInactiveTenant(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = false
	seedStudent(t, repo, tenantID, "CS-2024-001", "correct-horse")
	svc, _ := newTestService(t, repo)

	_, err := svc.Login(context.Background(), shared.RoleStudent, Credentials{
		StudentID: "CS-2024-001",
		Password:  "correct-horse",
		TenantID:  &tenantID,
	})
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestLoginStudentNoPasswordYet(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	seedStudent(t, repo, tenantID, "CS-2024-001", "")
	svc, _ := newTestService(t, repo)

	_, err := svc.Login(context.Background(), shared.RoleStudent, Credentials{
		StudentID: "CS-2024-001",
		Password:  "anything",
		TenantID:  &tenantID,
	})
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))
}

func TestLoginLecturerExposesTemporaryFlag(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	u := &User{
		ID:                  uuid.New(),
		Email:               "lecturer@example.edu",
		Name:                "Dr. Grace",
		Role:                shared.RoleLecturer,
		TenantID:            &tenantID,
		IsActive:            true,
		IsPasswordTemporary: true,
		PasswordHash:        mustHash(t, "temp-pass-123"),
	}
	repo.users[u.ID] = u
	repo.lecturerProfiles[u.ID] = &LecturerProfile{UserID: u.ID, StaffID: "STAFF-42", MaxStudents: 10}
	svc, _ := newTestService(t, repo)

	result, err := svc.Login(context.Background(), shared.RoleLecturer, Credentials{
		StaffID:  "STAFF-42",
		Password: "temp-pass-123",
		TenantID: &tenantID,
	})
	require.NoError(t, err)
	require.NotNil(t, result.User.IsPasswordTemporary)
	require.True(t, *result.User.IsPasswordTemporary)
}

func TestLoginAdminAmbiguousEmail(t *testing.T) {
	repo := newFakeRepo()
	tenantA, tenantB := uuid.New(), uuid.New()
	repo.activeTenants[tenantA] = true
	repo.activeTenants[tenantB] = true
	for _, tenant := range []uuid.UUID{tenantA, tenantB} {
		tid := tenant
		u := &User{
			ID:           uuid.New(),
			Email:        "admin@example.edu",
			Role:         shared.RoleFacultyAdmin,
			TenantID:     &tid,
			IsActive:     true,
			PasswordHash: mustHash(t, "admin-pass-1"),
		}
		repo.users[u.ID] = u
	}
	svc, _ := newTestService(t, repo)

	_, err := svc.Login(context.Background(), shared.RoleFacultyAdmin, Credentials{
		Email:    "admin@example.edu",
		Password: "admin-pass-1",
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrAmbiguousCredential))
}

func TestLoginSupervisorByEmail(t *testing.T) {
	repo := newFakeRepo()
	u := &User{
		ID:           uuid.New(),
		Email:        "supervisor@company.com",
		Name:         "Sam Super",
		Role:         shared.RoleSupervisor,
		IsActive:     true,
		PasswordHash: mustHash(t, "super-secret"),
	}
	repo.users[u.ID] = u
	repo.supervisorProfiles[u.ID] = &SupervisorProfile{UserID: u.ID, CompanyName: "Acme"}
	svc, _ := newTestService(t, repo)

	result, err := svc.Login(context.Background(), shared.RoleSupervisor, Credentials{
		Email:    "Supervisor@Company.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	require.Nil(t, result.User.TenantID)
	require.NotNil(t, result.User.Profile)
}

func TestValidateRegistrationThreeWay(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	facultyID := uuid.New()
	courseID := uuid.New()
	repo.activeTenants[tenantID] = true
	repo.registrations[regKey("new@student.edu", tenantID)] = &RegistrationRecord{
		UserID:         uuid.New(),
		StudentID:      "CS-2024-007",
		FacultyID:      facultyID,
		CourseID:       courseID,
		UniversityName: "Example University",
		FacultyName:    "Computing",
		CourseName:     "Software Engineering",
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	t.Run("matching selection", func(t *testing.T) {
		out, err := svc.ValidateRegistration(ctx, "new@student.edu", tenantID, facultyID, courseID)
		require.NoError(t, err)
		require.True(t, out.Valid)
		require.False(t, out.HasPassword)
		require.Equal(t, "CS-2024-007", out.StudentID)
	})

	t.Run("wrong faculty suggests the registered one", func(t *testing.T) {
		out, err := svc.ValidateRegistration(ctx, "new@student.edu", tenantID, uuid.New(), courseID)
		require.NoError(t, err)
		require.False(t, out.Valid)
		require.NotNil(t, out.SuggestedFacultyID)
		require.Equal(t, facultyID, *out.SuggestedFacultyID)
		require.NotNil(t, out.SuggestedCourseID)
		require.Equal(t, courseID, *out.SuggestedCourseID)
	})

	t.Run("no record", func(t *testing.T) {
		out, err := svc.ValidateRegistration(ctx, "stranger@student.edu", tenantID, facultyID, courseID)
		require.NoError(t, err)
		require.False(t, out.Valid)
		require.Nil(t, out.SuggestedFacultyID)
	})
}

func TestCompleteRegistration(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	user := seedStudent(t, repo, tenantID, "CS-2024-007", "")
	user.Email = "new@student.edu"
	profile := repo.studentProfiles[user.ID]
	repo.registrations[regKey("new@student.edu", tenantID)] = &RegistrationRecord{
		UserID:    user.ID,
		StudentID: profile.StudentID,
		FacultyID: profile.FacultyID,
		CourseID:  profile.CourseID,
	}
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	result, err := svc.CompleteRegistration(ctx, "new@student.edu", tenantID, profile.FacultyID, profile.CourseID, "fresh-password")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.NotNil(t, repo.users[user.ID].PasswordHash)
	require.False(t, repo.users[user.ID].IsPasswordTemporary)

	// The account now holds a password; a second attempt must be refused.
	_, err = svc.CompleteRegistration(ctx, "new@student.edu", tenantID, profile.FacultyID, profile.CourseID, "another-password")
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrInvalidState))
}

func TestChangePassword(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	u := &User{
		ID:                  uuid.New(),
		Email:               "lecturer@example.edu",
		Role:                shared.RoleLecturer,
		TenantID:            &tenantID,
		IsActive:            true,
		IsPasswordTemporary: true,
		PasswordHash:        mustHash(t, "temp-pass-123"),
	}
	repo.users[u.ID] = u
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.ID, "wrong-current", "brand-new-pass")
	require.True(t, errors.Is(err, shared.ErrInvalidCredentials))

	err = svc.ChangePassword(ctx, u.ID, "temp-pass-123", "brand-new-pass")
	require.NoError(t, err)
	require.False(t, repo.users[u.ID].IsPasswordTemporary)

	ok, err := NewHasher(4).Verify("brand-new-pass", *repo.users[u.ID].PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterSupervisor(t *testing.T) {
	repo := newFakeRepo()
	svc, mailer := newTestService(t, repo)
	ctx := context.Background()

	in := SupervisorRegistration{
		Email:       "Sam@Company.com",
		Name:        "Sam Super",
		Password:    "super-secret",
		CompanyName: "Acme",
	}
	result, err := svc.RegisterSupervisor(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Equal(t, "sam@company.com", result.User.Email)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, "sam@company.com", mailer.sent[0].To)

	_, err = svc.RegisterSupervisor(ctx, in)
	require.Error(t, err)
	require.True(t, errors.Is(err, shared.ErrDuplicateEntry))
}

func TestResolve(t *testing.T) {
	repo := newFakeRepo()
	tenantID := uuid.New()
	repo.activeTenants[tenantID] = true
	user := seedStudent(t, repo, tenantID, "CS-2024-001", "correct-horse")
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	result, err := svc.Login(ctx, shared.RoleStudent, Credentials{
		StudentID: "CS-2024-001",
		Password:  "correct-horse",
		TenantID:  &tenantID,
	})
	require.NoError(t, err)

	identity, err := svc.Resolve(ctx, result.Token)
	require.NoError(t, err)
	require.Equal(t, user.ID, identity.UserID)
	require.Equal(t, shared.RoleStudent, identity.Role)

	// Deactivation takes effect immediately, even with a live token.
	repo.users[user.ID].IsActive = false
	_, err = svc.Resolve(ctx, result.Token)
	require.True(t, errors.Is(err, shared.ErrUnauthorized))

	// So does tenant suspension.
	repo.users[user.ID].IsActive = true
	repo.activeTenants[tenantID] = false
	_, err = svc.Resolve(ctx, result.Token)
	require.True(t, errors.Is(err, shared.ErrUnauthorized))
}
