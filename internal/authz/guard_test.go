package authz

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/practicheck/practicheck/internal/shared"
)

func callGuarded(t *testing.T, identity *shared.Identity, roles ...shared.Role) *httptest.ResponseRecorder {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := RequireRoles(roles...)(next)

	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if identity != nil {
		req = req.WithContext(shared.ContextWithIdentity(req.Context(), identity))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoles(t *testing.T) {
	student := &shared.Identity{UserID: uuid.New(), Role: shared.RoleStudent}

	rec := callGuarded(t, student, shared.RoleStudent)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = callGuarded(t, student, shared.RoleFacultyAdmin, shared.RoleUniversityAdmin)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = callGuarded(t, nil, shared.RoleStudent)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckTenant(t *testing.T) {
	tenantID := uuid.New()
	otherTenant := uuid.New()

	admin := &shared.Identity{UserID: uuid.New(), Role: shared.RoleUniversityAdmin, TenantID: &tenantID}
	require.NoError(t, CheckTenant(admin, tenantID))

	err := CheckTenant(admin, otherTenant)
	require.True(t, errors.Is(err, shared.ErrForbidden))

	platform := &shared.Identity{UserID: uuid.New(), Role: shared.RolePlatformAdmin}
	require.NoError(t, CheckTenant(platform, tenantID))
	require.NoError(t, CheckTenant(platform, otherTenant))

	require.True(t, errors.Is(CheckTenant(nil, tenantID), shared.ErrUnauthorized))

	global := &shared.Identity{UserID: uuid.New(), Role: shared.RoleSupervisor}
	require.True(t, errors.Is(CheckTenant(global, tenantID), shared.ErrForbidden))
}

func TestCheckFaculty(t *testing.T) {
	tenantID := uuid.New()
	facultyID := uuid.New()
	otherFaculty := uuid.New()

	facultyAdmin := &shared.Identity{
		UserID:    uuid.New(),
		Role:      shared.RoleFacultyAdmin,
		TenantID:  &tenantID,
		FacultyID: &facultyID,
	}
	require.NoError(t, CheckFaculty(facultyAdmin, facultyID))
	require.True(t, errors.Is(CheckFaculty(facultyAdmin, otherFaculty), shared.ErrForbidden))

	universityAdmin := &shared.Identity{UserID: uuid.New(), Role: shared.RoleUniversityAdmin, TenantID: &tenantID}
	require.NoError(t, CheckFaculty(universityAdmin, facultyID))
	require.NoError(t, CheckFaculty(universityAdmin, otherFaculty))

	require.True(t, errors.Is(CheckFaculty(nil, facultyID), shared.ErrUnauthorized))
}
