// Package authz enforces role and tenancy boundaries on resolved identities.
// It never touches credentials; the auth package has already proven who the
// caller is by the time these checks run.
package authz

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/platform/httpx"
	"github.com/practicheck/practicheck/internal/shared"
)

// RequireRoles gates a route subtree to the listed roles. A request with no
// identity is unauthenticated, not forbidden.
func RequireRoles(roles ...shared.Role) func(http.Handler) http.Handler {
	allowed := make(map[shared.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := shared.IdentityFromContext(r.Context())
			if identity == nil {
				httpx.RespondError(w, r, shared.ErrUnauthorized)
				return
			}
			if _, ok := allowed[identity.Role]; !ok {
				httpx.RespondError(w, r, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CheckTenant verifies the identity may act within tenantID. Platform admins
// cross tenant boundaries freely; everyone else is pinned to their own.
func CheckTenant(identity *shared.Identity, tenantID uuid.UUID) error {
	if identity == nil {
		return shared.ErrUnauthorized
	}
	if identity.Role == shared.RolePlatformAdmin {
		return nil
	}
	if identity.TenantID == nil || *identity.TenantID != tenantID {
		return fmt.Errorf("%w: tenant boundary", shared.ErrForbidden)
	}
	return nil
}

// CheckFaculty verifies the identity may act within facultyID. University
// and platform admins see all faculties of tenants they can reach;
// faculty-scoped roles are pinned to their own faculty.
func CheckFaculty(identity *shared.Identity, facultyID uuid.UUID) error {
	if identity == nil {
		return shared.ErrUnauthorized
	}
	switch identity.Role {
	case shared.RolePlatformAdmin, shared.RoleUniversityAdmin:
		return nil
	}
	if identity.FacultyID == nil || *identity.FacultyID != facultyID {
		return fmt.Errorf("%w: faculty boundary", shared.ErrForbidden)
	}
	return nil
}
