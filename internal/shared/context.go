package shared

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the fully hydrated, liveness-checked caller context. It is the
// only value downstream business logic may trust for authorization decisions;
// it is rebuilt from the credential store on every request, never from token
// claims alone.
type Identity struct {
	UserID    uuid.UUID  `json:"user_id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      Role       `json:"role"`
	TenantID  *uuid.UUID `json:"tenant_id,omitempty"`
	FacultyID *uuid.UUID `json:"faculty_id,omitempty"`
}

type identityContextKey struct{}

// ContextWithIdentity stores the resolved identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the resolved identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
