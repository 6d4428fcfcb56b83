package faculties

import (
	"time"

	"github.com/google/uuid"
)

// Faculty is a school or department within one tenant. Code is unique per
// tenant.
type Faculty struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProvisionedAdmin is the faculty admin account created alongside a faculty.
// The temporary password never appears in API responses; it is emailed.
type ProvisionedAdmin struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
}
