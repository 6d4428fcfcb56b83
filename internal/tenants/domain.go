package tenants

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a tenant. Tenants are never hard-deleted;
// suspension is the terminal-ish state and remains reversible.
type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusSuspended   Status = "suspended"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusMaintenance, StatusSuspended:
		return true
	}
	return false
}

// Tenant is a subscribed university.
type Tenant struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Domain      string    `json:"domain"`
	Status      Status    `json:"status"`
	Plan        string    `json:"plan"`
	MonthlyFee  float64   `json:"monthly_fee"`
	HealthScore int       `json:"health_score"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DirectoryUniversity is the public listing entry shown on login screens.
type DirectoryUniversity struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
}

// DirectoryFaculty is the public faculty entry for one university.
type DirectoryFaculty struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// DirectoryCourse is the public course entry for one faculty.
type DirectoryCourse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}
