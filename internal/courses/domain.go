package courses

import (
	"time"

	"github.com/google/uuid"
)

// Course is a program of study under one faculty. Code is unique per faculty.
type Course struct {
	ID            uuid.UUID `json:"id"`
	TenantID      uuid.UUID `json:"tenant_id"`
	FacultyID     uuid.UUID `json:"faculty_id"`
	Name          string    `json:"name"`
	Code          string    `json:"code"`
	DurationYears int       `json:"duration_years"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
