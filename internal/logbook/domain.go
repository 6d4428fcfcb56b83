package logbook

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one day of a student's attachment diary. A student writes at most
// one entry per calendar date and may revise it exactly once; IsEdited locks
// the entry after that revision.
type Entry struct {
	ID           uuid.UUID `json:"id"`
	TenantID     uuid.UUID `json:"tenant_id"`
	StudentID    uuid.UUID `json:"student_id"`
	EntryDate    time.Time `json:"entry_date"`
	Activities   string    `json:"activities"`
	SkillsGained string    `json:"skills_gained,omitempty"`
	Challenges   string    `json:"challenges,omitempty"`
	IsEdited     bool      `json:"is_edited"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
