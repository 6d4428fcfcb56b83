package assessments

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the lifecycle state of an assessment request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAssigned  RequestStatus = "assigned"
	StatusCompleted RequestStatus = "completed"
	StatusCancelled RequestStatus = "cancelled"
)

// Request is a student's ask for an on-site assessment visit. A faculty
// admin resolves it by assigning a lecturer.
type Request struct {
	ID                 uuid.UUID     `json:"id"`
	TenantID           uuid.UUID     `json:"tenant_id"`
	StudentID          uuid.UUID     `json:"student_id"`
	FacultyID          uuid.UUID     `json:"faculty_id"`
	AssessmentType     string        `json:"assessment_type"`
	Status             RequestStatus `json:"status"`
	PreferredDate      *time.Time    `json:"preferred_date,omitempty"`
	Location           string        `json:"location"`
	Notes              string        `json:"notes,omitempty"`
	AssignedLecturerID *uuid.UUID    `json:"assigned_lecturer_id,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// Assignment links a lecturer to a student for one assessment type. The
// (tenant, student, lecturer, type) tuple is unique; re-assignment
// reactivates the existing row instead of inserting a duplicate.
type Assignment struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	StudentID      uuid.UUID `json:"student_id"`
	LecturerID     uuid.UUID `json:"lecturer_id"`
	AssessmentType string    `json:"assessment_type"`
	IsActive       bool      `json:"is_active"`
	AssignedAt     time.Time `json:"assigned_at"`
}

// lecturerCapacity is the locked row read inside the assignment transaction.
type lecturerCapacity struct {
	UserID          uuid.UUID
	TenantID        uuid.UUID
	FacultyID       uuid.UUID
	MaxStudents     int
	CurrentStudents int
	IsActive        bool
}
