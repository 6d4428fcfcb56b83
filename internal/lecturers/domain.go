package lecturers

import (
	"time"

	"github.com/google/uuid"
)

// Lecturer is the admin-facing read model joining the user row with the
// lecturer profile. CurrentStudents is a maintained counter; the assignment
// transaction recounts it from active assignments.
type Lecturer struct {
	UserID          uuid.UUID `json:"user_id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	StaffID         string    `json:"staff_id"`
	FacultyID       uuid.UUID `json:"faculty_id"`
	Department      string    `json:"department"`
	Specialization  string    `json:"specialization"`
	OfficeLocation  string    `json:"office_location"`
	MaxStudents     int       `json:"max_students"`
	CurrentStudents int       `json:"current_students"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}
