package students

import (
	"time"

	"github.com/google/uuid"
)

// Student is the admin-facing read model joining the user row with its
// student profile. Registered reports whether the account holds a password.
type Student struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	StudentID   string    `json:"student_id"`
	FacultyID   uuid.UUID `json:"faculty_id"`
	CourseID    uuid.UUID `json:"course_id"`
	Program     string    `json:"program"`
	YearOfStudy int       `json:"year_of_study"`
	Registered  bool      `json:"registered"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}
