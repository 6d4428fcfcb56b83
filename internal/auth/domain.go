package auth

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/practicheck/practicheck/internal/shared"
)

// User is the global identity record. PasswordHash is nil until the account
// moves out of the provisioned state. TenantID is nil for supervisors and
// platform admins.
type User struct {
	ID                  uuid.UUID
	Email               string
	PasswordHash        *string
	Name                string
	Role                shared.Role
	TenantID            *uuid.UUID
	FacultyID           *uuid.UUID
	IsActive            bool
	IsPasswordTemporary bool
	LastLogin           *time.Time
	UniversityName      string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// StudentProfile extends a student user with its tenant-scoped identity key.
type StudentProfile struct {
	UserID      uuid.UUID
	StudentID   string
	FacultyID   uuid.UUID
	CourseID    uuid.UUID
	Program     string
	YearOfStudy int
}

// LecturerProfile extends a lecturer user with staff key and capacity counters.
type LecturerProfile struct {
	UserID          uuid.UUID
	StaffID         string
	Department      string
	Specialization  string
	OfficeLocation  string
	MaxStudents     int
	CurrentStudents int
}

// SupervisorProfile extends a supervisor user with company attributes.
type SupervisorProfile struct {
	UserID          uuid.UUID
	CompanyName     string
	Industry        string
	Position        string
	Phone           string
	CompanyAddress  string
	YearsExperience int
}

// AdminProfile extends faculty and university admin users.
type AdminProfile struct {
	UserID         uuid.UUID
	StaffID        string
	Phone          string
	OfficeLocation string
}

// Credentials carries the role-specific login input. Which fields are
// required depends on the role's login strategy.
type Credentials struct {
	Email     string
	StudentID string
	StaffID   string
	Password  string
	TenantID  *uuid.UUID
}

// LoginResult is returned by every successful login strategy.
type LoginResult struct {
	Token     string
	TokenType string
	User      UserPayload
}

// UserPayload is the role-shaped public profile returned to clients.
type UserPayload struct {
	ID                  uuid.UUID   `json:"id"`
	Email               string      `json:"email"`
	Name                string      `json:"name"`
	Role                shared.Role `json:"role"`
	TenantID            *uuid.UUID  `json:"tenant_id,omitempty"`
	UniversityName      string      `json:"university_name,omitempty"`
	IsPasswordTemporary *bool       `json:"is_password_temporary,omitempty"`
	Profile             any         `json:"profile,omitempty"`
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

// GenerateTemporaryPassword produces a random password for provisioned
// accounts. It is emailed to the owner and flagged is_password_temporary.
func GenerateTemporaryPassword(length int) (string, error) {
	if length <= 0 {
		length = 12
	}
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
