package shared

// Role is the closed set of actor kinds on the platform.
type Role string

const (
	RoleStudent         Role = "student"
	RoleLecturer        Role = "lecturer"
	RoleSupervisor      Role = "supervisor"
	RoleFacultyAdmin    Role = "faculty_admin"
	RoleUniversityAdmin Role = "university_admin"
	RolePlatformAdmin   Role = "platform_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleSupervisor, RoleFacultyAdmin, RoleUniversityAdmin, RolePlatformAdmin:
		return true
	}
	return false
}

// TenantScoped reports whether users with this role must carry a tenant
// reference. Supervisors and platform admins are global accounts.
func (r Role) TenantScoped() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleFacultyAdmin, RoleUniversityAdmin:
		return true
	}
	return false
}

// FacultyScoped reports whether authorization additionally narrows to the
// user's own faculty.
func (r Role) FacultyScoped() bool {
	switch r {
	case RoleStudent, RoleLecturer, RoleFacultyAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
