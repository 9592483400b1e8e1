package domain

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// IsStaff reports whether role may act on records owned by other students.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleInstructor
}
