package domain

// Actor is the authenticated caller as seen by the application services.
type Actor struct {
	UserID    string
	StudentID string
	Role      string
}

// CanAccessStudent reports whether the actor may read or act on studentID's
// records: staff may access any student, everyone else only their own.
func (a Actor) CanAccessStudent(studentID string) bool {
	if IsStaff(a.Role) {
		return true
	}
	return a.StudentID != "" && a.StudentID == studentID
}
