package domain

import "time"

// Role enumerates the account roles known to the platform.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
	// RoleAdmin is never produced by registration; it is honored by the
	// course write gate for tokens minted out of band.
	RoleAdmin Role = "admin"
)

// ParseRole maps a registration payload value onto a closed Role.
// Admin is deliberately not registerable.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleTeacher, RoleStudent:
		return Role(value), true
	default:
		return "", false
	}
}

// CanManageCourses reports whether the role may create or update courses.
func (r Role) CanManageCourses() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// User is the domain model for registered accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Age          int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the public projection of a user used when resolving
// creators and enrolled students.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
