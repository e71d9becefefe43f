// internal/store/types.go
package store

import "time"

// Role is the application-level role stored on an AppUser
type Role string

const (
	// RoleStudent is the default role assigned when nothing else is set
	RoleStudent Role = "student"

	// RoleInstructor marks users who teach courses
	RoleInstructor Role = "instructor"

	// RoleAdmin marks users with unconditional access
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// AppUser is the system's own record for a person, correlated to an
// externally-verified identity via ExternalID
type AppUser struct {
	// ID is the stable internal primary key
	ID string

	// ExternalID links this record to the identity provider's subject
	ExternalID string

	// Email is the user's email address as reported by the provider
	Email string

	// Name is the user's display name
	Name string

	// Role is the stored application role; empty is treated as student
	Role Role

	// CreatedAt is when the record was created
	CreatedAt time.Time

	// UpdatedAt is when the record was last modified
	UpdatedAt time.Time
}

// EffectiveRole returns the stored role, defaulting to student when unset
func (u AppUser) EffectiveRole() Role {
	if u.Role == "" {
		return RoleStudent
	}
	return u.Role
}

// Course is a course record; the policy only needs the owner and the
// enrollment facts, the rest is carried for the HTTP surface
type Course struct {
	// ID is the course identifier
	ID string

	// OwnerID references the AppUser who owns the course
	OwnerID string

	// Title is the course title
	Title string

	// Description is the course description
	Description string

	// CreatedAt is when the course was created
	CreatedAt time.Time

	// UpdatedAt is when the course was last modified
	UpdatedAt time.Time
}

// Enrollment is a (user, course) membership fact; at most one active
// enrollment exists per pair
type Enrollment struct {
	// UserID references the enrolled AppUser
	UserID string

	// CourseID references the course
	CourseID string

	// CreatedAt is when the enrollment was created
	CreatedAt time.Time
}
