// internal/store/store.go
package store

import (
	"context"
	"errors"
)

// ErrNotFound signals that a record does not exist. Implementations must
// return it (possibly wrapped) so callers can distinguish absence from
// failure.
var ErrNotFound = errors.New("store: not found")

// Store is the data collaborator consumed by the access policy and the
// HTTP handlers. All lookups are independent point reads.
type Store interface {
	// UserByExternalID returns the AppUser linked to an identity
	// provider subject
	UserByExternalID(ctx context.Context, externalID string) (AppUser, error)

	// UserByID returns the AppUser with the given internal ID
	UserByID(ctx context.Context, id string) (AppUser, error)

	// UpdateUserRole changes a user's stored role
	UpdateUserRole(ctx context.Context, userID string, role Role) (AppUser, error)

	// CourseWithEnrollment returns the course and whether userID has an
	// active enrollment in it, in a single lookup
	CourseWithEnrollment(ctx context.Context, courseID, userID string) (Course, bool, error)

	// CreateCourse creates a course owned by ownerID
	CreateCourse(ctx context.Context, ownerID, title, description string) (Course, error)

	// UpdateCourse updates a course's title and description
	UpdateCourse(ctx context.Context, courseID, title, description string) (Course, error)

	// DeleteCourse removes a course and its enrollments
	DeleteCourse(ctx context.Context, courseID string) error

	// ListCoursesForUser returns the courses the user owns or is
	// enrolled in; when all is true, every course is returned
	ListCoursesForUser(ctx context.Context, userID string, all bool) ([]Course, error)

	// Enroll creates an enrollment for (userID, courseID); enrolling
	// twice is a no-op
	Enroll(ctx context.Context, userID, courseID string) (Enrollment, error)

	// Unenroll removes the enrollment for (userID, courseID)
	Unenroll(ctx context.Context, userID, courseID string) error

	// Ping verifies the backing storage is reachable
	Ping(ctx context.Context) error
}
