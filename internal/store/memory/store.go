// internal/store/memory/store.go
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"coursegate/internal/store"

	"github.com/google/uuid"
)

// Store is an in-memory implementation of store.Store, used in dev mode
// and by tests. All maps are guarded by one mutex; operations are point
// reads and writes, so contention is not a concern at this scale.
type Store struct {
	mu          sync.Mutex
	users       map[string]store.AppUser    // keyed by internal ID
	byExternal  map[string]string           // external ID -> internal ID
	courses     map[string]store.Course     // keyed by course ID
	enrollments map[enrollKey]store.Enrollment

	// now is injectable for tests
	now func() time.Time
}

type enrollKey struct {
	userID   string
	courseID string
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		users:       make(map[string]store.AppUser),
		byExternal:  make(map[string]string),
		courses:     make(map[string]store.Course),
		enrollments: make(map[enrollKey]store.Enrollment),
		now:         time.Now,
	}
}

var _ store.Store = (*Store)(nil)

// SeedUser inserts a user record, generating an ID when none is set.
// Seeding is how users enter the system in dev mode; in production the
// provisioning flow that owns user creation lives outside this service.
func (s *Store) SeedUser(user store.AppUser) store.AppUser {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = user
	if user.ExternalID != "" {
		s.byExternal[user.ExternalID] = user.ID
	}
	return user
}

// UserByExternalID returns the user linked to an identity provider subject
func (s *Store) UserByExternalID(_ context.Context, externalID string) (store.AppUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byExternal[externalID]
	if !ok {
		return store.AppUser{}, store.ErrNotFound
	}
	return s.users[id], nil
}

// UserByID returns the user with the given internal ID
func (s *Store) UserByID(_ context.Context, id string) (store.AppUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return store.AppUser{}, store.ErrNotFound
	}
	return user, nil
}

// UpdateUserRole changes a user's stored role
func (s *Store) UpdateUserRole(_ context.Context, userID string, role store.Role) (store.AppUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return store.AppUser{}, store.ErrNotFound
	}
	user.Role = role
	user.UpdatedAt = s.now().UTC()
	s.users[userID] = user
	return user, nil
}

// CourseWithEnrollment returns the course and whether userID is enrolled
func (s *Store) CourseWithEnrollment(_ context.Context, courseID, userID string) (store.Course, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[courseID]
	if !ok {
		return store.Course{}, false, store.ErrNotFound
	}
	_, enrolled := s.enrollments[enrollKey{userID: userID, courseID: courseID}]
	return course, enrolled, nil
}

// CreateCourse creates a course owned by ownerID
func (s *Store) CreateCourse(_ context.Context, ownerID, title, description string) (store.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	course := store.Course{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.courses[course.ID] = course
	return course, nil
}

// UpdateCourse updates a course's title and description
func (s *Store) UpdateCourse(_ context.Context, courseID, title, description string) (store.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	course, ok := s.courses[courseID]
	if !ok {
		return store.Course{}, store.ErrNotFound
	}
	course.Title = title
	course.Description = description
	course.UpdatedAt = s.now().UTC()
	s.courses[courseID] = course
	return course, nil
}

// DeleteCourse removes a course and its enrollments
func (s *Store) DeleteCourse(_ context.Context, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return store.ErrNotFound
	}
	delete(s.courses, courseID)
	for key := range s.enrollments {
		if key.courseID == courseID {
			delete(s.enrollments, key)
		}
	}
	return nil
}

// ListCoursesForUser returns the courses the user owns or is enrolled
// in; when all is true, every course is returned
func (s *Store) ListCoursesForUser(_ context.Context, userID string, all bool) ([]store.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var courses []store.Course
	for _, course := range s.courses {
		if all || course.OwnerID == userID {
			courses = append(courses, course)
			continue
		}
		if _, enrolled := s.enrollments[enrollKey{userID: userID, courseID: course.ID}]; enrolled {
			courses = append(courses, course)
		}
	}
	sort.Slice(courses, func(i, j int) bool {
		return courses[i].CreatedAt.Before(courses[j].CreatedAt)
	})
	return courses, nil
}

// Enroll creates an enrollment for (userID, courseID)
func (s *Store) Enroll(_ context.Context, userID, courseID string) (store.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.courses[courseID]; !ok {
		return store.Enrollment{}, store.ErrNotFound
	}
	key := enrollKey{userID: userID, courseID: courseID}
	if existing, ok := s.enrollments[key]; ok {
		return existing, nil
	}
	enrollment := store.Enrollment{
		UserID:    userID,
		CourseID:  courseID,
		CreatedAt: s.now().UTC(),
	}
	s.enrollments[key] = enrollment
	return enrollment, nil
}

// Unenroll removes the enrollment for (userID, courseID)
func (s *Store) Unenroll(_ context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := enrollKey{userID: userID, courseID: courseID}
	if _, ok := s.enrollments[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.enrollments, key)
	return nil
}

// Ping reports the store as always reachable
func (s *Store) Ping(_ context.Context) error {
	return nil
}
