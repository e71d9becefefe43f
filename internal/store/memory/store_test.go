// internal/store/memory/store_test.go
package memory

import (
	"context"
	"errors"
	"testing"

	"coursegate/internal/store"
)

func TestSeedUserAndLookup(t *testing.T) {
	s := New()
	ctx := context.Background()

	seeded := s.SeedUser(store.AppUser{ExternalID: "ext-1", Email: "u@example.com", Role: store.RoleStudent})
	if seeded.ID == "" {
		t.Fatal("seed did not assign an ID")
	}

	byExt, err := s.UserByExternalID(ctx, "ext-1")
	if err != nil {
		t.Fatalf("UserByExternalID: %v", err)
	}
	if byExt.ID != seeded.ID {
		t.Errorf("got ID %q, want %q", byExt.ID, seeded.ID)
	}

	byID, err := s.UserByID(ctx, seeded.ID)
	if err != nil {
		t.Fatalf("UserByID: %v", err)
	}
	if byID.ExternalID != "ext-1" {
		t.Errorf("got external ID %q, want ext-1", byID.ExternalID)
	}

	if _, err := s.UserByExternalID(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := s.UserByID(ctx, "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestUpdateUserRole(t *testing.T) {
	s := New()
	ctx := context.Background()
	seeded := s.SeedUser(store.AppUser{ExternalID: "ext-1", Role: store.RoleStudent})

	updated, err := s.UpdateUserRole(ctx, seeded.ID, store.RoleInstructor)
	if err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	if updated.Role != store.RoleInstructor {
		t.Errorf("got role %q, want instructor", updated.Role)
	}

	stored, _ := s.UserByID(ctx, seeded.ID)
	if stored.Role != store.RoleInstructor {
		t.Errorf("role change not persisted, got %q", stored.Role)
	}

	if _, err := s.UpdateUserRole(ctx, "nobody", store.RoleAdmin); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestCourseLifecycle(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := s.SeedUser(store.AppUser{ExternalID: "ext-owner", Role: store.RoleInstructor})

	course, err := s.CreateCourse(ctx, owner.ID, "Algebra", "intro course")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.ID == "" || course.OwnerID != owner.ID {
		t.Fatalf("unexpected course: %+v", course)
	}

	got, enrolled, err := s.CourseWithEnrollment(ctx, course.ID, owner.ID)
	if err != nil {
		t.Fatalf("CourseWithEnrollment: %v", err)
	}
	if got.Title != "Algebra" || enrolled {
		t.Errorf("got title %q enrolled %v", got.Title, enrolled)
	}

	updated, err := s.UpdateCourse(ctx, course.ID, "Algebra II", "second course")
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Title != "Algebra II" {
		t.Errorf("got title %q after update", updated.Title)
	}

	if err := s.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if _, _, err := s.CourseWithEnrollment(ctx, course.ID, owner.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v after delete, want ErrNotFound", err)
	}
	if err := s.DeleteCourse(ctx, course.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v on double delete, want ErrNotFound", err)
	}
}

func TestEnrollment(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := s.SeedUser(store.AppUser{ExternalID: "ext-owner"})
	student := s.SeedUser(store.AppUser{ExternalID: "ext-student"})
	course, _ := s.CreateCourse(ctx, owner.ID, "Algebra", "")

	enrollment, err := s.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if enrollment.UserID != student.ID || enrollment.CourseID != course.ID {
		t.Fatalf("unexpected enrollment: %+v", enrollment)
	}

	// Enrolling twice returns the existing record
	again, err := s.Enroll(ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("Enroll again: %v", err)
	}
	if !again.CreatedAt.Equal(enrollment.CreatedAt) {
		t.Error("duplicate enrollment created a new record")
	}

	_, enrolled, err := s.CourseWithEnrollment(ctx, course.ID, student.ID)
	if err != nil {
		t.Fatalf("CourseWithEnrollment: %v", err)
	}
	if !enrolled {
		t.Error("enrollment not reflected in joint lookup")
	}

	if _, err := s.Enroll(ctx, student.ID, "missing-course"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v for missing course, want ErrNotFound", err)
	}

	if err := s.Unenroll(ctx, student.ID, course.ID); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}
	if err := s.Unenroll(ctx, student.ID, course.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("got %v on double unenroll, want ErrNotFound", err)
	}
}

func TestDeleteCourseRemovesEnrollments(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := s.SeedUser(store.AppUser{ExternalID: "ext-owner"})
	student := s.SeedUser(store.AppUser{ExternalID: "ext-student"})
	course, _ := s.CreateCourse(ctx, owner.ID, "Algebra", "")
	s.Enroll(ctx, student.ID, course.ID)

	if err := s.DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if err := s.Unenroll(ctx, student.ID, course.ID); !errors.Is(err, store.ErrNotFound) {
		t.Error("enrollment survived course deletion")
	}
}

func TestListCoursesForUser(t *testing.T) {
	s := New()
	ctx := context.Background()
	owner := s.SeedUser(store.AppUser{ExternalID: "ext-owner"})
	student := s.SeedUser(store.AppUser{ExternalID: "ext-student"})

	s.CreateCourse(ctx, owner.ID, "Owned", "")
	enrolledIn, _ := s.CreateCourse(ctx, owner.ID, "Enrolled", "")
	s.CreateCourse(ctx, owner.ID, "Unrelated", "")
	s.Enroll(ctx, student.ID, enrolledIn.ID)

	visible, err := s.ListCoursesForUser(ctx, student.ID, false)
	if err != nil {
		t.Fatalf("ListCoursesForUser: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != enrolledIn.ID {
		t.Errorf("student sees %d courses, want only the enrolled one", len(visible))
	}

	ownerVisible, err := s.ListCoursesForUser(ctx, owner.ID, false)
	if err != nil {
		t.Fatalf("ListCoursesForUser: %v", err)
	}
	if len(ownerVisible) != 3 {
		t.Errorf("owner sees %d courses, want 3", len(ownerVisible))
	}

	all, err := s.ListCoursesForUser(ctx, student.ID, true)
	if err != nil {
		t.Fatalf("ListCoursesForUser all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("catalog has %d courses, want 3", len(all))
	}
}
