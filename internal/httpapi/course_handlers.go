// internal/httpapi/course_handlers.go
package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"coursegate/internal/access"
	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"
	"coursegate/internal/store"

	"github.com/gorilla/mux"
)

type createCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateCourseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// me returns the caller's application account
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// listCourses returns the courses visible to the caller. Instructors
// and admins see the whole catalog, students see owned plus enrolled.
func (a *API) listCourses(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	all := user.EffectiveRole() == store.RoleInstructor || user.EffectiveRole() == store.RoleAdmin
	courses, err := a.store.ListCoursesForUser(r.Context(), user.ID, all)
	if err != nil {
		a.logger.WithContext(r.Context()).Error("Course listing failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	out := make([]courseResponse, 0, len(courses))
	for _, c := range courses {
		out = append(out, newCourseResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// createCourse creates a course owned by the caller. Course creation
// is an authoring capability, so students are refused.
func (a *API) createCourse(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	role := user.EffectiveRole()
	if role != store.RoleInstructor && role != store.RoleAdmin {
		respondError(w, http.StatusForbidden, "insufficient permission")
		return
	}

	var req createCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	course, err := a.store.CreateCourse(r.Context(), user.ID, req.Title, req.Description)
	if err != nil {
		a.logger.WithContext(r.Context()).Error("Course creation failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, newCourseResponse(course))
}

// getCourse returns a single course. The view middleware has already
// authorized the caller and attached the grant.
func (a *API) getCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)[access.CourseIDVar]
	grant, _ := access.GrantFromContext(r.Context())

	course, _, err := a.store.CourseWithEnrollment(r.Context(), courseID, grant.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Course lookup failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	writeJSON(w, http.StatusOK, newCourseResponse(course))
}

// updateCourse replaces the course's editable fields
func (a *API) updateCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)[access.CourseIDVar]

	var req updateCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	course, err := a.store.UpdateCourse(r.Context(), courseID, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Course update failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	writeJSON(w, http.StatusOK, newCourseResponse(course))
}

// deleteCourse removes a course and its enrollments
func (a *API) deleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)[access.CourseIDVar]

	if err := a.store.DeleteCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Course deletion failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// enroll adds the caller to the course roster
func (a *API) enroll(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	courseID := mux.Vars(r)[access.CourseIDVar]

	enrollment, err := a.store.Enroll(r.Context(), user.ID, courseID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Enrollment failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	writeJSON(w, http.StatusCreated, enrollmentResponse{
		UserID:    enrollment.UserID,
		CourseID:  enrollment.CourseID,
		CreatedAt: enrollment.CreatedAt,
	})
}

// unenroll removes the caller from the course roster
func (a *API) unenroll(w http.ResponseWriter, r *http.Request) {
	user, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	courseID := mux.Vars(r)[access.CourseIDVar]

	if err := a.store.Unenroll(r.Context(), user.ID, courseID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "enrollment not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Unenrollment failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// introspectAccess evaluates the policy for the caller at the requested
// level without performing the guarded operation. The decision envelope
// is returned with a 200 so callers can distinguish "policy said no"
// from transport failures.
func (a *API) introspectAccess(w http.ResponseWriter, r *http.Request) {
	courseID := mux.Vars(r)[access.CourseIDVar]

	level := access.LevelView
	if raw := r.URL.Query().Get("level"); raw != "" {
		parsed, err := access.ParseLevel(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "unknown access level")
			return
		}
		level = parsed
	}

	ident := identity.FromContext(r.Context())
	result := a.policy.CheckCourseAccess(r.Context(), courseID, level, ident)

	if result.Authorized() {
		writeJSON(w, http.StatusOK, map[string]any{
			"authorized": true,
			"level":      level.String(),
			"user_id":    result.UserID,
			"role":       string(result.Role),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authorized": false,
		"level":      level.String(),
		"status":     result.Status,
		"message":    result.Message,
	})
}
