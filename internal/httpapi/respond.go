// internal/httpapi/respond.go
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"
	"coursegate/internal/store"
)

const maxBodyBytes = 1 << 20

// errorBody is the denial envelope shared with the policy middleware
type errorBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type userResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type courseResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type enrollmentResponse struct {
	UserID    string    `json:"user_id"`
	CourseID  string    `json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u store.AppUser) userResponse {
	return userResponse{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.EffectiveRole()),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

func newCourseResponse(c store.Course) courseResponse {
	return courseResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Title:       c.Title,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// writeJSON serializes v into the response with the given status
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError writes the standard error envelope
func respondError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Status: status, Message: message})
}

// decodeJSON reads a size-capped JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

// currentUser resolves the caller's application account from the
// identity attached by the gate middleware. It mirrors the policy's
// ordering: missing identity before unknown user before store failure.
func (a *API) currentUser(w http.ResponseWriter, r *http.Request) (store.AppUser, bool) {
	ident := identity.FromContext(r.Context())
	if ident == nil || ident.Subject == "" {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return store.AppUser{}, false
	}
	user, err := a.store.UserByExternalID(r.Context(), ident.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return store.AppUser{}, false
		}
		a.logger.WithContext(r.Context()).Error("User lookup failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return store.AppUser{}, false
	}
	return user, true
}
