// internal/httpapi/user_handlers.go
package httpapi

import (
	"errors"
	"net/http"

	"coursegate/internal/observability/logging"
	"coursegate/internal/store"

	"github.com/gorilla/mux"
)

type updateRoleRequest struct {
	Role string `json:"role"`
}

// updateUserRole changes a user's stored role. Only admins may do this;
// the check is a role gate rather than a course-level policy check.
func (a *API) updateUserRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := a.currentUser(w, r)
	if !ok {
		return
	}
	if caller.EffectiveRole() != store.RoleAdmin {
		respondError(w, http.StatusForbidden, "insufficient permission")
		return
	}

	var req updateRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	role := store.Role(req.Role)
	if !role.Valid() {
		respondError(w, http.StatusBadRequest, "unknown role")
		return
	}

	userID := mux.Vars(r)["userID"]
	user, err := a.store.UpdateUserRole(r.Context(), userID, role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		a.logger.WithContext(r.Context()).Error("Role update failed", logging.Err(err))
		respondError(w, http.StatusServiceUnavailable, "authorization unavailable")
		return
	}

	a.logger.WithContext(r.Context()).Info("User role updated",
		"user_id", user.ID,
		"role", string(user.EffectiveRole()),
		"changed_by", caller.ID,
	)
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
