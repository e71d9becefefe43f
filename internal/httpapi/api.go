// internal/httpapi/api.go
package httpapi

import (
	"net/http"

	"coursegate/internal/access"
	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"
	"coursegate/internal/store"

	"github.com/gorilla/mux"
)

// API is the HTTP surface over the identity gate, the access policy,
// and the data collaborator. Handlers translate tagged policy results
// 1:1 into transport responses and add no interpretation of their own.
type API struct {
	router *mux.Router
	gate   *identity.Gate
	policy *access.Policy
	store  store.Store
	logger *logging.Logger
}

// New creates the API and registers its routes
func New(gate *identity.Gate, policy *access.Policy, st store.Store, logger *logging.Logger) *API {
	a := &API{
		router: mux.NewRouter(),
		gate:   gate,
		policy: policy,
		store:  st,
		logger: logger.WithModule("httpapi"),
	}
	a.setupRoutes()
	return a
}

// Handler returns the route handler. Identity and observability
// middleware are layered on by the server factory.
func (a *API) Handler() http.Handler {
	return a.router
}

// setupRoutes registers all routes
func (a *API) setupRoutes() {
	a.router.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	a.router.HandleFunc("/readyz", a.readyz).Methods(http.MethodGet)

	v1 := a.router.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/me", a.me).Methods(http.MethodGet)
	v1.HandleFunc("/logout", a.logout).Methods(http.MethodPost)

	v1.HandleFunc("/courses", a.listCourses).Methods(http.MethodGet)
	v1.HandleFunc("/courses", a.createCourse).Methods(http.MethodPost)

	// Course routes guarded by the access policy; the middleware
	// attaches the grant consumed by the handlers
	view := a.policy.Middleware(access.LevelView)
	edit := a.policy.Middleware(access.LevelEdit)
	manage := a.policy.Middleware(access.LevelManage)

	v1.Handle("/courses/{courseID}", view(http.HandlerFunc(a.getCourse))).Methods(http.MethodGet)
	v1.Handle("/courses/{courseID}", edit(http.HandlerFunc(a.updateCourse))).Methods(http.MethodPut)
	v1.Handle("/courses/{courseID}", manage(http.HandlerFunc(a.deleteCourse))).Methods(http.MethodDelete)

	v1.HandleFunc("/courses/{courseID}/enrollments", a.enroll).Methods(http.MethodPost)
	v1.HandleFunc("/courses/{courseID}/enrollments", a.unenroll).Methods(http.MethodDelete)
	v1.HandleFunc("/courses/{courseID}/access", a.introspectAccess).Methods(http.MethodGet)

	v1.HandleFunc("/users/{userID}/role", a.updateUserRole).Methods(http.MethodPatch)
}

// healthz reports liveness
func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "coursegate",
	})
}

// readyz reports readiness; the store must be reachable
func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// logout drops the caller's cached session; the credential itself stays
// valid until the identity provider expires it
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if credential := a.gate.CredentialFromRequest(r); credential != "" {
		a.gate.Forget(credential)
	}
	w.WriteHeader(http.StatusNoContent)
}
