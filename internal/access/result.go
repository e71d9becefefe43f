// internal/access/result.go
package access

import (
	"context"
	"encoding/json"
	"net/http"

	"coursegate/internal/store"
)

// Decision tags the outcome of an access check
type Decision int

const (
	// Authorized indicates the request is allowed
	Authorized Decision = iota

	// Unauthorized indicates no identity was presented (401)
	Unauthorized

	// DegradedIdentity indicates an identity was presented with an
	// empty subject, which happens when upstream resolution is in a
	// degraded fallback state. Kept as a named case rather than folded
	// into Unauthorized; see Config.DegradedMode.
	DegradedIdentity

	// UserNotFound indicates the identity resolved but no AppUser is
	// registered for it (404)
	UserNotFound

	// CourseNotFound indicates the target course does not exist (404)
	CourseNotFound

	// Forbidden indicates identity and records resolved but the
	// permission is insufficient (403)
	Forbidden

	// Unavailable indicates the data collaborator failed (503)
	Unavailable
)

// String returns the lowercase name of the decision
func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	case DegradedIdentity:
		return "degraded_identity"
	case UserNotFound:
		return "user_not_found"
	case CourseNotFound:
		return "course_not_found"
	case Forbidden:
		return "forbidden"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of an access check. It is a value, never
// an error: every failure path carries a stable status code and a
// human-readable message that route handlers map 1:1 onto the transport.
type Result struct {
	// Decision tags the outcome
	Decision Decision

	// UserID is the internal AppUser ID; set when authorized
	UserID string

	// Role is the caller's effective role; set when authorized
	Role store.Role

	// Status is the HTTP status code for denials; zero when authorized
	Status int

	// Message is the human-readable denial reason; empty when authorized
	Message string
}

// Authorized reports whether the check passed
func (r Result) Authorized() bool {
	return r.Decision == Authorized
}

// authorized constructs a success result
func authorized(user store.AppUser) Result {
	return Result{
		Decision: Authorized,
		UserID:   user.ID,
		Role:     user.EffectiveRole(),
	}
}

// denied constructs a denial result
func denied(decision Decision, status int, message string) Result {
	return Result{
		Decision: decision,
		Status:   status,
		Message:  message,
	}
}

// denialBody is the JSON envelope written for denials
type denialBody struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// WriteDenial writes the denial envelope for a failed check. It is a
// pure mapping from the tagged result to the transport; callers must not
// reinterpret the decision.
func WriteDenial(w http.ResponseWriter, r Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(r.Status)
	_ = json.NewEncoder(w).Encode(denialBody{
		Status:  r.Status,
		Message: r.Message,
	})
}

// grantContextKey is the context key for the authorized grant
type grantContextKey struct{}

// Grant is the authorized caller context attached by the middleware
type Grant struct {
	// UserID is the internal AppUser ID
	UserID string

	// Role is the caller's effective role
	Role store.Role
}

// ContextWithGrant attaches an authorized grant to the context
func ContextWithGrant(ctx context.Context, grant Grant) context.Context {
	return context.WithValue(ctx, grantContextKey{}, grant)
}

// GrantFromContext extracts the authorized grant from the context
func GrantFromContext(ctx context.Context) (Grant, bool) {
	grant, ok := ctx.Value(grantContextKey{}).(Grant)
	return grant, ok
}
