// internal/access/middleware.go
package access

import (
	"net/http"

	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"

	"github.com/gorilla/mux"
)

// CourseIDVar is the mux route variable carrying the target course ID
const CourseIDVar = "courseID"

// Middleware creates an HTTP middleware that guards a course route with
// the given level. On success the authorized grant is attached to the
// request context; on failure the denial envelope is written and the
// chain stops.
func (p *Policy) Middleware(level Level) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := logging.LoggerFromContext(ctx)
			if logger == nil {
				logger = p.logger
			}

			courseID := mux.Vars(r)[CourseIDVar]
			ident := identity.FromContext(ctx)

			result := p.CheckCourseAccess(ctx, courseID, level, ident)
			if !result.Authorized() {
				logger.Info("Course access denied",
					"course_id", courseID,
					"level", level.String(),
					"decision", result.Decision.String(),
					"status", result.Status,
				)
				WriteDenial(w, result)
				return
			}

			logger.Debug("Course access granted",
				"course_id", courseID,
				"level", level.String(),
				"user_id", result.UserID,
				"role", string(result.Role),
			)

			ctx = ContextWithGrant(ctx, Grant{UserID: result.UserID, Role: result.Role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
