// internal/access/policy.go
package access

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"
	"coursegate/internal/observability/metrics"
	"coursegate/internal/store"
)

// DegradedMode controls how the policy treats an identity whose subject
// is empty (upstream resolution in a degraded fallback state)
type DegradedMode string

const (
	// DegradedModeDeny fails closed: the caller is treated as not
	// logged in (401). This is the default.
	DegradedModeDeny DegradedMode = "deny"

	// DegradedModeError surfaces the degradation as a service problem
	// (503) instead of silently denying
	DegradedModeError DegradedMode = "error"
)

// CourseReader is the slice of the data collaborator the policy needs
type CourseReader interface {
	UserByExternalID(ctx context.Context, externalID string) (store.AppUser, error)
	CourseWithEnrollment(ctx context.Context, courseID, userID string) (store.Course, bool, error)
}

// Config holds policy configuration
type Config struct {
	// DegradedMode selects the handling of empty-subject identities
	DegradedMode DegradedMode
}

// Policy decides whether a resolved caller may perform an action on a
// course. Each check is a pure function of freshly-fetched facts; no
// state is carried across calls.
type Policy struct {
	store   CourseReader
	mode    DegradedMode
	logger  *logging.Logger
	metrics *metrics.Collector
}

// NewPolicy creates an access policy over the given data collaborator
func NewPolicy(config Config, courseStore CourseReader, logger *logging.Logger, collector *metrics.Collector) (*Policy, error) {
	if courseStore == nil {
		return nil, errors.New("access: course store is required")
	}

	mode := config.DegradedMode
	if mode == "" {
		mode = DegradedModeDeny
	}
	if mode != DegradedModeDeny && mode != DegradedModeError {
		return nil, fmt.Errorf("access: unknown degraded mode %q", mode)
	}

	return &Policy{
		store:   courseStore,
		mode:    mode,
		logger:  logger.WithModule("access.policy"),
		metrics: collector,
	}, nil
}

// CheckCourseAccess decides whether the caller may perform an action
// requiring the given level on the course. The resolution order is
// fixed: identity, then user record, then course record; an admin role
// short-circuits the lattice entirely.
func (p *Policy) CheckCourseAccess(ctx context.Context, courseID string, level Level, ident *identity.Identity) Result {
	result := p.evaluate(ctx, courseID, level, ident)
	p.metrics.RecordAuthorization(level.String(), result.Decision.String())
	return result
}

func (p *Policy) evaluate(ctx context.Context, courseID string, level Level, ident *identity.Identity) Result {
	if ident == nil {
		return denied(Unauthorized, http.StatusUnauthorized, "authentication required")
	}

	if ident.Subject == "" {
		if p.mode == DegradedModeError {
			return denied(DegradedIdentity, http.StatusServiceUnavailable, "identity resolution degraded")
		}
		return denied(DegradedIdentity, http.StatusUnauthorized, "authentication required")
	}

	user, err := p.store.UserByExternalID(ctx, ident.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return denied(UserNotFound, http.StatusNotFound, "user not found")
		}
		p.logger.WithContext(ctx).Error("User lookup failed", logging.Err(err))
		return denied(Unavailable, http.StatusServiceUnavailable, "authorization unavailable")
	}

	course, enrolled, err := p.store.CourseWithEnrollment(ctx, courseID, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return denied(CourseNotFound, http.StatusNotFound, "course not found")
		}
		p.logger.WithContext(ctx).Error("Course lookup failed", logging.Err(err), "course_id", courseID)
		return denied(Unavailable, http.StatusServiceUnavailable, "authorization unavailable")
	}

	role := user.EffectiveRole()
	isAdmin := role == store.RoleAdmin
	isInstructor := role == store.RoleInstructor
	isOwner := course.OwnerID == user.ID

	// Admins are authorized unconditionally, whatever the level
	if isAdmin {
		return authorized(user)
	}

	switch level {
	case LevelView:
		if isOwner || enrolled || isInstructor {
			return authorized(user)
		}
	case LevelEdit:
		if isOwner || isInstructor {
			return authorized(user)
		}
	case LevelManage, LevelAdmin:
		// Only the owner; instructors do not manage courses they
		// don't own
		if isOwner {
			return authorized(user)
		}
	}

	return denied(Forbidden, http.StatusForbidden, "insufficient permission")
}
