// internal/identity/types.go
package identity

import (
	"context"
	"errors"
	"time"
)

// Identity represents an authenticated identity as reported by an
// external identity provider
type Identity struct {
	// Subject is the provider's unique identifier for this identity
	Subject string

	// Provider is the identity provider that resolved it (e.g. "oidc", "token")
	Provider string

	// Email is the email claim, when the provider reports one
	Email string

	// Name is the display name claim, when the provider reports one
	Name string

	// Attributes contains additional identity information
	Attributes map[string]interface{}
}

// Provider resolves a presented credential into an Identity.
// Implementations talk to the external identity provider and may fail
// with provider-defined error semantics; the Gate is responsible for
// bounding latency and recovering failures.
type Provider interface {
	// Name returns the name of this provider
	Name() string

	// Resolve verifies the credential and returns the identity it proves
	Resolve(ctx context.Context, credential string) (*Identity, error)
}

// ErrUpstreamTimeout indicates the provider did not answer within
// budget. It is distinguished for circuit-breaker bookkeeping and
// metrics; at the HTTP boundary it collapses to an anonymous request.
var ErrUpstreamTimeout = errors.New("identity: upstream timeout")

// Config holds Gate configuration. Zero values fall back to the
// defaults below.
type Config struct {
	// ResolveTimeout is the hard budget for one provider lookup
	ResolveTimeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens
	// the circuit
	FailureThreshold uint32

	// ResetTimeout is how long the circuit stays open before admitting
	// a probe request
	ResetTimeout time.Duration

	// CacheTTL is the freshness window for cached sessions
	CacheTTL time.Duration

	// CacheSize caps the number of cached sessions
	CacheSize int

	// CookieName is the session cookie consulted when no Authorization
	// header is present
	CookieName string
}

// Defaults for Gate configuration
const (
	DefaultResolveTimeout   = 3 * time.Second
	DefaultFailureThreshold = 3
	DefaultResetTimeout     = 30 * time.Second
	DefaultCacheTTL         = 10 * time.Minute
	DefaultCacheSize        = 4096
	DefaultCookieName       = "coursegate_session"
)

// withDefaults returns a copy of the config with zero values filled in
func (c Config) withDefaults() Config {
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = DefaultResolveTimeout
	}
	if c.FailureThreshold == 0 {
		c.FailureThreshold = DefaultFailureThreshold
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = DefaultResetTimeout
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.CacheSize <= 0 {
		c.CacheSize = DefaultCacheSize
	}
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	return c
}
