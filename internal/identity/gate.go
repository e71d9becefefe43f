// internal/identity/gate.go
package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"coursegate/internal/observability/logging"
	"coursegate/internal/observability/metrics"

	gobreaker "github.com/sony/gobreaker/v2"
)

// Gate resolves the caller's identity with bounded latency and graceful
// degradation when the identity provider is unhealthy. All failure modes
// resolve to a nil identity; nothing escapes as an error.
//
// The circuit breaker and the session cache are process-wide state scoped
// to the Gate instance, injected where needed rather than held in package
// globals. Both are liveness optimizations: a few extra failures before
// the breaker trips, or one early reset under concurrent updates, are
// acceptable.
type Gate struct {
	cfg      Config
	provider Provider
	breaker  *gobreaker.CircuitBreaker[*Identity]
	cache    *sessionCache
	logger   *logging.Logger
	metrics  *metrics.Collector
}

// NewGate creates a Gate around the given provider
func NewGate(cfg Config, provider Provider, logger *logging.Logger, collector *metrics.Collector) *Gate {
	cfg = cfg.withDefaults()
	logger = logger.WithModule("identity.gate")

	g := &Gate{
		cfg:      cfg,
		provider: provider,
		cache:    newSessionCache(cfg.CacheTTL, cfg.CacheSize),
		logger:   logger,
		metrics:  collector,
	}

	g.breaker = gobreaker.NewCircuitBreaker[*Identity](gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1, // half-open admits exactly one probe
		Timeout:     cfg.ResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("Identity breaker state changed",
				"provider", name,
				"from", from.String(),
				"to", to.String(),
			)
			collector.SetBreakerState(name, breakerStateValue(to))
		},
	})

	return g
}

// Resolve resolves the identity proven by the given credential. It
// consults the session cache first, then races the provider lookup
// against the configured timeout under circuit-breaker protection.
// Returns nil on any failure; callers treat nil as anonymous.
func (g *Gate) Resolve(ctx context.Context, credential string) *Identity {
	if strings.TrimSpace(credential) == "" {
		return nil
	}

	key := cacheKey(credential)
	if ident, ok := g.cache.get(key); ok {
		g.metrics.RecordSessionCache(true)
		return ident
	}
	g.metrics.RecordSessionCache(false)

	ident, err := g.breaker.Execute(func() (*Identity, error) {
		return g.resolveUpstream(ctx, credential)
	})
	if err != nil {
		g.recordFailure(ctx, err)
		return nil
	}

	g.metrics.RecordResolution(g.provider.Name(), metrics.OutcomeSuccess)
	g.cache.put(key, ident)
	return ident
}

// Forget drops the cached session for the given credential, forcing the
// next request to re-resolve against the provider
func (g *Gate) Forget(credential string) {
	if strings.TrimSpace(credential) == "" {
		return
	}
	g.cache.invalidate(cacheKey(credential))
}

// Middleware extracts the caller's credential, resolves it, and attaches
// the identity to the request context. Requests without a resolvable
// identity continue anonymously; denial is the policy layer's job.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.LoggerFromContext(ctx)
		if logger == nil {
			logger = g.logger
		}

		credential := g.CredentialFromRequest(r)
		if credential == "" {
			logger.Debug("No credential presented, continuing anonymously")
			next.ServeHTTP(w, r)
			return
		}

		ident := g.Resolve(ctx, credential)
		if ident == nil {
			logger.Debug("Credential did not resolve, continuing anonymously")
			next.ServeHTTP(w, r)
			return
		}

		logger.Debug("Identity resolved", "subject", ident.Subject, "provider", ident.Provider)
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, ident)))
	})
}

// CredentialFromRequest returns the credential presented on the request:
// the Authorization Bearer token when present, otherwise the session
// cookie value
func (g *Gate) CredentialFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if cookie, err := r.Cookie(g.cfg.CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// resolveUpstream issues the provider lookup with a hard timeout. The
// lookup races against the deadline; the loser is detached and its
// eventual result, if any, is discarded.
func (g *Gate) resolveUpstream(ctx context.Context, credential string) (*Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ResolveTimeout)
	defer cancel()

	type outcome struct {
		ident *Identity
		err   error
	}
	// Buffered so a late write from the losing goroutine is dropped
	// instead of blocking it forever
	ch := make(chan outcome, 1)
	go func() {
		ident, err := g.provider.Resolve(ctx, credential)
		ch <- outcome{ident: ident, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		if out.ident == nil {
			return nil, errors.New("identity: provider returned no identity")
		}
		return out.ident, nil
	case <-ctx.Done():
		return nil, ErrUpstreamTimeout
	}
}

// recordFailure classifies a resolution failure for logs and metrics
func (g *Gate) recordFailure(ctx context.Context, err error) {
	logger := logging.LoggerFromContext(ctx)
	if logger == nil {
		logger = g.logger
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.metrics.RecordResolution(g.provider.Name(), metrics.OutcomeCircuitOpen)
		logger.Debug("Identity resolution short-circuited", "provider", g.provider.Name())
	case errors.Is(err, ErrUpstreamTimeout):
		g.metrics.RecordResolution(g.provider.Name(), metrics.OutcomeTimeout)
		logger.Warn("Identity resolution timed out", "provider", g.provider.Name())
	default:
		g.metrics.RecordResolution(g.provider.Name(), metrics.OutcomeError)
		logger.Warn("Identity resolution failed", "provider", g.provider.Name(), logging.Err(err))
	}
}

// cacheKey derives an opaque cache key from a credential so raw tokens
// are never held as map keys
func cacheKey(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])
}

// breakerStateValue maps breaker states onto the gauge values
// (0 = closed, 1 = half-open, 2 = open)
func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
