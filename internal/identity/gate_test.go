// internal/identity/gate_test.go
package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"coursegate/internal/observability/logging"
	"coursegate/internal/observability/metrics"
)

// stubProvider is a scriptable identity provider
type stubProvider struct {
	mu      sync.Mutex
	calls   int
	resolve func(ctx context.Context, credential string) (*Identity, error)
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Resolve(ctx context.Context, credential string) (*Identity, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.resolve(ctx, credential)
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger("error")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	return logger
}

func newTestGate(t *testing.T, cfg Config, provider Provider) *Gate {
	t.Helper()
	return NewGate(cfg, provider, testLogger(t), metrics.NewCollector())
}

func TestGateResolveEmptyCredential(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return &Identity{Subject: "user-1"}, nil
	}}
	gate := newTestGate(t, Config{}, provider)

	if ident := gate.Resolve(context.Background(), ""); ident != nil {
		t.Errorf("expected nil identity for empty credential, got %+v", ident)
	}
	if ident := gate.Resolve(context.Background(), "   "); ident != nil {
		t.Errorf("expected nil identity for blank credential, got %+v", ident)
	}
	if provider.callCount() != 0 {
		t.Errorf("provider called %d times for empty credentials", provider.callCount())
	}
}

func TestGateResolveCachesSession(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return &Identity{Subject: "user-1", Provider: "stub"}, nil
	}}
	gate := newTestGate(t, Config{}, provider)

	first := gate.Resolve(context.Background(), "tok-1")
	if first == nil || first.Subject != "user-1" {
		t.Fatalf("unexpected identity: %+v", first)
	}

	second := gate.Resolve(context.Background(), "tok-1")
	if second == nil || second.Subject != "user-1" {
		t.Fatalf("unexpected identity on cache hit: %+v", second)
	}

	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1 (second lookup served from cache)", provider.callCount())
	}
}

func TestGateForgetForcesReresolution(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return &Identity{Subject: "user-1"}, nil
	}}
	gate := newTestGate(t, Config{}, provider)

	gate.Resolve(context.Background(), "tok-1")
	gate.Forget("tok-1")
	gate.Resolve(context.Background(), "tok-1")

	if provider.callCount() != 2 {
		t.Errorf("provider called %d times, want 2 after Forget", provider.callCount())
	}
}

func TestGateStaleCacheEntryReresolves(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return &Identity{Subject: "user-1"}, nil
	}}
	gate := newTestGate(t, Config{CacheTTL: 10 * time.Minute}, provider)

	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gate.cache.now = func() time.Time { return current }

	gate.Resolve(context.Background(), "tok-1")
	current = current.Add(11 * time.Minute)
	gate.Resolve(context.Background(), "tok-1")

	if provider.callCount() != 2 {
		t.Errorf("provider called %d times, want 2 after TTL expiry", provider.callCount())
	}
}

func TestGateBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return nil, errors.New("upstream down")
	}}
	gate := newTestGate(t, Config{FailureThreshold: 3}, provider)

	for i := 0; i < 3; i++ {
		if ident := gate.Resolve(context.Background(), "tok-1"); ident != nil {
			t.Fatalf("resolution %d unexpectedly succeeded", i)
		}
	}
	if provider.callCount() != 3 {
		t.Fatalf("provider called %d times, want 3", provider.callCount())
	}

	// Circuit is open now; further resolutions short-circuit without
	// touching the provider
	if ident := gate.Resolve(context.Background(), "tok-1"); ident != nil {
		t.Fatal("resolution succeeded while circuit open")
	}
	if provider.callCount() != 3 {
		t.Errorf("provider called %d times while circuit open, want 3", provider.callCount())
	}
}

func TestGateBreakerRecoversAfterReset(t *testing.T) {
	var healthy bool
	var mu sync.Mutex
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		mu.Lock()
		defer mu.Unlock()
		if !healthy {
			return nil, errors.New("upstream down")
		}
		return &Identity{Subject: "user-1"}, nil
	}}
	gate := newTestGate(t, Config{
		FailureThreshold: 3,
		ResetTimeout:     50 * time.Millisecond,
	}, provider)

	for i := 0; i < 3; i++ {
		gate.Resolve(context.Background(), "tok-1")
	}
	if provider.callCount() != 3 {
		t.Fatalf("provider called %d times, want 3", provider.callCount())
	}

	mu.Lock()
	healthy = true
	mu.Unlock()

	// Still inside the reset window: short-circuited
	if ident := gate.Resolve(context.Background(), "tok-1"); ident != nil {
		t.Fatal("resolution succeeded before reset window elapsed")
	}
	if provider.callCount() != 3 {
		t.Fatalf("provider probed before reset window elapsed")
	}

	time.Sleep(60 * time.Millisecond)

	// The reset window has elapsed; the next resolution is the single
	// half-open probe, and its success closes the circuit
	if ident := gate.Resolve(context.Background(), "tok-1"); ident == nil {
		t.Fatal("probe resolution failed after upstream recovered")
	}
	if provider.callCount() != 4 {
		t.Errorf("provider called %d times, want 4", provider.callCount())
	}

	// Closed again: a different credential resolves normally
	if ident := gate.Resolve(context.Background(), "tok-2"); ident == nil {
		t.Error("resolution failed after circuit closed")
	}
}

func TestGateResolveTimesOutHungProvider(t *testing.T) {
	provider := &stubProvider{resolve: func(ctx context.Context, _ string) (*Identity, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	gate := newTestGate(t, Config{ResolveTimeout: 20 * time.Millisecond}, provider)

	start := time.Now()
	ident := gate.Resolve(context.Background(), "tok-1")
	elapsed := time.Since(start)

	if ident != nil {
		t.Errorf("expected nil identity from hung provider, got %+v", ident)
	}
	if elapsed > time.Second {
		t.Errorf("resolution took %v, should be bounded by the resolve timeout", elapsed)
	}
}

func TestGateCredentialFromRequest(t *testing.T) {
	provider := &stubProvider{resolve: func(context.Context, string) (*Identity, error) {
		return &Identity{Subject: "user-1"}, nil
	}}
	gate := newTestGate(t, Config{CookieName: "coursegate_session"}, provider)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := gate.CredentialFromRequest(r); got != "" {
		t.Errorf("expected empty credential, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok-header")
	if got := gate.CredentialFromRequest(r); got != "tok-header" {
		t.Errorf("got %q, want bearer token", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "coursegate_session", Value: "tok-cookie"})
	if got := gate.CredentialFromRequest(r); got != "tok-cookie" {
		t.Errorf("got %q, want cookie value", got)
	}

	// The header wins when both are present
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok-header")
	r.AddCookie(&http.Cookie{Name: "coursegate_session", Value: "tok-cookie"})
	if got := gate.CredentialFromRequest(r); got != "tok-header" {
		t.Errorf("got %q, want header to take precedence", got)
	}
}

func TestGateMiddleware(t *testing.T) {
	provider := &stubProvider{resolve: func(_ context.Context, credential string) (*Identity, error) {
		if credential == "good" {
			return &Identity{Subject: "user-1", Provider: "stub"}, nil
		}
		return nil, errors.New("unknown credential")
	}}
	gate := newTestGate(t, Config{}, provider)

	var seen *Identity
	handler := gate.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No credential: the request continues anonymously
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous request got status %d", rec.Code)
	}
	if seen != nil {
		t.Errorf("expected no identity on anonymous request, got %+v", seen)
	}

	// Bad credential: still anonymous, denial is the policy's job
	rec = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bad")
	handler.ServeHTTP(rec, r)
	if seen != nil {
		t.Errorf("expected no identity for bad credential, got %+v", seen)
	}

	// Good credential: the identity is attached
	rec = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer good")
	handler.ServeHTTP(rec, r)
	if seen == nil || seen.Subject != "user-1" {
		t.Errorf("expected resolved identity, got %+v", seen)
	}
}
