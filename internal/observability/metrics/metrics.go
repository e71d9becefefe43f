// internal/observability/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Common label names for consistent metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelProvider = "provider"
	LabelOutcome  = "outcome"
	LabelLevel    = "level"
	LabelDecision = "decision"
	LabelResult   = "result"
)

// Outcome values for identity resolutions
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeTimeout     = "timeout"
	OutcomeCircuitOpen = "circuit_open"
)

var (
	// RequestsTotal counts all HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegate_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	// RequestDuration tracks the duration of HTTP requests
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursegate_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	// ResolutionsTotal counts identity resolution attempts by outcome
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegate_identity_resolutions_total",
			Help: "Total number of identity resolution attempts",
		},
		[]string{LabelProvider, LabelOutcome},
	)

	// SessionCacheTotal counts session cache lookups by result
	SessionCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegate_session_cache_total",
			Help: "Total number of session cache lookups",
		},
		[]string{LabelResult},
	)

	// BreakerState reports the identity circuit breaker state
	// (0 = closed, 1 = half-open, 2 = open)
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "coursegate_identity_breaker_state",
			Help: "State of the identity provider circuit breaker",
		},
		[]string{LabelProvider},
	)

	// AuthorizationsTotal counts course access checks by level and decision
	AuthorizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursegate_authorizations_total",
			Help: "Total number of course access checks",
		},
		[]string{LabelLevel, LabelDecision},
	)
)

// Collector provides methods for recording metrics
type Collector struct{}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{}
}

// RecordRequest records metrics for an HTTP request
func (c *Collector) RecordRequest(method, path string, status int, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordResolution records an identity resolution attempt
func (c *Collector) RecordResolution(provider, outcome string) {
	ResolutionsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordSessionCache records a session cache lookup
func (c *Collector) RecordSessionCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	SessionCacheTotal.WithLabelValues(result).Inc()
}

// SetBreakerState records the circuit breaker state for a provider
func (c *Collector) SetBreakerState(provider string, state float64) {
	BreakerState.WithLabelValues(provider).Set(state)
}

// RecordAuthorization records a course access check
func (c *Collector) RecordAuthorization(level, decision string) {
	AuthorizationsTotal.WithLabelValues(level, decision).Inc()
}

// Handler returns an HTTP handler for exposing metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
