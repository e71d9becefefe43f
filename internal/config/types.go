// internal/config/types.go
package config

import (
	"time"
)

// Config represents the complete application configuration
type Config struct {
	// Server holds HTTP server configuration
	Server struct {
		// Address is the address to listen on
		Address string
		// ShutdownTimeout is the maximum time to wait for a graceful shutdown
		ShutdownTimeout time.Duration
	}

	// Metrics holds metrics server configuration
	Metrics struct {
		// Address is the address to listen on for the metrics server
		Address string
	}

	// TLS holds TLS configuration
	TLS struct {
		// Enabled indicates whether TLS is enabled
		Enabled bool
		// CertPath is the path to the TLS certificate
		CertPath string
		// KeyPath is the path to the TLS key
		KeyPath string
	}

	// Database holds data collaborator configuration
	Database struct {
		// URL is the PostgreSQL DSN; empty selects the in-memory store
		// (development mode)
		URL string
	}

	// Identity holds identity resolution configuration
	Identity struct {
		// Provider selects the identity provider ("oidc" or "token")
		Provider string

		// OIDC holds OIDC provider configuration
		OIDC struct {
			// Issuer is the OIDC issuer URL
			Issuer string
		}

		// Token holds service-token provider configuration
		Token struct {
			// Secret is the HS256 signing secret
			Secret string
			// Issuer is the expected token issuer
			Issuer string
			// Audience is the expected audience; empty skips the check
			Audience string
		}

		// ResolveTimeout is the hard budget for one provider lookup
		ResolveTimeout time.Duration
		// BreakerThreshold is the consecutive-failure count that opens
		// the circuit
		BreakerThreshold uint32
		// BreakerReset is how long the circuit stays open
		BreakerReset time.Duration
		// CacheTTL is the session cache freshness window
		CacheTTL time.Duration
		// CacheSize caps the number of cached sessions
		CacheSize int
		// CookieName is the session cookie name
		CookieName string
	}

	// Access holds authorization policy configuration
	Access struct {
		// DegradedMode selects how empty-subject identities are handled
		// ("deny" or "error")
		DegradedMode string
	}

	// Observability holds observability configuration
	Observability struct {
		// LogLevel is the minimum log level to emit
		LogLevel string
	}
}
