// internal/server/factory.go
package server

import (
	"context"
	stdtls "crypto/tls"
	"fmt"

	"coursegate/internal/access"
	"coursegate/internal/config"
	"coursegate/internal/httpapi"
	"coursegate/internal/identity"
	"coursegate/internal/identity/oidcprov"
	"coursegate/internal/identity/token"
	"coursegate/internal/observability"
	"coursegate/internal/observability/logging"
	"coursegate/internal/store"
	"coursegate/internal/store/memory"
	"coursegate/internal/store/pg"
	tlsconfig "coursegate/internal/tls"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize TLS configuration
	var tlsCfg *stdtls.Config
	if cfg.TLS.Enabled {
		tlsSetup := &tlsconfig.Config{
			Logger:   logger,
			CertPath: cfg.TLS.CertPath,
			KeyPath:  cfg.TLS.KeyPath,
		}
		tlsCfg, err = tlsSetup.ServerConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
	}

	// Initialize the data collaborator
	st, err := createStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// Initialize the identity provider and the gate around it
	provider, err := createIdentityProvider(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize identity provider: %w", err)
	}

	gate := identity.NewGate(identity.Config{
		ResolveTimeout:   cfg.Identity.ResolveTimeout,
		FailureThreshold: cfg.Identity.BreakerThreshold,
		ResetTimeout:     cfg.Identity.BreakerReset,
		CacheTTL:         cfg.Identity.CacheTTL,
		CacheSize:        cfg.Identity.CacheSize,
		CookieName:       cfg.Identity.CookieName,
	}, provider, logger, obs.Metrics)

	// Initialize the access policy
	policy, err := access.NewPolicy(access.Config{
		DegradedMode: access.DegradedMode(cfg.Access.DegradedMode),
	}, st, logger, obs.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize access policy: %w", err)
	}

	// Initialize the HTTP API
	api := httpapi.New(gate, policy, st, logger)

	serverConfig := Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		TLSConfig:       tlsCfg,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}

	// Complete middleware chain: observability -> identity gate -> routes
	handler := obs.Middleware(gate.Middleware(api.Handler()))

	srv := New(serverConfig, handler, obs.MetricsHandler(), logger)
	return srv, nil
}

// createStore selects the data collaborator backend. An empty database
// URL selects the in-memory store with a seeded admin, which is only
// meant for development.
func createStore(ctx context.Context, cfg *config.Config, logger *logging.Logger) (store.Store, error) {
	if cfg.Database.URL == "" {
		logger.Warn("No database URL configured, using in-memory store (development mode)")
		mem := memory.New()
		admin := mem.SeedUser(store.AppUser{
			ExternalID: "admin",
			Email:      "admin@localhost",
			Name:       "Local Admin",
			Role:       store.RoleAdmin,
		})
		logger.Info("Seeded development admin", "user_id", admin.ID)
		return mem, nil
	}

	pgStore, err := pg.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if err := pgStore.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	logger.Info("Connected to database", "url", logging.RedactedDSN(cfg.Database.URL))
	return pgStore, nil
}

// createIdentityProvider builds the configured identity provider
func createIdentityProvider(ctx context.Context, cfg *config.Config, logger *logging.Logger) (identity.Provider, error) {
	switch cfg.Identity.Provider {
	case "oidc":
		return oidcprov.New(ctx, oidcprov.Config{
			Issuer: cfg.Identity.OIDC.Issuer,
		}, logger)
	case "token":
		return token.New(token.Config{
			Secret:   cfg.Identity.Token.Secret,
			Issuer:   cfg.Identity.Token.Issuer,
			Audience: cfg.Identity.Token.Audience,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown identity provider: %q", cfg.Identity.Provider)
	}
}
