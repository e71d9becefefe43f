// internal/identity/oidcprov/provider.go
package oidcprov

import (
	"context"
	"fmt"

	"coursegate/internal/identity"
	"coursegate/internal/observability/logging"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Provider resolves access tokens against an OIDC identity provider's
// UserInfo endpoint. Every resolution is a remote call with
// provider-defined latency and error semantics; the Gate wraps it with
// the timeout and the circuit breaker.
type Provider struct {
	logger   *logging.Logger
	provider *oidc.Provider
}

// Config holds OIDC provider configuration
type Config struct {
	// Issuer is the OIDC issuer URL
	Issuer string
}

// New creates an OIDC identity provider. Discovery happens once at
// construction time.
func New(ctx context.Context, config Config, logger *logging.Logger) (*Provider, error) {
	logger = logger.WithModule("identity.oidc")

	if config.Issuer == "" {
		return nil, fmt.Errorf("OIDC identity provider enabled but no issuer provided")
	}

	logger.Debug("Initializing OIDC provider", "issuer", config.Issuer)
	provider, err := oidc.NewProvider(ctx, config.Issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OIDC provider: %w", err)
	}

	return &Provider{
		logger:   logger,
		provider: provider,
	}, nil
}

// Name returns the name of this provider
func (p *Provider) Name() string {
	return "oidc"
}

// Resolve exchanges the access token for the identity it proves via the
// provider's UserInfo endpoint
func (p *Provider) Resolve(ctx context.Context, credential string) (*identity.Identity, error) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: credential,
		TokenType:   "Bearer",
	})

	userInfo, err := p.provider.UserInfo(ctx, tokenSource)
	if err != nil {
		return nil, fmt.Errorf("userinfo lookup failed: %w", err)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
	}
	// Claims beyond subject and email are best-effort
	_ = userInfo.Claims(&claims)

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	return &identity.Identity{
		Subject:  userInfo.Subject,
		Provider: p.Name(),
		Email:    userInfo.Email,
		Name:     name,
		Attributes: map[string]interface{}{
			"email_verified": userInfo.EmailVerified,
		},
	}, nil
}
