// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads the configuration from all sources and returns the merged result
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	Settings.PopulateViperDefaults(v)

	// Set up environment variable handling
	v.SetEnvPrefix("COURSEGATE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Load from config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// It's okay if the config file doesn't exist, but other errors should be reported
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Create the config object
	config := &Config{}

	// Populate server configuration
	config.Server.Address = v.GetString("SERVER_ADDR")
	shutdownTimeout, err := time.ParseDuration(v.GetString("SHUTDOWN_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}
	config.Server.ShutdownTimeout = shutdownTimeout

	// Populate metrics configuration
	config.Metrics.Address = v.GetString("METRICS_ADDR")

	// Populate TLS configuration
	config.TLS.Enabled = v.GetBool("TLS_ENABLED")
	config.TLS.CertPath = v.GetString("TLS_CERT_PATH")
	config.TLS.KeyPath = v.GetString("TLS_KEY_PATH")

	// Populate database configuration
	config.Database.URL = v.GetString("DATABASE_URL")

	// Populate identity configuration
	config.Identity.Provider = strings.ToLower(v.GetString("IDENTITY_PROVIDER"))
	config.Identity.OIDC.Issuer = v.GetString("IDENTITY_OIDC_ISSUER")
	config.Identity.Token.Secret = v.GetString("IDENTITY_TOKEN_SECRET")
	config.Identity.Token.Issuer = v.GetString("IDENTITY_TOKEN_ISSUER")
	config.Identity.Token.Audience = v.GetString("IDENTITY_TOKEN_AUDIENCE")

	resolveTimeout, err := time.ParseDuration(v.GetString("IDENTITY_RESOLVE_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity resolve timeout: %w", err)
	}
	config.Identity.ResolveTimeout = resolveTimeout

	threshold := v.GetInt("IDENTITY_BREAKER_THRESHOLD")
	if threshold <= 0 {
		return nil, fmt.Errorf("identity breaker threshold must be positive, got %d", threshold)
	}
	config.Identity.BreakerThreshold = uint32(threshold)

	breakerReset, err := time.ParseDuration(v.GetString("IDENTITY_BREAKER_RESET"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity breaker reset: %w", err)
	}
	config.Identity.BreakerReset = breakerReset

	cacheTTL, err := time.ParseDuration(v.GetString("IDENTITY_CACHE_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid identity cache TTL: %w", err)
	}
	config.Identity.CacheTTL = cacheTTL

	config.Identity.CacheSize = v.GetInt("IDENTITY_CACHE_SIZE")
	config.Identity.CookieName = v.GetString("IDENTITY_COOKIE_NAME")

	// Populate access policy configuration
	config.Access.DegradedMode = strings.ToLower(v.GetString("ACCESS_DEGRADED_MODE"))

	// Populate observability configuration
	config.Observability.LogLevel = v.GetString("LOG_LEVEL")

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig performs validation on the loaded configuration
func validateConfig(cfg *Config) error {
	// Validate TLS configuration
	if cfg.TLS.Enabled {
		if cfg.TLS.CertPath == "" {
			return fmt.Errorf("TLS certificate path is required when TLS is enabled")
		}
		if cfg.TLS.KeyPath == "" {
			return fmt.Errorf("TLS key path is required when TLS is enabled")
		}

		// Check if certificate and key files exist
		if _, err := os.Stat(cfg.TLS.CertPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS certificate file not found: %s", cfg.TLS.CertPath)
		}
		if _, err := os.Stat(cfg.TLS.KeyPath); os.IsNotExist(err) {
			return fmt.Errorf("TLS key file not found: %s", cfg.TLS.KeyPath)
		}
	}

	// Validate identity configuration
	if err := validateIdentityConfig(cfg); err != nil {
		return err
	}

	// Validate access policy configuration
	if cfg.Access.DegradedMode != "deny" && cfg.Access.DegradedMode != "error" {
		return fmt.Errorf("access degraded mode must be \"deny\" or \"error\", got %q", cfg.Access.DegradedMode)
	}

	return nil
}

// validateIdentityConfig validates identity resolution configuration
func validateIdentityConfig(cfg *Config) error {
	switch cfg.Identity.Provider {
	case "oidc":
		if cfg.Identity.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when the OIDC identity provider is selected")
		}
	case "token":
		if cfg.Identity.Token.Secret == "" {
			return fmt.Errorf("service-token secret is required when the token identity provider is selected")
		}
		if cfg.Identity.Token.Issuer == "" {
			return fmt.Errorf("service-token issuer is required when the token identity provider is selected")
		}
	default:
		return fmt.Errorf("unknown identity provider: %q", cfg.Identity.Provider)
	}

	if cfg.Identity.ResolveTimeout <= 0 {
		return fmt.Errorf("identity resolve timeout must be positive")
	}
	if cfg.Identity.BreakerReset <= 0 {
		return fmt.Errorf("identity breaker reset must be positive")
	}
	if cfg.Identity.CacheTTL <= 0 {
		return fmt.Errorf("identity cache TTL must be positive")
	}
	if cfg.Identity.CacheSize <= 0 {
		return fmt.Errorf("identity cache size must be positive")
	}

	return nil
}
