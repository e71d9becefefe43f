// internal/tls/config.go
package tls

import (
	"crypto/tls"
	"fmt"

	"coursegate/internal/observability/logging"
)

// Config holds the TLS configuration
type Config struct {
	// Logger is the logger to use
	Logger *logging.Logger

	// CertPath is the path to the server certificate
	CertPath string

	// KeyPath is the path to the server key
	KeyPath string
}

// ServerConfig creates a TLS configuration for the server
func (c *Config) ServerConfig() (*tls.Config, error) {
	c.Logger.Debug("Initializing TLS configuration")

	certificate, err := tls.LoadX509KeyPair(c.CertPath, c.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{certificate},
		MinVersion:   tls.VersionTLS12,
	}

	c.Logger.Info("TLS configuration successful", "cert", c.CertPath)
	return tlsConfig, nil
}
