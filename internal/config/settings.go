// internal/config/settings.go
package config

import "github.com/spf13/viper"

// SettingType represents the type of a setting
type SettingType string

const (
	// String type for string settings
	String SettingType = "string"
	// Bool type for boolean settings
	Bool SettingType = "bool"
	// Int type for integer settings
	Int SettingType = "int"
)

// Setting defines a configuration setting
type Setting struct {
	// Name is the name of the setting
	Name string
	// Short is a short description of the setting
	Short string
	// Type is the type of the setting
	Type SettingType
	// Default is the default value of the setting
	Default interface{}
	// Env is the environment variable name for the setting
	Env string
	// Required indicates whether the setting is required
	Required bool
}

// SettingList is a list of settings
type SettingList []Setting

// PopulateViperDefaults sets default values for all settings in Viper
func (sl SettingList) PopulateViperDefaults(v *viper.Viper) {
	for _, s := range sl {
		v.SetDefault(s.Name, s.Default)
	}
}

// Settings defines all application settings
var Settings = SettingList{
	// Server settings
	{
		Name:    "SERVER_ADDR",
		Short:   "Address on which the server listens",
		Type:    String,
		Default: ":8000",
		Env:     "SERVER_ADDR",
	},
	{
		Name:    "METRICS_ADDR",
		Short:   "Address on which the metrics server listens",
		Type:    String,
		Default: ":9090",
		Env:     "METRICS_ADDR",
	},
	{
		Name:    "SHUTDOWN_TIMEOUT",
		Short:   "Maximum time to wait for graceful shutdown",
		Type:    String,
		Default: "30s",
		Env:     "SHUTDOWN_TIMEOUT",
	},

	// TLS settings
	{
		Name:    "TLS_ENABLED",
		Short:   "Enable TLS for the server",
		Type:    Bool,
		Default: false,
		Env:     "TLS_ENABLED",
	},
	{
		Name:    "TLS_CERT_PATH",
		Short:   "Path to TLS certificate file",
		Type:    String,
		Default: "",
		Env:     "TLS_CERT_PATH",
	},
	{
		Name:    "TLS_KEY_PATH",
		Short:   "Path to TLS key file",
		Type:    String,
		Default: "",
		Env:     "TLS_KEY_PATH",
	},

	// Database settings
	{
		Name:    "DATABASE_URL",
		Short:   "PostgreSQL DSN; empty selects the in-memory store",
		Type:    String,
		Default: "",
		Env:     "DATABASE_URL",
	},

	// Identity settings
	{
		Name:    "IDENTITY_PROVIDER",
		Short:   "Identity provider to use (oidc, token)",
		Type:    String,
		Default: "oidc",
		Env:     "IDENTITY_PROVIDER",
	},
	{
		Name:     "IDENTITY_OIDC_ISSUER",
		Short:    "OIDC issuer URL",
		Type:     String,
		Default:  "",
		Env:      "IDENTITY_OIDC_ISSUER",
		Required: true,
	},
	{
		Name:    "IDENTITY_TOKEN_SECRET",
		Short:   "HS256 signing secret for service tokens",
		Type:    String,
		Default: "",
		Env:     "IDENTITY_TOKEN_SECRET",
	},
	{
		Name:    "IDENTITY_TOKEN_ISSUER",
		Short:   "Expected service-token issuer",
		Type:    String,
		Default: "coursegate",
		Env:     "IDENTITY_TOKEN_ISSUER",
	},
	{
		Name:    "IDENTITY_TOKEN_AUDIENCE",
		Short:   "Expected service-token audience",
		Type:    String,
		Default: "",
		Env:     "IDENTITY_TOKEN_AUDIENCE",
	},
	{
		Name:    "IDENTITY_RESOLVE_TIMEOUT",
		Short:   "Hard budget for one identity provider lookup",
		Type:    String,
		Default: "3s",
		Env:     "IDENTITY_RESOLVE_TIMEOUT",
	},
	{
		Name:    "IDENTITY_BREAKER_THRESHOLD",
		Short:   "Consecutive failures before the circuit opens",
		Type:    Int,
		Default: 3,
		Env:     "IDENTITY_BREAKER_THRESHOLD",
	},
	{
		Name:    "IDENTITY_BREAKER_RESET",
		Short:   "How long the circuit stays open before a probe",
		Type:    String,
		Default: "30s",
		Env:     "IDENTITY_BREAKER_RESET",
	},
	{
		Name:    "IDENTITY_CACHE_TTL",
		Short:   "Session cache freshness window",
		Type:    String,
		Default: "10m",
		Env:     "IDENTITY_CACHE_TTL",
	},
	{
		Name:    "IDENTITY_CACHE_SIZE",
		Short:   "Maximum number of cached sessions",
		Type:    Int,
		Default: 4096,
		Env:     "IDENTITY_CACHE_SIZE",
	},
	{
		Name:    "IDENTITY_COOKIE_NAME",
		Short:   "Name of the session cookie",
		Type:    String,
		Default: "coursegate_session",
		Env:     "IDENTITY_COOKIE_NAME",
	},

	// Access policy settings
	{
		Name:    "ACCESS_DEGRADED_MODE",
		Short:   "Handling of empty-subject identities (deny, error)",
		Type:    String,
		Default: "deny",
		Env:     "ACCESS_DEGRADED_MODE",
	},

	// Observability
	{
		Name:    "LOG_LEVEL",
		Short:   "Logging level",
		Type:    String,
		Default: "info",
		Env:     "LOG_LEVEL",
	},
}
