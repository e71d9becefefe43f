// internal/observability/logging/attributes.go
package logging

import (
	"log/slog"
	"net/url"
	"regexp"
)

// RedactedURL wraps a url.URL for logging without exposing sensitive information
type RedactedURL struct {
	url *url.URL
}

// LogValue implements slog.LogValuer to avoid revealing passwords
func (u RedactedURL) LogValue() slog.Value {
	return slog.StringValue(u.url.Redacted())
}

// RedactURL returns a safely loggable URL value
func RedactURL(url *url.URL) RedactedURL {
	return RedactedURL{url: url}
}

// RedactedDSN is a string containing a database DSN for safe logging
type RedactedDSN string

// LogValue implements slog.LogValuer to avoid revealing passwords in database URIs
func (s RedactedDSN) LogValue() slog.Value {
	re := regexp.MustCompile(`(?P<User>[^:@/]+):[^@]+@`)
	if re.MatchString(string(s)) {
		redacted := re.ReplaceAllString(string(s), `${User}:xxxxx@`)
		return slog.StringValue(redacted)
	}
	return slog.StringValue(string(s))
}

// RedactDSN returns a safely loggable database DSN
func RedactDSN(s string) slog.LogValuer {
	return RedactedDSN(s)
}
