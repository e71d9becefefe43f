// internal/identity/context.go
package identity

import (
	"context"
)

// ContextKey is a type-safe key for context values
type ContextKey string

const (
	// identityContextKey is the key used to store the identity in the context
	identityContextKey ContextKey = "identity:resolved"
)

// ContextWithIdentity adds an identity to a context
func ContextWithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// FromContext extracts the resolved identity from the request context.
// Returns nil for anonymous requests.
func FromContext(ctx context.Context) *Identity {
	if ident, ok := ctx.Value(identityContextKey).(*Identity); ok {
		return ident
	}
	return nil
}
