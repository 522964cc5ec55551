// ABOUTME: Request-scoped principal propagation via context
// ABOUTME: Provides WithPrincipal/PrincipalFromContext for handlers

package auth

import (
	"context"
)

// principalKey is the key type for storing a Principal in context.Context.
type principalKey struct{}

// WithPrincipal returns a new context with the Principal attached.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the Principal from the context. The second
// return is false when the request is anonymous.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
