package accessmiddleware

import (
	"context"

	"github.com/edgeguard/go-access-middleware/verifier"
)

// ContextKey is the request context key under which the verified identity
// payload is stored.
type ContextKey struct{}

// SetClaims stores a verified identity payload in the context. Adapters call
// this after a successful check.
func SetClaims(ctx context.Context, claims *verifier.Claims) context.Context {
	return context.WithValue(ctx, ContextKey{}, claims)
}

// ClaimsFrom returns the verified identity payload attached to the context,
// if any.
func ClaimsFrom(ctx context.Context) (*verifier.Claims, bool) {
	claims, ok := ctx.Value(ContextKey{}).(*verifier.Claims)
	return claims, ok
}
