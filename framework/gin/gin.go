package accessginhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
	"github.com/edgeguard/go-access-middleware/verifier"
)

// DefaultClaimsKey is the gin context key claims are stored under.
const DefaultClaimsKey = "access_identity"

var (
	ErrMissingClaims = errors.New("no identity claims found in context")
	ErrInvalidClaims = errors.New("invalid identity claims type")
)

type ginMiddlewareConfig struct {
	contextKey string
}

// Middleware adapts an AccessMiddleware to a gin.HandlerFunc. Denied
// requests are answered by the middleware's own error handler and the gin
// chain is aborted; allowed requests get the decoded identity under the
// configured context key.
func Middleware(m *accessmiddleware.AccessMiddleware, opts ...Option) gin.HandlerFunc {
	config := &ginMiddlewareConfig{
		contextKey: DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		allowed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			allowed = true
			c.Request = r

			if claims, ok := accessmiddleware.ClaimsFrom(r.Context()); ok {
				c.Set(config.contextKey, claims)
			}

			c.Next()
		}

		m.CheckToken(handler).ServeHTTP(c.Writer, c.Request)

		if !allowed {
			c.Abort()
		}
	}
}

// GetClaims extracts the verified identity from the gin context.
func GetClaims(c *gin.Context, contextKey string) (*verifier.Claims, error) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingClaims
	}

	identity, ok := claims.(*verifier.Claims)
	if !ok {
		return nil, ErrInvalidClaims
	}

	return identity, nil
}
