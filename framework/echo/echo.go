package accessechohandler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
	"github.com/edgeguard/go-access-middleware/verifier"
)

// DefaultClaimsKey is the echo context key claims are stored under.
const DefaultClaimsKey = "access_identity"

type echoMiddlewareConfig struct {
	contextKey string
}

// Middleware adapts an AccessMiddleware to an echo.MiddlewareFunc. Denied
// requests are answered by the middleware's own error handler; allowed
// requests get the decoded identity under the configured context key.
func Middleware(m *accessmiddleware.AccessMiddleware, opts ...Option) echo.MiddlewareFunc {
	config := &echoMiddlewareConfig{
		contextKey: DefaultClaimsKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var nextErr error
			allowed := false
			var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
				allowed = true
				c.SetRequest(r)

				if claims, ok := accessmiddleware.ClaimsFrom(r.Context()); ok {
					c.Set(config.contextKey, claims)
				}

				nextErr = next(c)
			}

			m.CheckToken(handler).ServeHTTP(c.Response(), c.Request())

			if !allowed {
				// The denial response has already been written.
				return nil
			}
			return nextErr
		}
	}
}

// GetClaims extracts the verified identity from the echo context.
func GetClaims(c echo.Context, contextKey string) (*verifier.Claims, bool) {
	if contextKey == "" {
		contextKey = DefaultClaimsKey
	}
	claims, ok := c.Get(contextKey).(*verifier.Claims)
	return claims, ok
}
