package accessginhandler

// Option configures the gin adapter.
type Option func(*ginMiddlewareConfig)

// WithContextKey overrides the gin context key claims are stored under.
func WithContextKey(key string) Option {
	return func(c *ginMiddlewareConfig) {
		if key != "" {
			c.contextKey = key
		}
	}
}
