package accessechohandler

// Option configures the echo adapter.
type Option func(*echoMiddlewareConfig)

// WithContextKey overrides the echo context key claims are stored under.
func WithContextKey(key string) Option {
	return func(c *echoMiddlewareConfig) {
		if key != "" {
			c.contextKey = key
		}
	}
}
