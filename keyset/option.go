package keyset

import (
	"net/http"
	"time"
)

// Logger is the logging interface used by this package. The adapters in the
// root package satisfy it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Warnf(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Metrics is the subset of the root package's metrics interface this package
// reports through.
type Metrics interface {
	IncCounter(name string, tags map[string]string)
}

type noopMetrics struct{}

func (noopMetrics) IncCounter(name string, tags map[string]string) {}

type config struct {
	client   *http.Client
	certsURL string
	cache    Cache
	now      func() time.Time
	logger   Logger
	metrics  Metrics
}

func defaultConfig() *config {
	return &config{
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   NewMemoryCache(),
		now:     time.Now,
		logger:  noopLogger{},
		metrics: noopMetrics{},
	}
}

// Option configures a Fetcher or CachingProvider.
type Option func(*config)

// WithHTTPClient sets the HTTP client used to reach the certs endpoint.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		if client != nil {
			c.client = client
		}
	}
}

// WithCustomCertsURL overrides the URL the fetcher derives from the provider
// domain. Mostly useful for tests and air-gapped mirrors.
func WithCustomCertsURL(certsURL string) Option {
	return func(c *config) {
		c.certsURL = certsURL
	}
}

// WithCache replaces the default in-memory cache.
func WithCache(cache Cache) Option {
	return func(c *config) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithClock replaces the time source used for entry expiry. Tests use this to
// advance past the TTL without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger for fetch and parse diagnostics.
func WithLogger(logger Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink for cache hit/miss and fetch counters.
func WithMetrics(metrics Metrics) Option {
	return func(c *config) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}
