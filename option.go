package accessmiddleware

import (
	"errors"
	"net/http"
)

// Option configures the AccessMiddleware.
type Option func(*AccessMiddleware) error

// Sentinel errors for configuration validation.
var (
	ErrVerifierNil       = errors.New("verifier cannot be nil")
	ErrTeamDomainEmpty   = errors.New("team domain cannot be empty")
	ErrErrorHandlerNil   = errors.New("errorHandler cannot be nil")
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrExclusionURLsNil  = errors.New("exclusion URL list cannot be empty")
	ErrLoggerNil         = errors.New("logger cannot be nil")
	ErrInvalidMode       = errors.New("response mode must be html or api")
)

// WithResponseMode selects the denial shape for the wrapped routes.
//
// Default: ResponseModeHTML
func WithResponseMode(mode ResponseMode) Option {
	return func(m *AccessMiddleware) error {
		if mode != ResponseModeHTML && mode != ResponseModeAPI {
			return ErrInvalidMode
		}
		m.responseMode = mode
		return nil
	}
}

// WithRedirectOnMissingToken makes denied html requests redirect to the
// identity edge's hosted login instead of answering 401. Has no effect in
// api mode.
//
// Default: false
func WithRedirectOnMissingToken(value bool) Option {
	return func(m *AccessMiddleware) error {
		m.redirectOnMissing = value
		return nil
	}
}

// WithDevBypass disables enforcement entirely: requests without a token pass
// through unauthenticated and are logged as insecure. Local development only.
//
// Default: false
func WithDevBypass(value bool) Option {
	return func(m *AccessMiddleware) error {
		m.devBypass = value
		return nil
	}
}

// WithTokenExtractor sets the function to extract the token from a request.
//
// Default: identity header first, cookie fallback.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(m *AccessMiddleware) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		m.tokenExtractor = e
		return nil
	}
}

// WithErrorHandler replaces the handler invoked for denied requests. The
// default is DenyHandler wired to the configured response mode and redirect
// policy. Custom handlers must not echo err details in api responses.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *AccessMiddleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithExclusionURLs configures paths that skip token enforcement, such as
// health or metrics endpoints. Entries match the request path or full URL.
func WithExclusionURLs(exclusions []string) Option {
	return func(m *AccessMiddleware) error {
		if len(exclusions) == 0 {
			return ErrExclusionURLsNil
		}
		m.exclusionURLHandler = func(r *http.Request) bool {
			requestFullURL := r.URL.String()
			requestPath := r.URL.Path

			for _, exclusion := range exclusions {
				if requestFullURL == exclusion || requestPath == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger for the middleware.
func WithLogger(logger Logger) Option {
	return func(m *AccessMiddleware) error {
		if logger == nil {
			return ErrLoggerNil
		}
		m.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for decision counters.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *AccessMiddleware) error {
		if metrics != nil {
			m.metrics = metrics
		}
		return nil
	}
}

// WithTracer sets the tracer used to record one span per checked request.
//
// Default: NoopTracer
func WithTracer(tracer Tracer) Option {
	return func(m *AccessMiddleware) error {
		if tracer != nil {
			m.tracer = tracer
		}
		return nil
	}
}
