package grpc

import (
	"errors"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
)

// Option configures the Interceptor.
type Option func(*Interceptor) error

var (
	ErrTokenExtractorNil = errors.New("tokenExtractor cannot be nil")
	ErrLoggerNil         = errors.New("logger cannot be nil")
)

// WithDevBypass disables enforcement for calls without a token. Local
// development only.
func WithDevBypass(value bool) Option {
	return func(i *Interceptor) error {
		i.devBypass = value
		return nil
	}
}

// WithTokenExtractor replaces the default metadata token extractor.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) error {
		if e == nil {
			return ErrTokenExtractorNil
		}
		i.tokenExtractor = e
		return nil
	}
}

// WithExcludedMethods lists full method names (e.g.
// "/grpc.health.v1.Health/Check") that skip token verification.
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, m := range methods {
			i.excludedMethods[m] = true
		}
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
func WithLogger(logger accessmiddleware.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return ErrLoggerNil
		}
		i.logger = logger
		return nil
	}
}
