package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
)

// Interceptor enforces access token verification for gRPC servers. It is the
// api-mode twin of the HTTP middleware: every denial is a bare
// codes.Unauthenticated with no detail about why the token failed.
type Interceptor struct {
	verifier        accessmiddleware.TokenVerifier
	teamDomain      string
	devBypass       bool
	tokenExtractor  TokenExtractor
	excludedMethods map[string]bool
	logger          accessmiddleware.Logger
}

// New creates an Interceptor verifying tokens for teamDomain.
func New(v accessmiddleware.TokenVerifier, teamDomain string, opts ...Option) (*Interceptor, error) {
	if v == nil {
		return nil, accessmiddleware.ErrVerifierNil
	}
	if teamDomain == "" {
		return nil, accessmiddleware.ErrTeamDomainEmpty
	}

	i := &Interceptor{
		verifier:        v,
		teamDomain:      teamDomain,
		tokenExtractor:  MetadataTokenExtractor,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// errUnauthenticated is the single status every denial collapses to.
var errUnauthenticated = status.Error(codes.Unauthenticated, "unauthorized")

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that verifies
// the access token carried in the request metadata and makes the decoded
// identity available in the handler context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if i.excludedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		validatedCtx, err := i.checkToken(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(validatedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor with the
// same semantics as UnaryServerInterceptor.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		validatedCtx, err := i.checkToken(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: validatedCtx})
	}
}

// checkToken extracts and verifies the token from the metadata in ctx.
func (i *Interceptor) checkToken(ctx context.Context, method string) (context.Context, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Errorf("failed to extract token for %s: %v", method, err)
		}
		return ctx, errUnauthenticated
	}

	if token == "" {
		if i.devBypass {
			if i.logger != nil {
				i.logger.Warnf("dev mode bypass: allowing unauthenticated call to %s; do not run this in production", method)
			}
			return ctx, nil
		}
		return ctx, errUnauthenticated
	}

	claims, err := i.verifier.Verify(ctx, token, i.teamDomain)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("token verification failed for %s: %v", method, err)
		}
		return ctx, errUnauthenticated
	}

	return accessmiddleware.SetClaims(ctx, claims), nil
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the verified identity.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
