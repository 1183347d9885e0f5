package grpc

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/metadata"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
)

// TokenExtractor extracts access tokens from gRPC request metadata.
type TokenExtractor func(ctx context.Context) (string, error)

var (
	// ErrMultipleTokenEntries indicates more than one token metadata entry
	// was provided.
	ErrMultipleTokenEntries = errors.New("multiple token metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format is
	// invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <token>")
)

// MetadataTokenExtractor reads the token from the edge identity header key
// first, falling back to "authorization: Bearer <token>". gRPC normalizes
// incoming metadata keys to lowercase.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil // No metadata, no token (not an error).
	}

	tokens := md.Get(strings.ToLower(accessmiddleware.DefaultTokenHeader))
	if len(tokens) > 1 {
		return "", ErrMultipleTokenEntries
	}
	if len(tokens) == 1 && tokens[0] != "" {
		return tokens[0], nil
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil
	}
	if len(authHeaders) > 1 {
		return "", ErrMultipleTokenEntries
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", ErrInvalidAuthFormat
	}

	return parts[1], nil
}
