// Package grpc enforces access token verification for gRPC servers using
// unary and stream interceptors. Tokens travel in request metadata, either
// under the edge identity header key or as "authorization: Bearer <token>".
// Every denial is codes.Unauthenticated with no failure detail, matching the
// HTTP middleware's api mode.
package grpc
