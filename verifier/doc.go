// Package verifier decodes and verifies the signed identity tokens an
// external SSO edge attaches to inbound requests.
//
// Every failure is a distinct typed error (malformed structure, unknown key,
// bad signature, expired, audience mismatch) so callers can log what happened
// while still collapsing all of them to one response for the client.
package verifier
