// Package keyset retrieves and caches the public signing keys an identity
// edge publishes at its /cdn-cgi/access/certs endpoint.
//
// The CachingProvider is the usual entry point. It keeps one key set per
// provider domain in an injectable Cache and refetches lazily once an entry
// is older than TTL. Non-RSA and unidentifiable keys in a provider response
// are skipped rather than failing the whole set, so key rotation to types
// this verifier does not support never breaks the keys that still work.
package keyset
