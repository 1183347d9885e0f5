package verifier

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/edgeguard/go-access-middleware/keyset"
)

// KeyProvider supplies the current trusted key set for a provider domain.
// *keyset.CachingProvider is the usual implementation.
type KeyProvider interface {
	Keys(ctx context.Context, domain string) (keyset.KeySet, error)
}

// Verifier decodes bearer tokens and verifies their RS256 signature and
// standard claims against a provider's key set.
type Verifier struct {
	keys     KeyProvider
	audience string
	now      func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithAudience sets the audience tag the aud claim must contain. When unset,
// audience checking is disabled.
func WithAudience(aud string) Option {
	return func(v *Verifier) {
		v.audience = aud
	}
}

// WithClock replaces the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// New builds a Verifier reading keys from the given provider.
func New(keys KeyProvider, opts ...Option) (*Verifier, error) {
	if keys == nil {
		return nil, errors.New("key provider is required but was nil")
	}

	v := &Verifier{keys: keys, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// header is the decoded first token segment.
type header struct {
	Algorithm string `json:"alg"`
	KeyID     string `json:"kid"`
}

// Verify checks one bearer token issued for the given provider domain and
// returns its decoded payload.
//
// Structural checks run first so garbage is rejected before any key lookup,
// and the signature is verified before any claim is consulted; claims in an
// unverified token carry no trust value.
func (v *Verifier) Verify(ctx context.Context, token, domain string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, &MalformedTokenError{Reason: fmt.Sprintf("expected 3 segments, got %d", len(parts))}
	}

	headerBytes, err := decodeSegment(parts[0])
	if err != nil {
		return nil, &MalformedTokenError{Reason: "header is not valid base64url", Err: err}
	}
	var hdr header
	if err := json.Unmarshal(headerBytes, &hdr); err != nil {
		return nil, &MalformedTokenError{Reason: "header is not valid JSON", Err: err}
	}

	payloadBytes, err := decodeSegment(parts[1])
	if err != nil {
		return nil, &MalformedTokenError{Reason: "payload is not valid base64url", Err: err}
	}
	var claims Claims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, &MalformedTokenError{Reason: "payload is not valid JSON", Err: err}
	}

	signature, err := decodeSegment(parts[2])
	if err != nil {
		return nil, &MalformedTokenError{Reason: "signature is not valid base64url", Err: err}
	}

	keys, err := v.keys.Keys(ctx, domain)
	if err != nil {
		return nil, err
	}
	key, ok := keys[hdr.KeyID]
	if !ok {
		return nil, &UnknownKeyError{KeyID: hdr.KeyID}
	}

	signingInput := token[:len(parts[0])+1+len(parts[1])]
	if err := jwt.SigningMethodRS256.Verify(signingInput, signature, key); err != nil {
		return nil, &InvalidSignatureError{Err: err}
	}

	if claims.Expiry == 0 {
		return nil, &ExpiredTokenError{}
	}
	if expiry := time.Unix(claims.Expiry, 0); !expiry.After(v.now()) {
		return nil, &ExpiredTokenError{Expiry: expiry}
	}

	if v.audience != "" && !claims.HasAudience(v.audience) {
		return nil, &AudienceMismatchError{Expected: v.audience, Audience: claims.Audience}
	}

	return &claims, nil
}

// decodeSegment decodes one base64url token segment, padding it out to a
// multiple of four first since token segments arrive unpadded.
func decodeSegment(segment string) ([]byte, error) {
	if n := len(segment) % 4; n != 0 {
		segment += strings.Repeat("=", 4-n)
	}
	return base64.URLEncoding.DecodeString(segment)
}
