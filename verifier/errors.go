package verifier

import (
	"errors"
	"fmt"
	"time"

	"github.com/edgeguard/go-access-middleware/keyset"
)

// MalformedTokenError reports a token that is not structurally a signed JWT.
// Structural checks run before any key lookup or signature math.
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e *MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed token: %s: %v", e.Reason, e.Err)
	}
	return "malformed token: " + e.Reason
}

func (e *MalformedTokenError) Unwrap() error { return e.Err }

// UnknownKeyError reports a token referencing a key identifier absent from
// the current key set. It deliberately does not trigger a key refetch: a
// caller sending bogus kid values must not be able to generate unbounded
// traffic to the identity edge.
type UnknownKeyError struct {
	KeyID string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("no key in the current key set matches kid %q", e.KeyID)
}

// InvalidSignatureError reports a signature that does not verify under the
// selected key.
type InvalidSignatureError struct {
	Err error
}

func (e *InvalidSignatureError) Error() string { return "token signature verification failed" }

func (e *InvalidSignatureError) Unwrap() error { return e.Err }

// ExpiredTokenError reports a token whose exp claim is absent or not strictly
// in the future. No clock-skew leeway is applied.
type ExpiredTokenError struct {
	Expiry time.Time
}

func (e *ExpiredTokenError) Error() string {
	if e.Expiry.IsZero() {
		return "token has no expiry claim"
	}
	return "token expired at " + e.Expiry.Format(time.RFC3339)
}

// AudienceMismatchError reports a token whose aud claim does not contain the
// configured audience tag.
type AudienceMismatchError struct {
	Expected string
	Audience []string
}

func (e *AudienceMismatchError) Error() string {
	return fmt.Sprintf("token audience %v does not contain %q", e.Audience, e.Expected)
}

// FailureKind returns a short stable label for a verification failure, for
// logs and metric tags. The label never reaches the caller of a protected
// route; every failure collapses to the same redirect or reject response.
func FailureKind(err error) string {
	var (
		malformed *MalformedTokenError
		unknown   *UnknownKeyError
		signature *InvalidSignatureError
		expired   *ExpiredTokenError
		audience  *AudienceMismatchError
		fetch     *keyset.FetchError
	)
	switch {
	case errors.As(err, &malformed):
		return "malformed"
	case errors.As(err, &unknown):
		return "unknown_key"
	case errors.As(err, &signature):
		return "bad_signature"
	case errors.As(err, &expired):
		return "expired"
	case errors.As(err, &audience):
		return "bad_audience"
	case errors.As(err, &fetch):
		return "keyset_fetch"
	default:
		return "error"
	}
}
