package verifier

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeguard/go-access-middleware/keyset"
)

const testDomain = "myteam.cloudflareaccess.com"

// staticKeys serves a fixed key set, or a fixed error.
type staticKeys struct {
	keys keyset.KeySet
	err  error
}

func (s *staticKeys) Keys(ctx context.Context, domain string) (keyset.KeySet, error) {
	return s.keys, s.err
}

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv
}

// mintToken signs an RS256 token with the given kid and payload.
func mintToken(t *testing.T, priv *rsa.PrivateKey, kid string, claims jwt.MapClaims) string {
	t.Helper()

	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid

	signed, err := tok.SignedString(priv)
	require.NoError(t, err)
	return signed
}

func Test_Verifier(t *testing.T) {
	priv := newRSAKey(t)
	provider := &staticKeys{keys: keyset.KeySet{"key1": &priv.PublicKey}}
	now := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("It accepts a valid token and decodes its payload", func(t *testing.T) {
		v, err := New(provider, WithAudience("app-tag"), WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{
			"iss":            "https://" + testDomain,
			"sub":            "user-123",
			"aud":            []string{"app-tag"},
			"email":          "jane@example.com",
			"country":        "US",
			"identity_nonce": "n-1",
			"exp":            now.Add(time.Hour).Unix(),
			"iat":            now.Unix(),
		})

		claims, err := v.Verify(context.Background(), token, testDomain)
		require.NoError(t, err)

		want := &Claims{
			Issuer:        "https://" + testDomain,
			Subject:       "user-123",
			Audience:      []string{"app-tag"},
			Email:         "jane@example.com",
			Country:       "US",
			IdentityNonce: "n-1",
			Expiry:        now.Add(time.Hour).Unix(),
			IssuedAt:      now.Unix(),
		}
		if diff := cmp.Diff(want, claims, cmpopts.IgnoreUnexported(Claims{})); diff != "" {
			t.Fatalf("unexpected claims (-want +got):\n%s", diff)
		}
		assert.Equal(t, "jane@example.com", claims.Get("email"))
	})

	t.Run("It rejects structurally broken tokens before any key lookup", func(t *testing.T) {
		lookups := &countingKeys{keys: provider.keys}
		v, err := New(lookups, WithClock(clock))
		require.NoError(t, err)

		valid := mintToken(t, priv, "key1", jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
		parts := strings.Split(valid, ".")

		testCases := []struct {
			name  string
			token string
		}{
			{name: "two segments", token: parts[0] + "." + parts[1]},
			{name: "four segments", token: valid + ".extra"},
			{name: "empty token", token: ""},
			{name: "header is not base64url", token: "!!!." + parts[1] + "." + parts[2]},
			{name: "header is not JSON", token: base64.RawURLEncoding.EncodeToString([]byte("not json")) + "." + parts[1] + "." + parts[2]},
			{name: "payload is not base64url", token: parts[0] + ".!!!." + parts[2]},
			{name: "payload is not JSON", token: parts[0] + "." + base64.RawURLEncoding.EncodeToString([]byte("not json")) + "." + parts[2]},
			{name: "signature is not base64url", token: parts[0] + "." + parts[1] + ".!!!"},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := v.Verify(context.Background(), testCase.token, testDomain)

				var malformed *MalformedTokenError
				require.ErrorAs(t, err, &malformed)
			})
		}

		assert.Zero(t, lookups.calls, "structural rejects must not reach the key provider")
	})

	t.Run("It rejects a token referencing an unknown key", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "nope", jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

		_, err = v.Verify(context.Background(), token, testDomain)
		var unknown *UnknownKeyError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "nope", unknown.KeyID)
	})

	t.Run("It rejects a token signed by the wrong key", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		imposter := newRSAKey(t)
		token := mintToken(t, imposter, "key1", jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

		_, err = v.Verify(context.Background(), token, testDomain)
		var badSig *InvalidSignatureError
		require.ErrorAs(t, err, &badSig)
	})

	t.Run("It rejects an expired token", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		expiry := now.Add(-time.Minute)
		token := mintToken(t, priv, "key1", jwt.MapClaims{"exp": expiry.Unix()})

		_, err = v.Verify(context.Background(), token, testDomain)
		var expired *ExpiredTokenError
		require.ErrorAs(t, err, &expired)
		assert.True(t, expired.Expiry.Equal(expiry))
	})

	t.Run("A token expiring exactly now is already expired", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{"exp": now.Unix()})

		_, err = v.Verify(context.Background(), token, testDomain)
		var expired *ExpiredTokenError
		require.ErrorAs(t, err, &expired)
	})

	t.Run("It rejects a token without an expiry claim", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{"sub": "user-123"})

		_, err = v.Verify(context.Background(), token, testDomain)
		var expired *ExpiredTokenError
		require.ErrorAs(t, err, &expired)
		assert.True(t, expired.Expiry.IsZero())
	})

	t.Run("It rejects a token missing the configured audience", func(t *testing.T) {
		v, err := New(provider, WithAudience("app-tag"), WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{
			"aud": []string{"other-app"},
			"exp": now.Add(time.Hour).Unix(),
		})

		_, err = v.Verify(context.Background(), token, testDomain)
		var mismatch *AudienceMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, "app-tag", mismatch.Expected)
		assert.Equal(t, []string{"other-app"}, mismatch.Audience)
	})

	t.Run("It accepts a single-string aud claim", func(t *testing.T) {
		v, err := New(provider, WithAudience("app-tag"), WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{
			"aud": "app-tag",
			"exp": now.Add(time.Hour).Unix(),
		})

		claims, err := v.Verify(context.Background(), token, testDomain)
		require.NoError(t, err)
		assert.Equal(t, []string{"app-tag"}, claims.Audience)
	})

	t.Run("It skips the audience check when no audience is configured", func(t *testing.T) {
		v, err := New(provider, WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{
			"aud": []string{"whatever"},
			"exp": now.Add(time.Hour).Unix(),
		})

		_, err = v.Verify(context.Background(), token, testDomain)
		require.NoError(t, err)
	})

	t.Run("A key provider failure surfaces unchanged", func(t *testing.T) {
		fetchErr := &keyset.FetchError{Domain: testDomain, StatusCode: 502}
		v, err := New(&staticKeys{err: fetchErr}, WithClock(clock))
		require.NoError(t, err)

		token := mintToken(t, priv, "key1", jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})

		_, err = v.Verify(context.Background(), token, testDomain)
		var got *keyset.FetchError
		require.ErrorAs(t, err, &got)
		assert.Equal(t, 502, got.StatusCode)
	})

	t.Run("It requires a key provider", func(t *testing.T) {
		_, err := New(nil)
		require.Error(t, err)
	})
}

// countingKeys records how many times the key set was consulted.
type countingKeys struct {
	keys  keyset.KeySet
	calls int
}

func (c *countingKeys) Keys(ctx context.Context, domain string) (keyset.KeySet, error) {
	c.calls++
	return c.keys, nil
}

func Test_decodeSegment(t *testing.T) {
	t.Run("It decodes unpadded base64url of every length remainder", func(t *testing.T) {
		for size := 0; size < 16; size++ {
			raw := make([]byte, size)
			for i := range raw {
				raw[i] = byte(i * 7)
			}

			decoded, err := decodeSegment(base64.RawURLEncoding.EncodeToString(raw))
			require.NoError(t, err)
			assert.Equal(t, raw, decoded)
		}
	})

	t.Run("It rejects invalid input", func(t *testing.T) {
		_, err := decodeSegment("!!!")
		require.Error(t, err)
	})
}

func Test_FailureKind(t *testing.T) {
	testCases := []struct {
		err  error
		want string
	}{
		{err: &MalformedTokenError{Reason: "x"}, want: "malformed"},
		{err: &UnknownKeyError{KeyID: "k"}, want: "unknown_key"},
		{err: &InvalidSignatureError{}, want: "bad_signature"},
		{err: &ExpiredTokenError{}, want: "expired"},
		{err: &AudienceMismatchError{}, want: "bad_audience"},
		{err: &keyset.FetchError{}, want: "keyset_fetch"},
		{err: context.Canceled, want: "error"},
	}

	for _, testCase := range testCases {
		assert.Equal(t, testCase.want, FailureKind(testCase.err))
	}
}
