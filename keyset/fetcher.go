package keyset

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
)

// certsPath is the well-known key set endpoint published by the identity edge.
const certsPath = "/cdn-cgi/access/certs"

// maxBodySize caps how much of the certs response is read. Real key sets are
// a few kilobytes.
const maxBodySize = 1 << 20

// CertsURL returns the key set endpoint for a provider domain.
func CertsURL(domain string) string {
	return "https://" + domain + certsPath
}

// FetchError reports a failure to retrieve a provider's key set. A FetchError
// outcome is never cached; any existing entry keeps serving until it expires.
type FetchError struct {
	Domain     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not fetch key set for %s: %v", e.Domain, e.Err)
	}
	return fmt.Sprintf("could not fetch key set for %s: unexpected status %d", e.Domain, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher retrieves a provider's published key set and imports it into
// verification-ready RSA keys.
type Fetcher struct {
	client   *http.Client
	certsURL string
	logger   Logger
}

// NewFetcher builds a Fetcher. By default it uses a 30 second HTTP client and
// constructs the certs URL from the provider domain; see WithHTTPClient and
// WithCustomCertsURL.
func NewFetcher(opts ...Option) *Fetcher {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Fetcher{
		client:   cfg.client,
		certsURL: cfg.certsURL,
		logger:   cfg.logger,
	}
}

// Fetch issues a GET against the provider's certs endpoint and returns the
// imported key set. Entries that are not well-formed RSA keys with a key ID
// are skipped, not errors: providers rotate in key types this verifier does
// not support, and the remaining RSA keys must keep working. An empty result
// is therefore valid.
func (f *Fetcher) Fetch(ctx context.Context, domain string) (KeySet, error) {
	certsURL := f.certsURL
	if certsURL == "" {
		certsURL = CertsURL(domain)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, certsURL, nil)
	if err != nil {
		return nil, &FetchError{Domain: domain, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Domain: domain, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{Domain: domain, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{Domain: domain, Err: fmt.Errorf("reading key set body: %w", err)}
	}

	return f.parse(domain, body)
}

// parse classifies every entry in the response as well-formed RSA, well-formed
// other type, or malformed, and imports only the first group.
func (f *Fetcher) parse(domain string, body []byte) (KeySet, error) {
	var raw struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FetchError{Domain: domain, Err: fmt.Errorf("decoding key set body: %w", err)}
	}

	set := make(KeySet, len(raw.Keys))
	for i, entry := range raw.Keys {
		key, err := jwk.ParseKey(entry)
		if err != nil {
			f.logger.Debugf("skipping malformed key set entry %d for %s: %v", i, domain, err)
			continue
		}

		kid := key.KeyID()
		if kid == "" {
			f.logger.Debugf("skipping key set entry %d for %s: no key ID", i, domain)
			continue
		}

		if key.KeyType() != jwa.RSA {
			f.logger.Debugf("skipping key %q for %s: unsupported key type %s", kid, domain, key.KeyType())
			continue
		}

		var pub rsa.PublicKey
		if err := key.Raw(&pub); err != nil {
			f.logger.Debugf("skipping key %q for %s: could not import RSA key: %v", kid, domain, err)
			continue
		}

		set[kid] = &pub
	}

	return set, nil
}
