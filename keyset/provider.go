package keyset

import (
	"context"
	"time"
)

// CachingProvider serves key sets through a Cache, fetching on miss or
// expiry. Requests that race past an expired entry each fetch independently
// and the last write wins; no request ever blocks behind another's in-flight
// fetch. A failed fetch surfaces to its caller and leaves any cached entry
// untouched.
type CachingProvider struct {
	cache   Cache
	fetcher *Fetcher
	now     func() time.Time
	logger  Logger
	metrics Metrics
}

// NewCachingProvider builds a CachingProvider with an in-memory cache unless
// WithCache supplies another implementation.
func NewCachingProvider(opts ...Option) *CachingProvider {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &CachingProvider{
		cache: cfg.cache,
		fetcher: &Fetcher{
			client:   cfg.client,
			certsURL: cfg.certsURL,
			logger:   cfg.logger,
		},
		now:     cfg.now,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}
}

// Keys returns the current trusted key set for a provider domain, fetching
// it when the cache has no entry younger than TTL.
func (p *CachingProvider) Keys(ctx context.Context, domain string) (KeySet, error) {
	if entry, ok := p.cache.Get(domain); ok && p.now().Sub(entry.FetchedAt) < TTL {
		p.metrics.IncCounter("access_keyset_cache_total", map[string]string{"result": "hit"})
		return entry.Keys, nil
	}
	p.metrics.IncCounter("access_keyset_cache_total", map[string]string{"result": "miss"})

	keys, err := p.fetcher.Fetch(ctx, domain)
	if err != nil {
		p.metrics.IncCounter("access_keyset_fetch_errors_total", nil)
		return nil, err
	}

	p.logger.Debugf("fetched %d signing keys for %s", len(keys), domain)
	p.cache.Put(domain, Entry{Keys: keys, FetchedAt: p.now()})

	return keys, nil
}

// Clear drops all cached key material, forcing the next verification to
// refetch it.
func (p *CachingProvider) Clear() {
	p.cache.Clear()
}
