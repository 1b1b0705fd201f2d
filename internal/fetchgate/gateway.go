// Package fetchgate serves remote reads through the cache and the rate
// limiter.
//
// The gateway is the one place that wires the resilience layer
// together: cache-eligible reads hit the disk cache first, misses wait
// for a rate-limit slot before touching the network, and successful
// responses are written back through the cache best-effort.
package fetchgate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/repvault/repvault/internal/contract"
	"golang.org/x/sync/singleflight"
)

// maxResponseBytes caps how much of a response body the gateway will
// buffer and cache.
const maxResponseBytes = 4 << 20

// Gateway fetches remote payloads with caching and throttling.
type Gateway struct {
	cache   contract.Cache
	limiter contract.Limiter
	client  *http.Client

	// singleflight collapses concurrent misses for the same key so a
	// burst of callers costs one rate-limit slot, not one each.
	sf singleflight.Group
}

// New creates a gateway over the given cache and limiter.
func New(cache contract.Cache, limiter contract.Limiter) *Gateway {
	return NewWithClient(cache, limiter, &http.Client{Timeout: 10 * time.Second})
}

// NewWithClient creates a gateway with a custom HTTP client, used by
// tests to point at a local server.
func NewWithClient(cache contract.Cache, limiter contract.Limiter, client *http.Client) *Gateway {
	return &Gateway{cache: cache, limiter: limiter, client: client}
}

// Fetch returns the payload for key, serving from cache when possible.
// On a miss it waits for a rate-limit slot, issues the GET, and caches
// the response body with the given TTL. Cancelling ctx mid-wait aborts
// with no request recorded.
func (g *Gateway) Fetch(ctx context.Context, key, url string, ttl time.Duration) ([]byte, error) {
	if payload, ok := g.cache.Get(key); ok {
		return payload, nil
	}

	result, err, _ := g.sf.Do(key, func() (any, error) {
		// Re-check under singleflight: another caller may have just
		// populated the entry.
		if payload, ok := g.cache.Get(key); ok {
			return payload, nil
		}
		return g.fetchRemote(ctx, key, url, ttl)
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// fetchRemote performs the throttled network read and write-through.
func (g *Gateway) fetchRemote(ctx context.Context, key, url string, ttl time.Duration) ([]byte, error) {
	if err := g.limiter.WaitAndRecord(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait aborted: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	// Best-effort write-through; a failed cache write just means the
	// next read pays for the network again.
	g.cache.Set(key, payload, ttl)
	return payload, nil
}
