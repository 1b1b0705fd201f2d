package fetchgate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/repvault/repvault/internal/diskcache"
	"github.com/repvault/repvault/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, maxRequests int) (*Gateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cache := diskcache.New(t.TempDir())
	limiter := ratelimit.New(maxRequests, time.Minute)
	return NewWithClient(cache, limiter, server.Client()), server
}

func TestGatewayCachesResponses(t *testing.T) {
	var hits atomic.Int32
	gw, server := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"exercises":["squat"]}`))
	}, 10)

	first, err := gw.Fetch(context.Background(), "exercises", server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, `{"exercises":["squat"]}`, string(first))

	second, err := gw.Fetch(context.Background(), "exercises", server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, hits.Load(), "second read must come from cache")
}

func TestGatewayCollapsesConcurrentMisses(t *testing.T) {
	var hits atomic.Int32
	gw, server := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		time.Sleep(20 * time.Millisecond) // hold the flight open
		_, _ = w.Write([]byte(`ok`))
	}, 100)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, err := gw.Fetch(context.Background(), "same-key", server.URL, time.Minute)
			assert.NoError(t, err)
			assert.Equal(t, "ok", string(payload))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, hits.Load(), "concurrent misses share one network call")
}

func TestGatewayRespectsRateLimitCancellation(t *testing.T) {
	gw, server := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	}, 1)

	// Exhaust the only slot, then cancel a blocked fetch.
	_, err := gw.Fetch(context.Background(), "a", server.URL, time.Nanosecond)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = gw.Fetch(ctx, "b", server.URL, time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGatewayErrorNotCached(t *testing.T) {
	var hits atomic.Int32
	gw, server := newTestGateway(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`recovered`))
	}, 10)

	_, err := gw.Fetch(context.Background(), "flaky", server.URL, time.Minute)
	require.Error(t, err, "non-200 is an error, not a cacheable payload")

	payload, err := gw.Fetch(context.Background(), "flaky", server.URL, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "recovered", string(payload))
}
