package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRetryMiddleware(t *testing.T) {
	t.Run("recovers from transient failures", func(t *testing.T) {
		core := &fakeCore{
			model:    "m",
			response: "eventually",
			errs: []error{
				classifyHTTPError("test", 429, "slow down", nil),
				classifyHTTPError("test", 503, "overloaded", nil),
			},
		}
		wrapped := RetryMiddleware(3, time.Millisecond, 10*time.Millisecond)(core)

		response, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)
		assert.Equal(t, "eventually", response)
		assert.Equal(t, 3, core.callCount())
	})

	t.Run("stops immediately on non-retryable errors", func(t *testing.T) {
		core := &fakeCore{
			errs: []error{classifyHTTPError("test", 401, "bad key", nil)},
		}
		wrapped := RetryMiddleware(3, time.Millisecond, 10*time.Millisecond)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.Error(t, err)
		assert.Equal(t, 1, core.callCount())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		core := &fakeCore{
			errs: []error{
				classifyHTTPError("test", 500, "a", nil),
				classifyHTTPError("test", 500, "b", nil),
				classifyHTTPError("test", 500, "c", nil),
			},
		}
		wrapped := RetryMiddleware(2, time.Millisecond, 10*time.Millisecond)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		assert.ErrorContains(t, err, "after 3 attempts")
		assert.Equal(t, 3, core.callCount())
	})

	t.Run("respects context cancellation between attempts", func(t *testing.T) {
		core := &fakeCore{
			errs: []error{
				classifyHTTPError("test", 500, "a", nil),
				classifyHTTPError("test", 500, "b", nil),
			},
		}
		wrapped := RetryMiddleware(5, 50*time.Millisecond, time.Second)(core)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, _, _, err := wrapped.DoRequest(ctx, "p", nil)
		require.Error(t, err)
		assert.Less(t, core.callCount(), 3, "retries stop once the context expires")
	})
}

func TestTimeoutMiddleware(t *testing.T) {
	core := &fakeCore{block: true}
	wrapped := TimeoutMiddleware(10 * time.Millisecond)(core)

	start := time.Now()
	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second, "a hung provider must not hang the caller")
}

func TestRateLimitMiddleware(t *testing.T) {
	core := &fakeCore{response: "ok"}
	wrapped := RateLimitMiddleware(rate.Limit(1), 1)(core)

	// First call consumes the only token.
	_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
	require.NoError(t, err)

	// Second call would need to wait ~1s; a short deadline fails fast.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, _, _, err = wrapped.DoRequest(ctx, "p", nil)
	assert.ErrorContains(t, err, "rate limit")
	assert.Equal(t, 1, core.callCount(), "the paced request never reaches the provider")
}

type countingCollector struct {
	mu        sync.Mutex
	latencies map[string]int
	counters  map[string]float64
	statuses  []string
}

func newCountingCollector() *countingCollector {
	return &countingCollector{latencies: make(map[string]int), counters: make(map[string]float64)}
}

func (c *countingCollector) RecordLatency(operation string, _ time.Duration, labels map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[operation]++
	c.statuses = append(c.statuses, labels["status"])
}

func (c *countingCollector) RecordCounter(metric string, value float64, _ map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[metric] += value
}

func (c *countingCollector) RecordGauge(string, float64, map[string]string) {}

func TestMetricsMiddleware(t *testing.T) {
	t.Run("success records latency and tokens", func(t *testing.T) {
		collector := newCountingCollector()
		core := &fakeCore{model: "m", response: "ok"}
		wrapped := MetricsMiddleware(collector)(core)

		_, tokensIn, tokensOut, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.NoError(t, err)

		assert.Equal(t, 1, collector.latencies["llm_request"])
		assert.Equal(t, float64(1), collector.counters["llm_requests_total"])
		assert.Equal(t, float64(tokensIn+tokensOut), collector.counters["llm_tokens_total"])
		assert.Equal(t, []string{"success"}, collector.statuses)
	})

	t.Run("failure records error status and no tokens", func(t *testing.T) {
		collector := newCountingCollector()
		core := &fakeCore{errs: []error{classifyHTTPError("test", 500, "boom", nil)}}
		wrapped := MetricsMiddleware(collector)(core)

		_, _, _, err := wrapped.DoRequest(context.Background(), "p", nil)
		require.Error(t, err)

		assert.Equal(t, []string{"error"}, collector.statuses)
		assert.Zero(t, collector.counters["llm_tokens_total"])
	})
}
