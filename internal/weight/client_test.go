package weight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/weighbridge-billing/internal/billing"
	"github.com/nurpe/weighbridge-billing/internal/config"
)

func newTestClient(baseURL string, maxRetries int) (*Client, *[]time.Duration) {
	client := NewClient(config.WeightServiceConfig{
		BaseURL:        baseURL,
		RequestTimeout: time.Second,
		TotalTimeout:   time.Minute,
		MaxRetries:     maxRetries,
		BackoffBase:    time.Second,
	}, zerolog.Nop())

	var delays []time.Duration
	client.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return client, &delays
}

func TestFetchTransactionsSuccess(t *testing.T) {
	var gotFrom, gotTo string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotFrom = r.URL.Query().Get("from")
		gotTo = r.URL.Query().Get("to")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"truck_id":"T1","product_id":"apples","net_weight":50,"timestamp":"20250610120000"},
			{"truck_id":"T2","product_id":"pears","timestamp":"20250610130000"}
		]`))
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 3)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 17, 14, 30, 0, 0, time.UTC)
	transactions, err := client.FetchTransactions(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, "20250601000000", gotFrom)
	assert.Equal(t, "20250617143000", gotTo)
	assert.Empty(t, *delays)

	require.Len(t, transactions, 2)
	assert.Equal(t, "T1", transactions[0].TruckCode)
	assert.Equal(t, int64(50), transactions[0].NetWeight)
	assert.Equal(t, time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), transactions[0].EventAt)
	// Missing net_weight decodes to zero; the aggregator excludes it later.
	assert.Zero(t, transactions[1].NetWeight)
}

func TestFetchTransactionsRetriesThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 3)

	_, err := client.FetchTransactions(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)

	// Two failures means two backoff sleeps with exponential delays.
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestFetchTransactionsExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 3)

	_, err := client.FetchTransactions(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrUpstreamUnavailable))

	assert.Equal(t, int32(4), attempts.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *delays)
}

func TestFetchTransactionsClientErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 3)

	_, err := client.FetchTransactions(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.False(t, errors.Is(err, billing.ErrUpstreamUnavailable))

	assert.Equal(t, int32(1), attempts.Load())
	assert.Empty(t, *delays)
}

func TestFetchTransactionsCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL, 3)

	ctx, cancel := context.WithCancel(context.Background())
	client.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := client.FetchTransactions(ctx, time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, billing.ErrUpstreamUnavailable))
}

func TestFetchTransactionsTimeoutsThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			time.Sleep(200 * time.Millisecond)
			return
		}
		_, _ = w.Write([]byte(`[{"truck_id":"T1","product_id":"apples","net_weight":50,"timestamp":"20250610120000"}]`))
	}))
	defer server.Close()

	client, delays := newTestClient(server.URL, 3)
	client.httpClient.Timeout = 50 * time.Millisecond

	transactions, err := client.FetchTransactions(context.Background(), time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)

	require.Len(t, transactions, 1)
	assert.Equal(t, int32(3), attempts.Load())
	assert.GreaterOrEqual(t, len(*delays), 2)
}

func TestSleepWithContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- sleepWithContext(ctx, time.Minute)
	}()
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("sleep did not abort on cancellation")
	}
}
