package iex

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sleepRecorder replaces the real sleep so retry tests run instantly.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) (*Client, *sleepRecorder) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithBaseURL(srv.URL), WithRateLimit(0)}, opts...)
	client := NewClient("test-token", opts...)
	rec := &sleepRecorder{}
	client.sleep = rec.sleep
	return client, rec
}

func TestGetQuote_ParsesResponse(t *testing.T) {
	var capturedPath, capturedToken string
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		capturedToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"symbol":"AAPL","latestPrice":187.25,"change":-1.5,"changePercent":-0.00795}`))
	})

	quote, err := client.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "/stable/stock/AAPL/quote", capturedPath)
	assert.Equal(t, "test-token", capturedToken)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 187.25, quote.LatestPrice)
	assert.Equal(t, -1.5, quote.Change)
	require.True(t, quote.ChangePercent.Valid())
	assert.InDelta(t, -0.00795, quote.ChangePercent.Value(), 1e-12)
	assert.Empty(t, rec.delays, "no retries expected on success")
}

func TestGetQuote_NullChangePercent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latestPrice":10,"change":0,"changePercent":null}`))
	})

	quote, err := client.GetQuote(context.Background(), "VTI")
	require.NoError(t, err)
	assert.False(t, quote.ChangePercent.Valid())
	assert.Equal(t, 0.0, quote.ChangePercent.Or(0))
}

func TestGetQuote_MissingChangePercent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latestPrice":10,"change":0.25}`))
	})

	quote, err := client.GetQuote(context.Background(), "VTI")
	require.NoError(t, err)
	assert.False(t, quote.ChangePercent.Valid())
}

func TestGetQuote_MalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"missing latestPrice", `{"change":1,"changePercent":0.1}`},
		{"null latestPrice", `{"latestPrice":null,"change":1}`},
		{"string change", `{"latestPrice":1,"change":"1.0"}`},
		{"object changePercent", `{"latestPrice":1,"change":1,"changePercent":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.GetQuote(context.Background(), "BAD")
			require.Error(t, err)

			var qe *QuoteError
			require.True(t, errors.As(err, &qe), "expected *QuoteError, got %T", err)
			assert.Equal(t, "BAD", qe.Symbol)
			assert.Equal(t, http.StatusOK, qe.StatusCode)
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestGetQuote_RetriesThenSucceeds(t *testing.T) {
	const rateLimited = 3
	var calls int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= rateLimited {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"latestPrice":5,"change":0.5,"changePercent":0.1}`))
	}, WithRetryPolicy(10, time.Second, time.Second))

	quote, err := client.GetQuote(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.Equal(t, 5.0, quote.LatestPrice)

	assert.Equal(t, int32(rateLimited+1), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, rec.delays)
}

func TestGetQuote_RetryExhaustion(t *testing.T) {
	const maxRetries = 4
	var calls int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryPolicy(maxRetries, 2*time.Second, time.Second))

	_, err := client.GetQuote(context.Background(), "GOOG")
	require.Error(t, err)

	var qe *QuoteError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, http.StatusTooManyRequests, qe.StatusCode)
	assert.Equal(t, "GOOG", qe.Symbol)
	assert.ErrorIs(t, err, ErrRateLimited)

	// one initial request plus exactly maxRetries retries
	assert.Equal(t, int32(maxRetries+1), atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{2 * time.Second, 3 * time.Second, 4 * time.Second, 5 * time.Second}, rec.delays)
}

func TestGetQuote_ZeroRetries(t *testing.T) {
	var calls int32
	client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryPolicy(0, time.Second, time.Second))

	_, err := client.GetQuote(context.Background(), "GOOG")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Empty(t, rec.delays)
}

func TestGetQuote_TerminalStatusNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusUnauthorized} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var calls int32
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(status)
				w.Write([]byte("nope"))
			})

			_, err := client.GetQuote(context.Background(), "ZZZ")
			var qe *QuoteError
			require.True(t, errors.As(err, &qe))
			assert.Equal(t, status, qe.StatusCode)
			assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
			assert.Empty(t, rec.delays)
		})
	}
}

func TestGetQuote_RateLimitedThenTerminal(t *testing.T) {
	var calls int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetQuote(context.Background(), "ZZZ")
	var qe *QuoteError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, http.StatusBadGateway, qe.StatusCode, "last observed status is reported")
	assert.NotErrorIs(t, err, ErrRateLimited)
}

func TestGetQuote_CancelledDuringRetryWait(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("t", WithBaseURL(srv.URL), WithRetryPolicy(5, time.Hour, time.Hour))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.GetQuote(ctx, "SLOW")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestQuoteError_Message(t *testing.T) {
	err := &QuoteError{StatusCode: 404, Symbol: "NOPE"}
	assert.Equal(t, "IEX quote failed for NOPE (status: 404)", err.Error())

	err = &QuoteError{StatusCode: 429, Symbol: "X", Err: ErrRateLimited}
	assert.Contains(t, err.Error(), "rate limited")
}
