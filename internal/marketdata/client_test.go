package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetQuote_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/markets/quotes", r.URL.Path)
		assert.Equal(t, "SPY", r.URL.Query().Get("symbols"))

		// a single quote comes back as an object, not an array
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quotes":{"quote":{"symbol":"SPY","last":671.25,"prevclose":669.8}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 10, 30*time.Second, time.Second, 3, zap.NewNop())

	q, err := client.GetQuote(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 671.25, q.Last)
	assert.Equal(t, 669.8, q.PrevClose)
}

func TestGetQuote_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 10, 30*time.Second, time.Second, 0, zap.NewNop())

	_, err := client.GetQuote(context.Background(), "SPY")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetQuote_AuthFailedIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-key", 10, 30*time.Second, 10*time.Millisecond, 3, zap.NewNop())

	_, err := client.GetQuote(context.Background(), "SPY")
	assert.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestGetExpirations_RateLimited(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 10, 30*time.Second, 10*time.Millisecond, 2, zap.NewNop())

	_, err := client.GetExpirations(context.Background(), "SPY")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(3), attempts.Load(), "initial attempt plus two retries")
}

func TestGetOptionChain_RecoversAfterServerError(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		assert.Equal(t, "true", r.URL.Query().Get("greeks"))
		_, _ = w.Write([]byte(`{"options":{"option":[
			{"symbol":"SPY251114C00670000","option_type":"call","strike":670,"open_interest":1200,"volume":50,"greeks":{"mid_iv":0.14,"smv_vol":0.15}},
			{"symbol":"SPY251114P00670000","option_type":"put","strike":670,"open_interest":900,"volume":40,"greeks":{"mid_iv":0,"smv_vol":0.17}}
		]}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key", 10, 30*time.Second, 10*time.Millisecond, 2, zap.NewNop())

	options, err := client.GetOptionChain(context.Background(), "SPY", "2025-11-14")
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, 0.14, options[0].ImpliedVolatility())
	assert.Equal(t, 0.17, options[1].ImpliedVolatility(), "smv_vol fallback")
}
