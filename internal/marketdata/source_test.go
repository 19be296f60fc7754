package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
)

type fakeClient struct {
	quote       *Quote
	quoteErr    error
	expirations []string
	options     []Option
	chainErr    error
	calls       int
}

func (f *fakeClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	f.calls++
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}
	return f.quote, nil
}

func (f *fakeClient) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	f.calls++
	return f.expirations, nil
}

func (f *fakeClient) GetOptionChain(ctx context.Context, symbol, expiration string) ([]Option, error) {
	f.calls++
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return f.options, nil
}

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestSnapshot(t *testing.T) {
	fc := &fakeClient{
		quote:       &Quote{Symbol: "SPY", Last: 670.5},
		expirations: []string{"2025-11-17", "2025-11-13", "2025-11-14"},
		options: []Option{
			{OptionType: "call", Strike: 671, OpenInterest: 500, Greeks: &Greeks{MidIV: 0.12}},
			{OptionType: "put", Strike: 669, OpenInterest: 800, Greeks: &Greeks{SmvVol: 0.18}},
			{OptionType: "put", Strike: 668, OpenInterest: 300},
		},
	}
	loc := newYork(t)
	src := NewSource(fc, "SPY", basis.Offset(12.5), loc, zap.NewNop())

	now := time.Date(2025, 11, 14, 10, 30, 0, 0, loc)
	snap, err := src.Snapshot(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, "2025-11-14", snap.Chain.Expiry, "past expirations are skipped")
	assert.InDelta(t, 6717.5, snap.Spot, 1e-9)
	assert.Equal(t, now, snap.Timestamp)
	require.Len(t, snap.Chain.Calls, 1)
	require.Len(t, snap.Chain.Puts, 2)
	assert.Equal(t, 0.12, snap.Chain.Calls[0].ImpliedVolatility)
	assert.Equal(t, 0.18, snap.Chain.Puts[0].ImpliedVolatility)
	assert.Zero(t, snap.Chain.Puts[1].ImpliedVolatility, "missing greeks leave IV at zero for the filter")
}

func TestSnapshot_UsesExchangeDate(t *testing.T) {
	fc := &fakeClient{
		quote:       &Quote{Symbol: "SPY", Last: 670},
		expirations: []string{"2025-11-14", "2025-11-17"},
		options:     []Option{{OptionType: "call", Strike: 670, OpenInterest: 500}},
	}
	src := NewSource(fc, "SPY", 0, newYork(t), zap.NewNop())

	// 01:00 UTC on the 15th is still the evening of the 14th in New York
	snap, err := src.Snapshot(context.Background(), time.Date(2025, 11, 15, 1, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-11-14", snap.Chain.Expiry)
}

func TestSnapshot_NoData(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2025, 11, 14, 10, 30, 0, 0, loc)

	t.Run("no future expiration", func(t *testing.T) {
		fc := &fakeClient{quote: &Quote{Last: 670}, expirations: []string{"2025-11-13"}}
		_, err := NewSource(fc, "SPY", 0, loc, zap.NewNop()).Snapshot(context.Background(), now)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("empty chain", func(t *testing.T) {
		fc := &fakeClient{quote: &Quote{Last: 670}, expirations: []string{"2025-11-14"}}
		_, err := NewSource(fc, "SPY", 0, loc, zap.NewNop()).Snapshot(context.Background(), now)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("no price", func(t *testing.T) {
		fc := &fakeClient{quote: &Quote{}, expirations: []string{"2025-11-14"}}
		_, err := NewSource(fc, "SPY", 0, loc, zap.NewNop()).Snapshot(context.Background(), now)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestPreviousClose_FeedsCalibration(t *testing.T) {
	fc := &fakeClient{quote: &Quote{PrevClose: 670}}
	src := NewSource(fc, "SPY", 0, nil, zap.NewNop())

	closeVal, err := src.PreviousClose(context.Background(), "SPY")
	require.NoError(t, err)
	assert.Equal(t, 670.0, closeVal)

	fc.quoteErr = errors.New("boom")
	offset := basis.Calibrate(context.Background(), src, "SPY", "SPX", zap.NewNop())
	assert.Zero(t, float64(offset))
}

func TestBreakerClient_OpensAfterFailures(t *testing.T) {
	fc := &fakeClient{quoteErr: errors.New("upstream down")}
	settings := BreakerSettings{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 2, FailureRatio: 0.5}
	bc := NewBreakerClient(fc, settings, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := bc.GetQuote(context.Background(), "SPY")
		require.Error(t, err)
	}
	assert.Equal(t, "open", bc.State())

	_, err := bc.GetQuote(context.Background(), "SPY")
	require.Error(t, err)
	assert.Equal(t, 2, fc.calls, "open breaker short-circuits the call")
}

func TestBreakerClient_NotFoundKeepsBreakerClosed(t *testing.T) {
	fc := &fakeClient{quoteErr: ErrNotFound}
	settings := BreakerSettings{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, MinRequests: 1, FailureRatio: 0.1}
	bc := NewBreakerClient(fc, settings, zap.NewNop())

	for i := 0; i < 3; i++ {
		_, err := bc.GetQuote(context.Background(), "SPY")
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, "closed", bc.State())
}
