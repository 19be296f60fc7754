package basis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type mockCloses struct {
	closes map[string]float64
	err    error
	calls  int
}

func (m *mockCloses) PreviousClose(ctx context.Context, symbol string) (float64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	c, ok := m.closes[symbol]
	if !ok {
		return 0, errors.New("no close for " + symbol)
	}
	return c, nil
}

func TestCalibrate(t *testing.T) {
	src := &mockCloses{closes: map[string]float64{"SPY": 671.93, "SPX": 6734.11}}

	got := Calibrate(context.Background(), src, "SPY", "SPX", zap.NewNop())

	want := 6734.11 - 671.93*10
	assert.InDelta(t, want, float64(got), 1e-9)
	assert.Equal(t, 2, src.calls)
}

func TestCalibrate_FailureDefaultsToZero(t *testing.T) {
	tests := []struct {
		name string
		src  *mockCloses
	}{
		{"network error", &mockCloses{err: errors.New("connection refused")}},
		{"missing index", &mockCloses{closes: map[string]float64{"SPY": 671.93}}},
		{"zero close", &mockCloses{closes: map[string]float64{"SPY": 0, "SPX": 6734.11}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Zero(t, Calibrate(context.Background(), tt.src, "SPY", "SPX", zap.NewNop()))
		})
	}
}

func TestOffsetConversions(t *testing.T) {
	o := Offset(14.5)

	assert.Equal(t, 6714.5, o.IndexPrice(670.0))
	assert.Equal(t, 6734.5, o.Strike(672.0))
}
