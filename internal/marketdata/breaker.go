package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings configures when the breaker opens.
type BreakerSettings struct {
	MaxRequests  uint32        // requests allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open-state duration
	MinRequests  uint32        // requests before the ratio is considered
	FailureRatio float64
}

// DefaultBreakerSettings suits a scan cadence of a few minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     10 * time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  3,
		FailureRatio: 0.6,
	}
}

// BreakerClient stops calling the API while it keeps failing, so a dead
// upstream costs one fast error per scan instead of a full retry ladder.
type BreakerClient struct {
	client  Client
	breaker *gobreaker.CircuitBreaker
}

func NewBreakerClient(client Client, settings BreakerSettings, logger *zap.Logger) *BreakerClient {
	return &BreakerClient{
		client: client,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "marketdata",
			MaxRequests: settings.MaxRequests,
			Interval:    settings.Interval,
			Timeout:     settings.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				if counts.Requests == 0 || counts.Requests < settings.MinRequests {
					return false
				}
				return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
			},
			// a missing symbol or expiration says nothing about upstream health
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
	}
}

func execBreaker[T any](b *gobreaker.CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	res, err := b.Execute(func() (interface{}, error) { return fn() })
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(T)
	if !ok {
		return zero, errors.New("circuit breaker: type assertion failed")
	}
	return v, nil
}

// State reports the breaker state, e.g. "closed" or "open".
func (b *BreakerClient) State() string {
	return b.breaker.State().String()
}

func (b *BreakerClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	return execBreaker(b.breaker, func() (*Quote, error) { return b.client.GetQuote(ctx, symbol) })
}

func (b *BreakerClient) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	return execBreaker(b.breaker, func() ([]string, error) { return b.client.GetExpirations(ctx, symbol) })
}

func (b *BreakerClient) GetOptionChain(ctx context.Context, symbol, expiration string) ([]Option, error) {
	return execBreaker(b.breaker, func() ([]Option, error) { return b.client.GetOptionChain(ctx, symbol, expiration) })
}
