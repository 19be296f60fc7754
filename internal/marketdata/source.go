package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/greeks"
)

// Source serves live snapshots of the proxy's nearest-expiry chain.
type Source struct {
	client   Client
	symbol   string
	offset   basis.Offset
	location *time.Location
	logger   *zap.Logger
}

// NewSource creates a Source for the proxy symbol. offset converts the
// proxy price to the index scale; loc decides what "today" is.
func NewSource(client Client, symbol string, offset basis.Offset, loc *time.Location, logger *zap.Logger) *Source {
	if loc == nil {
		loc = time.UTC
	}
	return &Source{
		client:   client,
		symbol:   symbol,
		offset:   offset,
		location: loc,
		logger:   logger,
	}
}

// WithOffset returns a copy of the source using a calibrated offset.
func (s *Source) WithOffset(offset basis.Offset) *Source {
	cp := *s
	cp.offset = offset
	return &cp
}

// PreviousClose returns the prior-session close of symbol.
func (s *Source) PreviousClose(ctx context.Context, symbol string) (float64, error) {
	q, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return q.PrevClose, nil
}

// Snapshot fetches the spot price and the chain of the first expiration on
// or after the local date of now.
func (s *Source) Snapshot(ctx context.Context, now time.Time) (*exposure.Snapshot, error) {
	expiry, err := s.nearestExpiry(ctx, now)
	if err != nil {
		return nil, err
	}

	quote, err := s.client.GetQuote(ctx, s.symbol)
	if err != nil {
		return nil, fmt.Errorf("quote %s: %w", s.symbol, err)
	}
	price := quote.Price()
	if price <= 0 {
		return nil, fmt.Errorf("quote %s has no price: %w", s.symbol, ErrNoData)
	}

	options, err := s.client.GetOptionChain(ctx, s.symbol, expiry)
	if err != nil {
		return nil, fmt.Errorf("chain %s %s: %w", s.symbol, expiry, err)
	}

	chain := toChain(expiry, options)
	if chain.Len() == 0 {
		return nil, fmt.Errorf("chain %s %s is empty: %w", s.symbol, expiry, ErrNoData)
	}

	s.logger.Debug("snapshot fetched",
		zap.String("symbol", s.symbol),
		zap.String("expiry", expiry),
		zap.Float64("proxy_price", price),
		zap.Int("calls", len(chain.Calls)),
		zap.Int("puts", len(chain.Puts)))

	return &exposure.Snapshot{
		Timestamp: now,
		Spot:      s.offset.IndexPrice(price),
		Chain:     chain,
	}, nil
}

func (s *Source) nearestExpiry(ctx context.Context, now time.Time) (string, error) {
	dates, err := s.client.GetExpirations(ctx, s.symbol)
	if err != nil {
		return "", fmt.Errorf("expirations %s: %w", s.symbol, err)
	}
	sort.Strings(dates)

	today := now.In(s.location).Format("2006-01-02")
	for _, d := range dates {
		if d >= today {
			return d, nil
		}
	}
	return "", fmt.Errorf("no expiration on or after %s: %w", today, ErrNoData)
}

func toChain(expiry string, options []Option) exposure.Chain {
	chain := exposure.Chain{Expiry: expiry}
	for _, o := range options {
		c := exposure.Contract{
			Strike:            o.Strike,
			OpenInterest:      o.OpenInterest,
			Volume:            o.Volume,
			ImpliedVolatility: o.ImpliedVolatility(),
		}
		switch strings.ToLower(o.OptionType) {
		case "call":
			c.Side = greeks.Call
			chain.Calls = append(chain.Calls, c)
		case "put":
			c.Side = greeks.Put
			chain.Puts = append(chain.Puts, c)
		}
	}
	return chain
}
