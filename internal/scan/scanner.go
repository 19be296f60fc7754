// Package scan runs the exposure pipeline: expiry clock, data source,
// aggregation, level detection and regime classification.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/marketdata"
	"github.com/dgnsrekt/titan-guardian/internal/regime"
	"github.com/dgnsrekt/titan-guardian/internal/session"
)

// Source provides the spot price and nearest-expiry chain at a point in time.
type Source interface {
	Snapshot(ctx context.Context, now time.Time) (*exposure.Snapshot, error)
}

// Scanner runs one scan at a time. The offset is fixed for its lifetime.
type Scanner struct {
	source Source
	clock  *session.Clock
	offset basis.Offset
	params exposure.Params
	logger *zap.Logger
}

func NewScanner(source Source, clock *session.Clock, offset basis.Offset, params exposure.Params, logger *zap.Logger) *Scanner {
	return &Scanner{
		source: source,
		clock:  clock,
		offset: offset,
		params: params,
		logger: logger,
	}
}

// Offset returns the frozen basis offset.
func (s *Scanner) Offset() basis.Offset {
	return s.offset
}

// RunOnce performs a full scan at now. It returns ErrMarketClosed after the
// close and an error wrapping ErrNoData when there is nothing to analyze.
func (s *Scanner) RunOnce(ctx context.Context, now time.Time) (*Result, error) {
	if s.clock.TimeToExpiry(now) == 0 {
		return nil, ErrMarketClosed
	}

	snap, err := s.source.Snapshot(ctx, now)
	if err != nil {
		if errors.Is(err, marketdata.ErrNoData) {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: source returned no snapshot", ErrNoData)
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = now
	}

	return s.Analyze(snap)
}

// Analyze runs the pure part of the pipeline on a snapshot, timed at the
// snapshot's own timestamp.
func (s *Scanner) Analyze(snap *exposure.Snapshot) (*Result, error) {
	t := s.clock.TimeToExpiry(snap.Timestamp)
	if t == 0 {
		return nil, ErrMarketClosed
	}
	hour := s.clock.FractionalHour(snap.Timestamp)

	table, err := exposure.Aggregate(snap.Chain, snap.Spot, t, hour, s.offset, s.params)
	if err != nil {
		if errors.Is(err, exposure.ErrNoData) {
			return nil, fmt.Errorf("%w: %w", ErrNoData, err)
		}
		return nil, fmt.Errorf("aggregating: %w", err)
	}

	lv, err := levels.Detect(table, snap.Spot)
	indeterminate := errors.Is(err, levels.ErrIndeterminate)
	if err != nil {
		if !indeterminate {
			return nil, fmt.Errorf("detecting levels: %w", err)
		}
		s.logger.Warn("levels indeterminate, using neutral fallback", zap.Float64("spot", snap.Spot))
		lv = levels.NeutralAt(snap.Spot)
	}

	metrics := NewMetrics(table, snap.Spot, lv)
	strategy, rule := regime.Evaluate(metrics.Inputs(hour))

	result := &Result{
		ID:            uuid.New(),
		Time:          snap.Timestamp,
		Spot:          snap.Spot,
		Expiry:        snap.Chain.Expiry,
		TimeToExpiry:  t,
		Hour:          hour,
		Offset:        float64(s.offset),
		Contracts:     snap.Chain.Len(),
		Levels:        lv,
		Indeterminate: indeterminate,
		Metrics:       metrics,
		Strategy:      strategy,
		Rule:          rule,
		Display:       levels.DisplayWindow(table, snap.Spot, lv),
		Table:         table,
		Snapshot:      snap,
	}

	s.logger.Info("scan complete",
		zap.String("id", result.ID.String()),
		zap.Float64("spot", result.Spot),
		zap.Int("strikes", table.Len()),
		zap.Int("call_wall", lv.CallWall),
		zap.Int("put_wall", lv.PutWall),
		zap.Int("magnet", lv.Magnet),
		zap.Float64("net_gex", metrics.NetGEX),
		zap.String("strategy", string(strategy)),
	)
	return result, nil
}
