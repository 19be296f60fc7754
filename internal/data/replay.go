package data

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
)

// ReplaySource serves recorded snapshots in order, one per call, walking
// the loaded series in key order. It ignores the requested time.
type ReplaySource struct {
	loader RecordLoader
	cache  *IndexCache
	keys   []string
	mode   CacheMode

	mu     sync.Mutex
	series int
	logger *zap.Logger
}

func NewReplaySource(loader RecordLoader, mode CacheMode, logger *zap.Logger) *ReplaySource {
	return &ReplaySource{
		loader: loader,
		cache:  NewIndexCache(),
		keys:   loader.Keys(),
		mode:   mode,
		logger: logger,
	}
}

// Snapshot returns the next recorded snapshot. In exhaust mode it returns
// ErrExhausted once every series has been played; in rotation mode playback
// starts over.
func (r *ReplaySource) Snapshot(ctx context.Context, _ time.Time) (*exposure.Snapshot, error) {
	rec, err := r.Next(ctx)
	if err != nil {
		return nil, err
	}
	return rec.Snapshot(), nil
}

// Next returns the next record.
func (r *ReplaySource) Next(ctx context.Context) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, err := r.next(ctx)
	if err == ErrExhausted && r.mode == CacheModeRotation {
		r.logger.Debug("replay wrapped to start")
		r.cache.Reset("")
		r.series = 0
		return r.next(ctx)
	}
	return rec, err
}

func (r *ReplaySource) next(ctx context.Context) (*Record, error) {
	for r.series < len(r.keys) {
		key := r.keys[r.series]
		length, err := r.loader.GetLength(key)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", key, err)
		}

		idx, exhausted := r.cache.GetAndAdvance(key, length)
		if !exhausted {
			rec, err := r.loader.GetAtIndex(ctx, key, idx)
			if err != nil {
				return nil, fmt.Errorf("series %s index %d: %w", key, idx, err)
			}
			return rec, nil
		}

		r.logger.Debug("series exhausted", zap.String("key", key))
		r.series++
	}
	return nil, ErrExhausted
}

// Remaining returns the number of records not yet served, or -1 when
// playback rotates forever.
func (r *ReplaySource) Remaining() int {
	if r.mode == CacheModeRotation {
		return -1
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for i := r.series; i < len(r.keys); i++ {
		length, err := r.loader.GetLength(r.keys[i])
		if err != nil {
			continue
		}
		if left := length - r.cache.GetIndex(r.keys[i]); left > 0 {
			total += left
		}
	}
	return total
}

// Rewind restarts playback from the first record.
func (r *ReplaySource) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Reset("")
	r.series = 0
}
