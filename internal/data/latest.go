package data

import (
	"context"
	"sync"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// LatestStore holds the most recent scan result for readers such as the
// HTTP API. Only one result is kept.
type LatestStore struct {
	mu      sync.RWMutex
	current *scan.Result
}

func NewLatestStore() *LatestStore {
	return &LatestStore{}
}

// Publish replaces the stored result.
func (s *LatestStore) Publish(_ context.Context, r *scan.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = r
	return nil
}

// Get returns the latest result, or nil before the first scan.
func (s *LatestStore) Get() *scan.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

var _ scan.Sink = (*LatestStore)(nil)
