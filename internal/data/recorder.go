package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Recorder appends every scanned snapshot to {dir}/{date}.jsonl so the day
// can be replayed later.
type Recorder struct {
	dir      string
	location *time.Location
	mu       sync.Mutex
	logger   *zap.Logger
}

func NewRecorder(dir string, loc *time.Location, logger *zap.Logger) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating record directory: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Recorder{dir: dir, location: loc, logger: logger}, nil
}

// Path returns the file a snapshot taken at t is written to.
func (r *Recorder) Path(t time.Time) string {
	return filepath.Join(r.dir, t.In(r.location).Format("2006-01-02")+".jsonl")
}

func (r *Recorder) Publish(_ context.Context, res *scan.Result) error {
	if res.Snapshot == nil {
		return nil
	}

	line, err := json.Marshal(NewRecord(res.Snapshot, basis.Offset(res.Offset)))
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	path := r.Path(res.Snapshot.Timestamp)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	r.logger.Debug("snapshot recorded", zap.String("path", path))
	return nil
}

var _ scan.Sink = (*Recorder)(nil)
