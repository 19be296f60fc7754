package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/session"
)

// Sink receives every successful scan.
type Sink interface {
	Publish(ctx context.Context, r *Result) error
}

// Alerter is told about unexpected scan failures.
type Alerter interface {
	Alert(ctx context.Context, err error)
}

// Recorder observes scan outcomes.
type Recorder interface {
	ObserveScan(r *Result, elapsed time.Duration)
	ObserveSkip(reason string)
	ObserveFailure()
}

// RunnerConfig sets the cadence of the loop.
type RunnerConfig struct {
	Interval     time.Duration
	Cooldown     time.Duration // extra wait after an unexpected failure
	RunOnStartup bool
}

// Runner calls the scanner on a fixed cadence during market days.
type Runner struct {
	scanner  *Scanner
	clock    *session.Clock
	cfg      RunnerConfig
	sinks    []Sink
	alerters []Alerter
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

func WithSinks(sinks ...Sink) RunnerOption {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

func WithAlerters(alerters ...Alerter) RunnerOption {
	return func(r *Runner) { r.alerters = append(r.alerters, alerters...) }
}

func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func NewRunner(scanner *Scanner, clock *session.Clock, cfg RunnerConfig, logger *zap.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{
		scanner:  scanner,
		clock:    clock,
		cfg:      cfg,
		recorder: noopRecorder{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run scans every interval until ctx is cancelled. Failures never stop the
// loop; an unexpected one delays the next scan by the cooldown.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("runner started",
		zap.Duration("interval", r.cfg.Interval),
		zap.Duration("cooldown", r.cfg.Cooldown),
		zap.Bool("runOnStartup", r.cfg.RunOnStartup),
	)

	if r.cfg.RunOnStartup {
		r.cycle(ctx)
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("context cancelled, runner stopping")
			return nil
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	if err := r.Tick(ctx); err != nil && !IsExpected(err) && r.cfg.Cooldown > 0 {
		r.logger.Info("cooling down after failure", zap.Duration("cooldown", r.cfg.Cooldown))
		select {
		case <-ctx.Done():
		case <-time.After(r.cfg.Cooldown):
		}
	}
}

// Tick performs one scan and fans the result out. Expected skips return
// ErrMarketClosed or ErrNoData; any other error, including a recovered
// panic, has already been reported.
func (r *Runner) Tick(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, p)
			r.logger.Error("scan panicked", zap.Any("panic", p), zap.Stack("stack"))
			r.fail(ctx, err)
		}
	}()

	now := r.now()
	if !r.clock.IsMarketDay(now) {
		r.logger.Debug("not a market day", zap.String("date", r.clock.TodayDate(now)))
		r.recorder.ObserveSkip("holiday")
		return ErrMarketClosed
	}

	start := time.Now()
	result, err := r.scanner.RunOnce(ctx, now)
	switch {
	case errors.Is(err, ErrMarketClosed):
		r.logger.Debug("market closed, skipping scan")
		r.recorder.ObserveSkip("closed")
		return err
	case errors.Is(err, ErrNoData):
		r.logger.Warn("no data, skipping scan", zap.Error(err))
		r.recorder.ObserveSkip("no_data")
		return err
	case errors.Is(err, context.Canceled):
		return err
	case err != nil:
		r.logger.Error("scan failed", zap.Error(err))
		r.fail(ctx, err)
		return err
	}

	r.recorder.ObserveScan(result, time.Since(start))
	for _, s := range r.sinks {
		if err := s.Publish(ctx, result); err != nil {
			r.logger.Warn("sink publish failed", zap.Error(err))
		}
	}
	return nil
}

func (r *Runner) fail(ctx context.Context, err error) {
	r.recorder.ObserveFailure()
	for _, a := range r.alerters {
		a.Alert(ctx, err)
	}
}

type noopRecorder struct{}

func (noopRecorder) ObserveScan(*Result, time.Duration) {}
func (noopRecorder) ObserveSkip(string)                 {}
func (noopRecorder) ObserveFailure()                    {}
