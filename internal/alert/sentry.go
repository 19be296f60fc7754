// Package alert reports unexpected scan failures to an error tracker.
package alert

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

// Tracker implements error tracking via Sentry
type Tracker struct {
	hub    *sentry.Hub
	tags   map[string]string
	logger *zap.Logger
}

// Config selects the Sentry project and tags every event.
type Config struct {
	DSN         string
	Environment string
	Release     string
	Tags        map[string]string
}

// New creates a Sentry-backed tracker.
func New(cfg Config, logger *zap.Logger) (*Tracker, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
	})
	if err != nil {
		return nil, err
	}

	return &Tracker{
		hub:    sentry.NewHub(client, sentry.NewScope()),
		tags:   cfg.Tags,
		logger: logger,
	}, nil
}

// Alert sends err to Sentry tagged with the component that failed.
func (t *Tracker) Alert(ctx context.Context, err error) {
	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("component", "scan")
		for k, v := range t.tags {
			scope.SetTag(k, v)
		}
		scope.SetLevel(sentry.LevelError)
	})

	if id := hub.CaptureException(err); id != nil {
		t.logger.Debug("error reported", zap.String("event_id", string(*id)))
	}
}

// Flush waits for pending events to be sent
func (t *Tracker) Flush(timeout time.Duration) bool {
	return t.hub.Flush(timeout)
}

// Noop drops every alert; used when no DSN is configured.
type Noop struct{}

func (Noop) Alert(context.Context, error) {}

// Flush is a no-op.
func (Noop) Flush(time.Duration) bool { return true }
