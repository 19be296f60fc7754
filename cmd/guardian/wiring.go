package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/alert"
	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/data"
	"github.com/dgnsrekt/titan-guardian/internal/events"
	"github.com/dgnsrekt/titan-guardian/internal/marketdata"
	"github.com/dgnsrekt/titan-guardian/internal/metrics"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
	"github.com/dgnsrekt/titan-guardian/internal/server"
	"github.com/dgnsrekt/titan-guardian/internal/session"
	"github.com/dgnsrekt/titan-guardian/internal/ws"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

type livePipeline struct {
	clock   *session.Clock
	source  *marketdata.Source
	offset  basis.Offset
	scanner *scan.Scanner
}

func newClock() *session.Clock {
	return session.NewClock(cfg.Market.Timezone, cfg.Market.CloseHour, cfg.Market.CloseMinute)
}

// newLivePipeline wires the API client and calibrates the basis once. The
// offset stays fixed for the life of the process.
func newLivePipeline(ctx context.Context) (*livePipeline, error) {
	if err := cfg.RequireAPIKey(); err != nil {
		return nil, err
	}

	clock := newClock()
	httpClient := marketdata.NewClient(
		cfg.API.BaseURL,
		cfg.API.APIKey,
		cfg.API.RatePerSecond,
		cfg.API.Timeout(),
		cfg.API.RetryDelayDuration(),
		cfg.API.RetryCount,
		logger,
	)
	client := marketdata.NewBreakerClient(httpClient, cfg.API.BreakerSettings(), logger)

	source := marketdata.NewSource(client, cfg.Market.ProxySymbol, 0, clock.Location(), logger)
	offset := basis.Calibrate(ctx, source, cfg.Market.ProxySymbol, cfg.Market.IndexSymbol, logger)
	source = source.WithOffset(offset)

	return &livePipeline{
		clock:   clock,
		source:  source,
		offset:  offset,
		scanner: scan.NewScanner(source, clock, offset, cfg.Model.Params(), logger),
	}, nil
}

// alerter is the error tracker, or a no-op without a DSN.
type alerter interface {
	scan.Alerter
	Flush(timeout time.Duration) bool
}

func newAlerter() (alerter, error) {
	if cfg.Alert.SentryDSN == "" {
		return alert.Noop{}, nil
	}
	return alert.New(alert.Config{
		DSN:         cfg.Alert.SentryDSN,
		Environment: cfg.Alert.Environment,
		Release:     "titan-guardian@" + version,
		Tags: map[string]string{
			"proxy": cfg.Market.ProxySymbol,
			"index": cfg.Market.IndexSymbol,
		},
	}, logger)
}

// newLoader opens a recording according to the replay data mode.
func newLoader(path string) (data.RecordLoader, error) {
	if cfg.Replay.DataMode == "stream" {
		return data.NewStreamLoader(path, logger)
	}
	return data.NewMemoryLoader(path, logger)
}

// surfaces are the read side of the daemon: the latest result, the
// websocket hub and the HTTP server around them.
type surfaces struct {
	store   *data.LatestStore
	events  *events.Broadcaster
	hub     *ws.Hub
	metrics *metrics.Metrics
	http    *http.Server
}

// sinks returns the surfaces that want every scan.
func (s *surfaces) sinks() []scan.Sink {
	out := []scan.Sink{s.store}
	if s.events != nil {
		out = append(out, s.events)
	}
	if s.hub != nil {
		out = append(out, s.hub)
	}
	return out
}

// startSurfaces starts the hub and HTTP server when enabled. Both stop when
// ctx is cancelled; call shutdown to drain the server.
func startSurfaces(ctx context.Context, m *metrics.Metrics) (*surfaces, error) {
	s := &surfaces{store: data.NewLatestStore(), metrics: m}
	if !cfg.Server.Enabled {
		return s, nil
	}

	hostname, _ := os.Hostname()
	s.events = events.NewBroadcaster(hostname, s.store, logger)

	mounts := server.Mounts{Metrics: m.Handler(), Events: s.events}
	if cfg.Server.WSEnabled {
		hub, err := ws.NewHub(logger, ws.WithGauge(m.WebSocketConns))
		if err != nil {
			return nil, err
		}
		go hub.Run(ctx)
		s.hub = hub
		mounts.WebSocket = hub
		mounts.Negotiate = ws.NewNegotiateHandler(server.WebSocketPath, logger)
	}

	router, err := server.NewRouter(server.NewServer(s.store, logger), mounts, logger)
	if err != nil {
		return nil, err
	}

	s.http = &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     router,
		ReadTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", s.http.Addr), zap.Bool("ws", s.hub != nil))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	return s, nil
}

func (s *surfaces) shutdown() {
	if s.http == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}
