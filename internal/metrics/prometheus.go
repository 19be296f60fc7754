// Package metrics exposes scan outcomes and the latest levels to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Metrics holds every collector of the guardian.
type Metrics struct {
	Scans        *prometheus.CounterVec
	ScanSkips    *prometheus.CounterVec
	ScanDuration prometheus.Histogram
	LastScan     prometheus.Gauge

	Spot           prometheus.Gauge
	NetExposure    *prometheus.GaugeVec
	Level          *prometheus.GaugeVec
	WallStrength   *prometheus.GaugeVec
	Strategy       *prometheus.GaugeVec
	WebSocketConns prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Passing nil uses
// a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		Scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_scans_total",
				Help: "Total number of scans by outcome",
			},
			[]string{"status"}, // status: success|skipped|error
		),
		ScanSkips: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "guardian_scan_skips_total",
				Help: "Scans skipped by reason",
			},
			[]string{"reason"}, // reason: holiday|closed|no_data
		),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guardian_scan_duration_seconds",
			Help:    "Scan duration in seconds, fetch included",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),
		LastScan: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_last_scan_timestamp",
			Help: "Unix timestamp of the last successful scan",
		}),
		Spot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_spot",
			Help: "Index-scale spot of the last scan",
		}),
		NetExposure: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "guardian_net_exposure",
				Help: "Net exposure of the last scan",
			},
			[]string{"greek"}, // greek: gex|dex|vex|cex
		),
		Level: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "guardian_level_strike",
				Help: "Detected level strikes of the last scan",
			},
			[]string{"level"}, // level: call_wall|put_wall|magnet
		),
		WallStrength: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "guardian_wall_strength_pct",
				Help: "Wall share of total absolute GEX",
			},
			[]string{"side"},
		),
		Strategy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "guardian_strategy",
				Help: "1 for the strategy of the last scan",
			},
			[]string{"strategy"},
		),
		WebSocketConns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guardian_websocket_connections",
			Help: "Open websocket connections",
		}),
		gatherer: reg,
	}

	reg.MustRegister(
		m.Scans, m.ScanSkips, m.ScanDuration, m.LastScan,
		m.Spot, m.NetExposure, m.Level, m.WallStrength, m.Strategy,
		m.WebSocketConns,
	)
	return m
}

// Handler returns the Prometheus HTTP handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveScan records a successful scan.
func (m *Metrics) ObserveScan(r *scan.Result, elapsed time.Duration) {
	m.Scans.WithLabelValues("success").Inc()
	m.ScanDuration.Observe(elapsed.Seconds())
	m.LastScan.SetToCurrentTime()

	m.Spot.Set(r.Spot)
	m.NetExposure.WithLabelValues("gex").Set(r.Metrics.NetGEX)
	m.NetExposure.WithLabelValues("dex").Set(r.Metrics.NetDEX)
	m.NetExposure.WithLabelValues("vex").Set(r.Metrics.NetVEX)
	m.NetExposure.WithLabelValues("cex").Set(r.Metrics.NetCEX)
	m.Level.WithLabelValues("call_wall").Set(float64(r.Levels.CallWall))
	m.Level.WithLabelValues("put_wall").Set(float64(r.Levels.PutWall))
	m.Level.WithLabelValues("magnet").Set(float64(r.Levels.Magnet))
	m.WallStrength.WithLabelValues("call").Set(r.Levels.CallStrengthPct)
	m.WallStrength.WithLabelValues("put").Set(r.Levels.PutStrengthPct)

	m.Strategy.Reset()
	m.Strategy.WithLabelValues(string(r.Strategy)).Set(1)
}

// ObserveSkip records a scan skipped for an expected reason.
func (m *Metrics) ObserveSkip(reason string) {
	m.Scans.WithLabelValues("skipped").Inc()
	m.ScanSkips.WithLabelValues(reason).Inc()
}

// ObserveFailure records an unexpected scan failure.
func (m *Metrics) ObserveFailure() {
	m.Scans.WithLabelValues("error").Inc()
}

var _ scan.Recorder = (*Metrics)(nil)
