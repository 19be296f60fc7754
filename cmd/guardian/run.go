package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/data"
	"github.com/dgnsrekt/titan-guardian/internal/metrics"
	"github.com/dgnsrekt/titan-guardian/internal/notify"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Scan on a fixed cadence during market hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger.Info("guardian starting",
				zap.String("version", version),
				zap.String("proxy", cfg.Market.ProxySymbol),
				zap.String("index", cfg.Market.IndexSymbol),
				zap.Duration("interval", cfg.Scan.Interval()),
			)

			pipeline, err := newLivePipeline(ctx)
			if err != nil {
				return err
			}

			tracker, err := newAlerter()
			if err != nil {
				return err
			}
			defer tracker.Flush(2 * time.Second)

			notifier, err := notify.New(cfg.NotifyConfig(), cfg.Scan.Cooldown(), logger)
			if err != nil {
				return err
			}

			m := metrics.New(nil)
			surf, err := startSurfaces(ctx, m)
			if err != nil {
				return err
			}
			defer surf.shutdown()

			sinks := append(surf.sinks(), notifier)
			if cfg.Scan.RecordDir != "" {
				rec, err := data.NewRecorder(cfg.Scan.RecordDir, pipeline.clock.Location(), logger)
				if err != nil {
					return err
				}
				sinks = append(sinks, rec)
			}

			runner := scan.NewRunner(pipeline.scanner, pipeline.clock, scan.RunnerConfig{
				Interval:     cfg.Scan.Interval(),
				Cooldown:     cfg.Scan.Cooldown(),
				RunOnStartup: cfg.Scan.RunOnStartup,
			}, logger,
				scan.WithSinks(sinks...),
				scan.WithAlerters(tracker, notifier),
				scan.WithRecorder(m),
			)

			return runner.Run(ctx)
		},
	}
}
