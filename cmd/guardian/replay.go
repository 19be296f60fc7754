package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/config"
	"github.com/dgnsrekt/titan-guardian/internal/data"
	"github.com/dgnsrekt/titan-guardian/internal/metrics"
	"github.com/dgnsrekt/titan-guardian/internal/notify"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

func replayCmd() *cobra.Command {
	var (
		pace       time.Duration
		sendNotify bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "replay [FILE|DIR]",
		Short: "Run the pipeline over recorded snapshots",
		Long: `Replay reads JSONL snapshots written by "run" and analyzes each one at its
recorded time. Without an argument the newest recording in scan.record_dir
is used. With the server enabled, results are served as they are produced and
the command keeps serving after the recording ends.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				latest, err := config.LatestRecording(cfg.Scan.RecordDir)
				if err != nil {
					return err
				}
				path = latest
			}

			loader, err := newLoader(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer loader.Close()

			// each record carries the offset it was scanned with
			clock := newClock()
			scanners := map[float64]*scan.Scanner{}
			scannerFor := func(offset float64) *scan.Scanner {
				s, ok := scanners[offset]
				if !ok {
					s = scan.NewScanner(nil, clock, basis.Offset(offset), cfg.Model.Params(), logger)
					scanners[offset] = s
				}
				return s
			}
			source := data.NewReplaySource(loader, data.CacheMode(cfg.Replay.CacheMode), logger)

			m := metrics.New(nil)
			surf, err := startSurfaces(ctx, m)
			if err != nil {
				return err
			}
			defer surf.shutdown()

			sinks := surf.sinks()
			if sendNotify {
				notifier, err := notify.New(cfg.NotifyConfig(), cfg.Scan.Cooldown(), logger)
				if err != nil {
					return err
				}
				sinks = append(sinks, notifier)
			}

			logger.Info("replay starting",
				zap.String("path", path),
				zap.String("mode", cfg.Replay.CacheMode),
				zap.Int("records", source.Remaining()),
			)

			var played, skipped int
			for ctx.Err() == nil {
				rec, err := source.Next(ctx)
				if errors.Is(err, data.ErrExhausted) {
					break
				}
				if err != nil {
					return err
				}

				start := time.Now()
				res, err := scannerFor(rec.Offset).Analyze(rec.Snapshot())
				if err != nil {
					if !scan.IsExpected(err) {
						return fmt.Errorf("record at %s: %w", rec.Time().Format(time.RFC3339), err)
					}
					logger.Debug("record skipped", zap.Time("time", rec.Time()), zap.Error(err))
					skipped++
					continue
				}
				played++
				m.ObserveScan(res, time.Since(start))

				for _, s := range sinks {
					if err := s.Publish(ctx, res); err != nil {
						logger.Warn("sink publish failed", zap.Error(err))
					}
				}
				if !quiet {
					printResult(os.Stdout, res, false)
					fmt.Fprintln(os.Stdout)
				}

				if pace > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(pace):
					}
				}
			}

			logger.Info("replay finished", zap.Int("played", played), zap.Int("skipped", skipped))

			if surf.http != nil && ctx.Err() == nil {
				logger.Info("recording exhausted, still serving; interrupt to stop")
				<-ctx.Done()
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&pace, "pace", 0, "wait between records, e.g. 2s")
	cmd.Flags().BoolVar(&sendNotify, "notify", false, "deliver every result to the configured channels")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print each result")
	return cmd
}
