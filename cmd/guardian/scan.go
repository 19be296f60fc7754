package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

func scanCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a single scan and print the exposure table",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := newLivePipeline(cmd.Context())
			if err != nil {
				return err
			}

			res, err := pipeline.scanner.RunOnce(cmd.Context(), time.Now())
			if errors.Is(err, scan.ErrMarketClosed) {
				fmt.Fprintln(os.Stdout, "market is closed")
				return nil
			}
			if err != nil {
				return err
			}

			printResult(os.Stdout, res, full)
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "print every strike instead of the display window")
	return cmd
}

func calibrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibrate",
		Short: "Print the basis offset between the proxy and the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := newLivePipeline(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "%s -> %s offset: %+.2f\n",
				cfg.Market.ProxySymbol, cfg.Market.IndexSymbol, float64(pipeline.offset))
			return nil
		},
	}
}

// printResult writes the summary and table of one scan.
func printResult(w io.Writer, res *scan.Result, full bool) {
	lv := res.Levels
	fmt.Fprintf(w, "%s  spot %s  expiry %s  strategy %s (%s)\n",
		res.Time.Format("2006-01-02 15:04:05 MST"),
		humanize.FormatFloat("#,###.##", res.Spot),
		res.Expiry, res.Strategy, res.Rule)
	fmt.Fprintf(w, "call wall %d (%.1f%%)  put wall %d (%.1f%%)  magnet %d  %s %.2fx  net gex %s\n",
		lv.CallWall, lv.CallStrengthPct, lv.PutWall, lv.PutStrengthPct, lv.Magnet,
		lv.Dominance.Side, lv.Dominance.Score, signedSI(res.Metrics.NetGEX))
	if res.Indeterminate {
		fmt.Fprintln(w, "levels indeterminate, neutral fallback in use")
	}
	fmt.Fprintln(w)

	rows := res.Display
	if full && res.Table != nil {
		rows = res.Table.Rows
	}
	printTable(w, rows, lv.CallWall, lv.PutWall, lv.Magnet)
}

func printTable(w io.Writer, rows []exposure.Row, callWall, putWall, magnet int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "STRIKE\tGEX\tDEX\tVEX\tCEX\t\t")

	// highest strike first, like a ladder
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		mark := ""
		switch r.Strike {
		case callWall:
			mark = "call wall"
		case putWall:
			mark = "put wall"
		case magnet:
			mark = "magnet"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			strconv.Itoa(r.Strike), signedSI(r.GEX), signedSI(r.DEX), signedSI(r.VEX), signedSI(r.CEX), mark)
	}
	tw.Flush()
}

func signedSI(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return sign + humanize.SIWithDigits(v, 2, "")
}
