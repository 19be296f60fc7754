package notify

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Report is one rendered notification.
type Report struct {
	Title    string
	Body     string
	Chart    []byte // PNG, may be nil
	Priority string // ntfy priority override, empty for the configured one
	Tags     string // extra ntfy tags
}

// FormatReport creates the scan summary body.
func FormatReport(r *scan.Result, loc *time.Location) string {
	var sb strings.Builder

	if loc == nil {
		loc = time.UTC
	}

	sb.WriteString(fmt.Sprintf("Spot: %s @ %s\n", price(r.Spot), r.Time.In(loc).Format("15:04 MST")))
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", r.Strategy))
	sb.WriteString(fmt.Sprintf("Call wall: %s (%.1f%%, %+.1f pts)\n",
		humanize.Comma(int64(r.Levels.CallWall)), r.Levels.CallStrengthPct, r.Metrics.CallDist))
	sb.WriteString(fmt.Sprintf("Put wall: %s (%.1f%%, %+.1f pts)\n",
		humanize.Comma(int64(r.Levels.PutWall)), r.Levels.PutStrengthPct, -r.Metrics.PutDist))
	sb.WriteString(fmt.Sprintf("Magnet: %s\n", humanize.Comma(int64(r.Levels.Magnet))))
	sb.WriteString(fmt.Sprintf("Net GEX: %s | Net CEX: %s\n", dollars(r.Metrics.NetGEX), dollars(r.Metrics.NetCEX)))
	sb.WriteString(fmt.Sprintf("Dominance: %s x%.2f", r.Metrics.Dominance.Side, r.Metrics.Dominance.Score))

	if r.Indeterminate {
		sb.WriteString("\n\nNo gamma in range, levels pinned to spot")
	}

	return sb.String()
}

// FormatFailureMessage creates a failure notification body.
func FormatFailureMessage(err error, cooldown time.Duration) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %v", err))
	if cooldown > 0 {
		sb.WriteString(fmt.Sprintf("\nNext attempt in %s", cooldown.Round(time.Second)))
	}
	return sb.String()
}

func price(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// dollars formats an exposure compactly, e.g. -$1.25B.
func dollars(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	if math.Abs(v) < 1000 {
		return fmt.Sprintf("%s$%.0f", sign, math.Abs(v))
	}
	scaled, prefix := humanize.ComputeSI(math.Abs(v))
	switch prefix {
	case "k":
		prefix = "K"
	case "G":
		prefix = "B"
	}
	return fmt.Sprintf("%s$%.2f%s", sign, scaled, prefix)
}
