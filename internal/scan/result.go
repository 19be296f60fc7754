package scan

import (
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/regime"
)

// Metrics are the scan-level figures handed to presentation.
type Metrics struct {
	NetGEX          float64          `json:"net_gex"`
	NetCEX          float64          `json:"net_cex"`
	NetDEX          float64          `json:"net_dex"`
	NetVEX          float64          `json:"net_vex"`
	CallDist        float64          `json:"call_dist"` // call wall minus spot
	PutDist         float64          `json:"put_dist"`  // spot minus put wall
	CallStrengthPct float64          `json:"call_strength_pct"`
	PutStrengthPct  float64          `json:"put_strength_pct"`
	Dominance       levels.Dominance `json:"dominance"`
}

// NewMetrics derives the metrics of a table and its levels.
func NewMetrics(table *exposure.Table, spot float64, lv levels.Levels) Metrics {
	return Metrics{
		NetGEX:          table.NetGEX(),
		NetCEX:          table.NetCEX(),
		NetDEX:          table.NetDEX(),
		NetVEX:          table.NetVEX(),
		CallDist:        float64(lv.CallWall) - spot,
		PutDist:         spot - float64(lv.PutWall),
		CallStrengthPct: lv.CallStrengthPct,
		PutStrengthPct:  lv.PutStrengthPct,
		Dominance:       lv.Dominance,
	}
}

// Inputs maps the metrics onto the regime decision table.
func (m Metrics) Inputs(hour float64) regime.Inputs {
	return regime.Inputs{
		NetGEX:          m.NetGEX,
		CallDist:        m.CallDist,
		PutDist:         m.PutDist,
		CallStrengthPct: m.CallStrengthPct,
		PutStrengthPct:  m.PutStrengthPct,
		Hour:            hour,
	}
}

// Result is everything one scan produces. Table is the full filtered profile
// and Display the presentation window of it.
type Result struct {
	ID            uuid.UUID          `json:"id"`
	Time          time.Time          `json:"time"`
	Spot          float64            `json:"spot"`
	Expiry        string             `json:"expiry"`
	TimeToExpiry  float64            `json:"time_to_expiry"`
	Hour          float64            `json:"hour"`
	Offset        float64            `json:"basis_offset"`
	Contracts     int                `json:"contracts"`
	Levels        levels.Levels      `json:"levels"`
	Indeterminate bool               `json:"indeterminate"`
	Metrics       Metrics            `json:"metrics"`
	Strategy      regime.Strategy    `json:"strategy"`
	Rule          string             `json:"rule"`
	Display       []exposure.Row     `json:"display"`
	Table         *exposure.Table    `json:"-"`
	Snapshot      *exposure.Snapshot `json:"-"`
}
