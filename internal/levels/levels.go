// Package levels derives the call wall, put wall and magnet from a per-strike
// exposure profile.
package levels

import (
	"errors"
	"math"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
)

// ErrIndeterminate is returned when the profile carries no gamma at all.
var ErrIndeterminate = errors.New("total absolute gamma exposure is zero")

// Side labels which wall dominates the profile.
type Side string

const (
	Bulls   Side = "Bulls"
	Bears   Side = "Bears"
	Neutral Side = "Neutral"
)

// strengthFloor bounds the dominance ratio when one side is negligible.
const strengthFloor = 0.1

// Dominance is the winning side and its strength ratio over the other side.
type Dominance struct {
	Side  Side    `json:"side"`
	Score float64 `json:"score"`
}

// Levels are the actionable strikes of one scan.
type Levels struct {
	CallWall        int       `json:"call_wall"`
	PutWall         int       `json:"put_wall"`
	Magnet          int       `json:"magnet"`
	CallStrengthPct float64   `json:"call_strength_pct"`
	PutStrengthPct  float64   `json:"put_strength_pct"`
	Dominance       Dominance `json:"dominance"`
}

// Detect finds the walls, strengths and magnet over the full table. The
// table rows must be sorted by ascending strike.
func Detect(table *exposure.Table, spot float64) (Levels, error) {
	if table == nil || table.Len() == 0 {
		return Levels{}, ErrIndeterminate
	}
	total := table.TotalAbsGEX()
	if total == 0 {
		return Levels{}, ErrIndeterminate
	}

	callRow, putRow := table.Rows[0], table.Rows[0]
	for _, r := range table.Rows[1:] {
		if r.GEX > callRow.GEX {
			callRow = r
		}
		if r.GEX < putRow.GEX {
			putRow = r
		}
	}

	callPct := math.Abs(callRow.GEX) / total * 100
	putPct := math.Abs(putRow.GEX) / total * 100

	return Levels{
		CallWall:        callRow.Strike,
		PutWall:         putRow.Strike,
		Magnet:          magnet(table.Rows, spot),
		CallStrengthPct: callPct,
		PutStrengthPct:  putPct,
		Dominance:       dominance(callPct, putPct),
	}, nil
}

// Resolve is Detect with the neutral fallback applied.
func Resolve(table *exposure.Table, spot float64) Levels {
	lv, err := Detect(table, spot)
	if err != nil {
		return NeutralAt(spot)
	}
	return lv
}

// NeutralAt places both walls and the magnet at spot with zero strength.
func NeutralAt(spot float64) Levels {
	s := int(math.Round(spot))
	return Levels{
		CallWall:  s,
		PutWall:   s,
		Magnet:    s,
		Dominance: Dominance{Side: Neutral},
	}
}

func dominance(callPct, putPct float64) Dominance {
	switch {
	case callPct > putPct:
		return Dominance{Side: Bulls, Score: callPct / math.Max(putPct, strengthFloor)}
	case putPct > callPct:
		return Dominance{Side: Bears, Score: putPct / math.Max(callPct, strengthFloor)}
	default:
		return Dominance{Side: Neutral, Score: 1}
	}
}

// magnet returns the upper strike of the negative-to-positive GEX crossing
// closest to spot, or spot itself when the profile never flips upward.
func magnet(rows []exposure.Row, spot float64) int {
	best, bestDist, found := 0, math.Inf(1), false
	for i := 1; i < len(rows); i++ {
		if rows[i-1].GEX < 0 && rows[i].GEX > 0 {
			d := math.Abs(float64(rows[i].Strike) - spot)
			if d < bestDist {
				best, bestDist, found = rows[i].Strike, d, true
			}
		}
	}
	if !found {
		return int(math.Round(spot))
	}
	return best
}

// DisplayBounds returns the presentation window around spot and the walls.
func DisplayBounds(spot float64, lv Levels) (lo, hi float64) {
	lo = math.Min(spot-50, float64(lv.PutWall)-25)
	hi = math.Max(spot+50, float64(lv.CallWall)+25)
	return lo, hi
}

// DisplayWindow trims the table for presentation only; detection always runs
// on the full table.
func DisplayWindow(table *exposure.Table, spot float64, lv Levels) []exposure.Row {
	if table == nil {
		return nil
	}
	lo, hi := DisplayBounds(spot, lv)
	return table.Window(lo, hi)
}
