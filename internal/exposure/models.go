package exposure

import (
	"math"
	"time"

	"github.com/dgnsrekt/titan-guardian/internal/greeks"
)

// Contract is one option leg of the chain, quoted on the proxy's strike scale.
type Contract struct {
	Strike            float64     `json:"strike"`
	OpenInterest      int64       `json:"open_interest"`
	Volume            int64       `json:"volume"`
	ImpliedVolatility float64     `json:"implied_volatility"`
	Side              greeks.Side `json:"side"`
}

// Chain is the set of contracts for a single expiry, partitioned by side.
type Chain struct {
	Expiry string     `json:"expiry"`
	Calls  []Contract `json:"calls"`
	Puts   []Contract `json:"puts"`
}

// Len returns the total number of contracts.
func (c Chain) Len() int {
	return len(c.Calls) + len(c.Puts)
}

// Snapshot is one observation of the market: the index-scale spot and the
// nearest-expiry chain. Spot already carries the basis correction.
type Snapshot struct {
	Timestamp time.Time `json:"timestamp"`
	Spot      float64   `json:"spot"`
	Chain     Chain     `json:"chain"`
}

// Row is the aggregate exposure of every contract bucketed to one strike.
type Row struct {
	Strike int     `json:"strike"`
	GEX    float64 `json:"gex"`
	DEX    float64 `json:"dex"`
	VEX    float64 `json:"vex"`
	CEX    float64 `json:"cex"`
}

func (r *Row) add(o Row) {
	r.GEX += o.GEX
	r.DEX += o.DEX
	r.VEX += o.VEX
	r.CEX += o.CEX
}

// Table is the per-strike exposure profile ordered by ascending strike.
// Strikes are unique.
type Table struct {
	Rows []Row `json:"rows"`
}

// NetGEX sums signed gamma exposure across all strikes.
func (t *Table) NetGEX() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.GEX
	}
	return sum
}

// NetCEX sums signed charm exposure across all strikes.
func (t *Table) NetCEX() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.CEX
	}
	return sum
}

// NetDEX sums signed delta exposure across all strikes.
func (t *Table) NetDEX() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.DEX
	}
	return sum
}

// NetVEX sums signed vanna exposure across all strikes.
func (t *Table) NetVEX() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += r.VEX
	}
	return sum
}

// TotalAbsGEX sums |GEX| across all strikes.
func (t *Table) TotalAbsGEX() float64 {
	var sum float64
	for _, r := range t.Rows {
		sum += math.Abs(r.GEX)
	}
	return sum
}

// Len returns the number of strikes.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Window returns the rows with lo <= strike <= hi, preserving order.
func (t *Table) Window(lo, hi float64) []Row {
	var out []Row
	for _, r := range t.Rows {
		if float64(r.Strike) >= lo && float64(r.Strike) <= hi {
			out = append(out, r)
		}
	}
	return out
}
