// Package exposure converts an option chain into dollar exposures and
// aggregates them by strike.
package exposure

import (
	"errors"
	"math"
	"sort"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/greeks"
)

// ErrNoData is returned when filtering leaves no usable contract.
var ErrNoData = errors.New("no contracts left after filtering")

// Params are the model constants of the aggregation.
type Params struct {
	Rate            float64 // risk-free rate
	DividendYield   float64
	MinOpenInterest int64
	WideWindowPct   float64 // strike window before TightenHour
	NarrowWindowPct float64 // strike window from TightenHour on
	TightenHour     float64
	DecayThreshold  float64 // T below which gamma is dampened
	DecayFactor     float64
	Multiplier      float64 // shares per contract
	BucketWidth     int
}

// DefaultParams returns the production model constants.
func DefaultParams() Params {
	return Params{
		Rate:            0.04,
		DividendYield:   0.0,
		MinOpenInterest: 100,
		WideWindowPct:   0.05,
		NarrowWindowPct: 0.005,
		TightenHour:     14,
		DecayThreshold:  0.002,
		DecayFactor:     0.5,
		Multiplier:      100,
		BucketWidth:     5,
	}
}

// WindowPct returns the half-width of the strike window for a local hour.
func (p Params) WindowPct(hour float64) float64 {
	if hour >= p.TightenHour {
		return p.NarrowWindowPct
	}
	return p.WideWindowPct
}

// Bucket rounds an index-scale strike to the nearest bucket.
func (p Params) Bucket(strike float64) int {
	w := float64(p.BucketWidth)
	return int(math.Round(strike/w) * w)
}

// Aggregate filters the chain, converts each contract's Greeks into exposures
// and sums them by strike bucket. spot and the returned strikes are on the
// index scale; t is the year fraction to expiry and hour the local
// fractional hour used to size the strike window.
func Aggregate(chain Chain, spot, t, hour float64, offset basis.Offset, p Params) (*Table, error) {
	window := p.WindowPct(hour)
	lo, hi := spot*(1-window), spot*(1+window)

	buckets := make(map[int]*Row)
	for _, leg := range []struct {
		side      greeks.Side
		contracts []Contract
	}{{greeks.Call, chain.Calls}, {greeks.Put, chain.Puts}} {
		for _, c := range leg.contracts {
			c.Side = leg.side
			strike := offset.Strike(c.Strike)
			if strike < lo || strike > hi {
				continue
			}
			if c.OpenInterest < p.MinOpenInterest || c.ImpliedVolatility <= 0 {
				continue
			}

			key := p.Bucket(strike)
			row, ok := buckets[key]
			if !ok {
				row = &Row{Strike: key}
				buckets[key] = row
			}
			row.add(contractExposure(c, strike, spot, t, p))
		}
	}

	if len(buckets) == 0 {
		return nil, ErrNoData
	}
	return finalize(buckets), nil
}

// contractExposure sizes one contract's Greeks into dealer exposures.
func contractExposure(c Contract, strike, spot, t float64, p Params) Row {
	g := greeks.Compute(spot, strike, t, p.Rate, c.ImpliedVolatility, p.DividendYield, c.Side)

	gamma := g.Gamma
	if t < p.DecayThreshold {
		gamma *= p.DecayFactor
	}

	size := float64(c.OpenInterest) * p.Multiplier
	gex := gamma * size * spot * spot * 0.01
	if c.Side == greeks.Put {
		gex = -gex
	}

	return Row{
		GEX: gex,
		DEX: g.Delta * size * spot,
		VEX: g.Vanna * size * spot * 0.01,
		CEX: g.Charm * size * spot / 365,
	}
}

// Merge sums tables bucket by bucket.
func Merge(tables ...*Table) *Table {
	buckets := make(map[int]*Row)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			row, ok := buckets[r.Strike]
			if !ok {
				row = &Row{Strike: r.Strike}
				buckets[r.Strike] = row
			}
			row.add(r)
		}
	}
	return finalize(buckets)
}

func finalize(buckets map[int]*Row) *Table {
	rows := make([]Row, 0, len(buckets))
	for _, r := range buckets {
		rows = append(rows, *r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Strike < rows[j].Strike })
	return &Table{Rows: rows}
}
