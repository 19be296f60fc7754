// Package greeks computes the Black-Scholes-Merton sensitivities used to
// size dealer hedging flow: delta, gamma, vanna and charm.
package greeks

import "math"

const sqrt2Pi = 2.5066282746310002

// Side identifies the option leg.
type Side string

const (
	Call Side = "call"
	Put  Side = "put"
)

// Greeks holds per-contract sensitivities for one unit of the underlying.
// Charm is annualized.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vanna float64 `json:"vanna"`
	Charm float64 `json:"charm"`
}

// Compute returns the Greeks of a European option with continuous dividend
// yield q.
//
// Parameters:
//   - s: spot price of the underlying
//   - k: strike
//   - t: time to expiry in years
//   - r: risk-free rate (annual)
//   - sigma: implied volatility (annual, decimal)
//   - q: dividend yield (annual, decimal)
//
// Ill-posed inputs (t, sigma or s non-positive) return zero Greeks.
func Compute(s, k, t, r, sigma, q float64, side Side) Greeks {
	if t <= 0 || sigma <= 0 || s <= 0 {
		return Greeks{}
	}

	sqrtT := math.Sqrt(t)
	volT := sigma * sqrtT
	d1 := (math.Log(s/k) + (r-q+0.5*sigma*sigma)*t) / volT
	d2 := d1 - volT

	disc := math.Exp(-q * t)
	pdf := normPDF(d1)

	g := Greeks{
		Gamma: disc * pdf / (s * volT),
		Vanna: -disc * pdf * d2 / sigma,
	}

	// shared part of charm: time decay of the d1 term
	decay := pdf * (2*(r-q)*t - d2*volT) / (2 * t * volT)

	if side == Put {
		g.Delta = disc * (normCDF(d1) - 1)
		g.Charm = -disc * (decay + q*normCDF(-d1))
	} else {
		g.Delta = disc * normCDF(d1)
		g.Charm = -disc * (decay - q*normCDF(d1))
	}

	if !g.finite() {
		return Greeks{}
	}
	return g
}

func (g Greeks) finite() bool {
	for _, v := range []float64{g.Delta, g.Gamma, g.Vanna, g.Charm} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// normPDF is the standard normal density.
func normPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}

// normCDF is the standard normal cumulative distribution via math.Erf.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
