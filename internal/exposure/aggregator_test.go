package exposure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/titan-guardian/internal/basis"
	"github.com/dgnsrekt/titan-guardian/internal/greeks"
)

const (
	testSpot = 6700.0
	testT    = 180.0 / (390 * 252) // three hours to close
	morning  = 10.5
)

func call(strike float64, oi int64, iv float64) Contract {
	return Contract{Strike: strike, OpenInterest: oi, Volume: 10, ImpliedVolatility: iv, Side: greeks.Call}
}

func put(strike float64, oi int64, iv float64) Contract {
	return Contract{Strike: strike, OpenInterest: oi, Volume: 10, ImpliedVolatility: iv, Side: greeks.Put}
}

func TestAggregate_SingleCallExposure(t *testing.T) {
	p := DefaultParams()
	chain := Chain{Calls: []Contract{call(672, 1000, 0.15)}}

	table, err := Aggregate(chain, testSpot, testT, morning, 0, p)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	g := greeks.Compute(testSpot, 6720, testT, p.Rate, 0.15, p.DividendYield, greeks.Call)
	size := 1000.0 * 100
	row := table.Rows[0]

	assert.Equal(t, 6720, row.Strike)
	assert.InDelta(t, g.Gamma*size*testSpot*testSpot*0.01, row.GEX, 1e-6)
	assert.InDelta(t, g.Delta*size*testSpot, row.DEX, 1e-6)
	assert.InDelta(t, g.Vanna*size*testSpot*0.01, row.VEX, 1e-6)
	assert.InDelta(t, g.Charm*size*testSpot/365, row.CEX, 1e-6)
	assert.Greater(t, row.GEX, 0.0)
}

func TestAggregate_PutGammaIsNegative(t *testing.T) {
	chain := Chain{Puts: []Contract{put(668, 1000, 0.18)}}

	table, err := Aggregate(chain, testSpot, testT, morning, 0, DefaultParams())
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	assert.Less(t, row.GEX, 0.0)
	assert.Less(t, row.DEX, 0.0, "put delta keeps its own sign")
}

func TestAggregate_SideFollowsPartition(t *testing.T) {
	mislabeled := call(668, 1000, 0.18)
	chain := Chain{Puts: []Contract{mislabeled}}

	table, err := Aggregate(chain, testSpot, testT, morning, 0, DefaultParams())
	require.NoError(t, err)
	assert.Less(t, table.Rows[0].GEX, 0.0)
}

func TestAggregate_Filters(t *testing.T) {
	chain := Chain{
		Calls: []Contract{
			call(671, 500, 0.15),   // kept
			call(720, 5000, 0.15),  // outside +5%
			call(672, 99, 0.15),    // below OI floor
			call(673, 5000, 0),     // no IV
			call(674, 5000, -0.10), // bad IV
		},
		Puts: []Contract{
			put(620, 5000, 0.2), // outside -5%
			put(669, 100, 0.2),  // kept, OI floor is inclusive
		},
	}

	table, err := Aggregate(chain, testSpot, testT, morning, 0, DefaultParams())
	require.NoError(t, err)

	strikes := make([]int, 0, len(table.Rows))
	for _, r := range table.Rows {
		strikes = append(strikes, r.Strike)
	}
	assert.Equal(t, []int{6690, 6710}, strikes)
}

func TestAggregate_WindowTightensInAfternoon(t *testing.T) {
	chain := Chain{Calls: []Contract{
		call(670, 1000, 0.15), // at spot
		call(672, 1000, 0.15), // +0.3%
		call(674, 1000, 0.15), // +0.6%, dropped after 14:00
	}}

	morningTable, err := Aggregate(chain, testSpot, testT, 13.99, 0, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 3, morningTable.Len())

	afternoon, err := Aggregate(chain, testSpot, testT, 14.0, 0, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 2, afternoon.Len())
}

func TestAggregate_AppliesBasisOffset(t *testing.T) {
	chain := Chain{Calls: []Contract{call(670, 1000, 0.15)}}

	table, err := Aggregate(chain, testSpot, testT, morning, basis.Offset(12.4), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 6710, table.Rows[0].Strike, "6712.4 buckets to 6710")
}

func TestAggregate_SumsIntoBuckets(t *testing.T) {
	// 670.1 and 669.9 both land in the 6700 bucket
	chain := Chain{
		Calls: []Contract{call(670.1, 1000, 0.15)},
		Puts:  []Contract{put(669.9, 2000, 0.17)},
	}
	p := DefaultParams()

	table, err := Aggregate(chain, testSpot, testT, morning, 0, p)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	var offset basis.Offset
	c := contractExposure(chain.Calls[0], offset.Strike(670.1), testSpot, testT, p)
	pt := contractExposure(chain.Puts[0], offset.Strike(669.9), testSpot, testT, p)

	assert.Equal(t, 6700, table.Rows[0].Strike)
	assert.InDelta(t, c.GEX+pt.GEX, table.Rows[0].GEX, 1e-6)
	assert.InDelta(t, c.DEX+pt.DEX, table.Rows[0].DEX, 1e-6)
}

func TestAggregate_DecayDampening(t *testing.T) {
	chain := Chain{Calls: []Contract{call(670, 1000, 0.15)}}
	p := DefaultParams()
	late := 0.0015

	table, err := Aggregate(chain, testSpot, late, 15.5, 0, p)
	require.NoError(t, err)

	g := greeks.Compute(testSpot, 6700, late, p.Rate, 0.15, p.DividendYield, greeks.Call)
	undamped := g.Gamma * 1000 * 100 * testSpot * testSpot * 0.01

	assert.InDelta(t, undamped*0.5, table.Rows[0].GEX, 1e-6)
	assert.InDelta(t, g.Delta*1000*100*testSpot, table.Rows[0].DEX, 1e-6, "only gamma is dampened")
}

func TestAggregate_NoData(t *testing.T) {
	_, err := Aggregate(Chain{}, testSpot, testT, morning, 0, DefaultParams())
	assert.ErrorIs(t, err, ErrNoData)

	illiquid := Chain{Calls: []Contract{call(670, 10, 0.15)}, Puts: []Contract{put(670, 0, 0.15)}}
	_, err = Aggregate(illiquid, testSpot, testT, morning, 0, DefaultParams())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAggregate_StrikeBucketAdditive(t *testing.T) {
	a := Chain{
		Calls: []Contract{call(670, 1200, 0.14), call(672, 800, 0.15), call(675, 300, 0.16)},
		Puts:  []Contract{put(668, 900, 0.19)},
	}
	b := Chain{
		Calls: []Contract{call(670.2, 400, 0.14)},
		Puts:  []Contract{put(670, 1500, 0.18), put(665, 2500, 0.21), put(668.1, 700, 0.19)},
	}
	union := Chain{
		Calls: append(append([]Contract{}, a.Calls...), b.Calls...),
		Puts:  append(append([]Contract{}, a.Puts...), b.Puts...),
	}
	p := DefaultParams()

	ta, err := Aggregate(a, testSpot, testT, morning, 0, p)
	require.NoError(t, err)
	tb, err := Aggregate(b, testSpot, testT, morning, 0, p)
	require.NoError(t, err)
	tu, err := Aggregate(union, testSpot, testT, morning, 0, p)
	require.NoError(t, err)

	merged := Merge(ta, tb)
	require.Equal(t, tu.Len(), merged.Len())
	for i := range tu.Rows {
		assert.Equal(t, tu.Rows[i].Strike, merged.Rows[i].Strike)
		assert.InDelta(t, tu.Rows[i].GEX, merged.Rows[i].GEX, 1e-3)
		assert.InDelta(t, tu.Rows[i].DEX, merged.Rows[i].DEX, 1e-3)
		assert.InDelta(t, tu.Rows[i].VEX, merged.Rows[i].VEX, 1e-3)
		assert.InDelta(t, tu.Rows[i].CEX, merged.Rows[i].CEX, 1e-3)
	}
}

func TestTable_Totals(t *testing.T) {
	table := &Table{Rows: []Row{
		{Strike: 6690, GEX: -3, CEX: 1},
		{Strike: 6695, GEX: 5, CEX: -2},
		{Strike: 6700, GEX: -1, CEX: 0.5},
	}}

	assert.Equal(t, 1.0, table.NetGEX())
	assert.Equal(t, -0.5, table.NetCEX())

	var abs float64
	for _, r := range table.Rows {
		abs += math.Abs(r.GEX)
	}
	assert.Equal(t, abs, table.TotalAbsGEX())
	assert.Len(t, table.Window(6692, 6700), 2)
}
