// Package regime maps one scan's exposure metrics and the time of day to a
// strategy recommendation. Rules are evaluated in order and the first match
// wins; the order is the priority.
package regime

import "math"

// Strategy is a discrete trading recommendation.
type Strategy string

const (
	OpeningChaos     Strategy = "opening chaos, wait"
	LunchChop        Strategy = "lunch chop: condors favored"
	LunchTrap        Strategy = "lunch trap: tighten stops"
	TrapZone         Strategy = "trap zone: walls inverted"
	NoEdge           Strategy = "no edge: walls too far"
	CallWallBroken   Strategy = "call wall broken: momentum longs"
	PutWallBroken    Strategy = "put wall broken: momentum shorts"
	ResistanceFade   Strategy = "resistance fade: credit call spread"
	SupportBounce    Strategy = "support bounce: credit put spread"
	LongGammaRange   Strategy = "long gamma: range trade"
	ShortGammaScalps Strategy = "short gamma: directional scalps"
)

// Thresholds of the decision table. WeakGEX assumes the 100-share
// multiplier and index-scale spot used by the exposure aggregator.
const (
	OpeningEndHour  = 10.0
	LunchStartHour  = 11.5
	LunchEndHour    = 14.0
	FarWallPoints   = 40.0
	WeakGEX         = 5e8
	NearWallPoints  = 15.0
	MinWallStrength = 10.0
)

// Inputs are the scan-level values the decision table reads.
type Inputs struct {
	NetGEX          float64 // sign gives the gamma regime
	CallDist        float64 // call wall minus spot
	PutDist         float64 // spot minus put wall
	CallStrengthPct float64
	PutStrengthPct  float64
	Hour            float64 // local fractional hour
}

// Rule is one row of the decision table.
type Rule struct {
	Name  string
	Match func(Inputs) bool
	// Pick returns the strategy once Match holds.
	Pick func(Inputs) Strategy
}

func fixed(s Strategy) func(Inputs) Strategy {
	return func(Inputs) Strategy { return s }
}

// Rules is the ordered decision table.
var Rules = []Rule{
	{
		Name:  "opening",
		Match: func(in Inputs) bool { return in.Hour < OpeningEndHour },
		Pick:  fixed(OpeningChaos),
	},
	{
		Name:  "lunch",
		Match: func(in Inputs) bool { return in.Hour >= LunchStartHour && in.Hour < LunchEndHour },
		Pick: func(in Inputs) Strategy {
			if in.NetGEX > 0 {
				return LunchChop
			}
			return LunchTrap
		},
	},
	{
		Name:  "walls inverted",
		Match: func(in Inputs) bool { return in.CallDist < 0 && in.PutDist < 0 },
		Pick:  fixed(TrapZone),
	},
	{
		Name: "walls too far",
		Match: func(in Inputs) bool {
			return math.Abs(in.CallDist) > FarWallPoints &&
				math.Abs(in.PutDist) > FarWallPoints &&
				math.Abs(in.NetGEX) < WeakGEX
		},
		Pick: fixed(NoEdge),
	},
	{
		Name:  "call wall broken",
		Match: func(in Inputs) bool { return in.CallDist < 0 },
		Pick:  fixed(CallWallBroken),
	},
	{
		Name:  "put wall broken",
		Match: func(in Inputs) bool { return in.PutDist < 0 },
		Pick:  fixed(PutWallBroken),
	},
	{
		Name:  "near resistance",
		Match: func(in Inputs) bool { return in.CallDist < NearWallPoints && in.CallStrengthPct > MinWallStrength },
		Pick:  fixed(ResistanceFade),
	},
	{
		Name:  "near support",
		Match: func(in Inputs) bool { return in.PutDist < NearWallPoints && in.PutStrengthPct > MinWallStrength },
		Pick:  fixed(SupportBounce),
	},
	{
		Name:  "long gamma",
		Match: func(in Inputs) bool { return in.NetGEX > 0 },
		Pick:  fixed(LongGammaRange),
	},
	{
		Name:  "short gamma",
		Match: func(Inputs) bool { return true },
		Pick:  fixed(ShortGammaScalps),
	},
}

// Classify returns the strategy of the first matching rule.
func Classify(in Inputs) Strategy {
	s, _ := Evaluate(in)
	return s
}

// Evaluate returns the strategy and the name of the rule that produced it.
func Evaluate(in Inputs) (Strategy, string) {
	for _, r := range Rules {
		if r.Match(in) {
			return r.Pick(in), r.Name
		}
	}
	return ShortGammaScalps, "short gamma"
}
