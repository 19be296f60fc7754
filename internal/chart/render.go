// Package chart draws the per-strike GEX profile as a PNG bar chart. Bars
// run from the lowest strike on the left to the highest on the right, and
// the wall, magnet and spot strikes are tagged in the axis labels.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
)

var ErrEmpty = errors.New("no rows to chart")

var (
	positive = drawing.ColorFromHex("26a69a")
	negative = drawing.ColorFromHex("ef5350")
	magnet   = drawing.ColorFromHex("ffca28")
	wall     = drawing.ColorFromHex("263238")
)

// Options sizes the image. Width grows when the bars need more room.
type Options struct {
	Width      int
	Height     int
	BarWidth   int
	BarSpacing int
	Margin     int
	YTicks     int
}

// DefaultOptions suit a phone-sized chat preview.
func DefaultOptions() Options {
	return Options{Width: 800, Height: 520, BarWidth: 14, BarSpacing: 4, Margin: 90, YTicks: 5}
}

func (o Options) width(bars int) int {
	need := 2*o.Margin + bars*(o.BarWidth+o.BarSpacing)
	if need > o.Width {
		return need
	}
	return o.Width
}

// Render draws rows, which must be sorted by ascending strike.
func Render(rows []exposure.Row, spot float64, lv levels.Levels) ([]byte, error) {
	return RenderWith(rows, spot, lv, DefaultOptions())
}

func RenderWith(rows []exposure.Row, spot float64, lv levels.Levels, opt Options) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	spotIdx := nearest(rows, spot)
	bars := make([]gochart.Value, len(rows))
	maxAbs := 0.0
	for i, r := range rows {
		maxAbs = math.Max(maxAbs, math.Abs(r.GEX))
		bars[i] = gochart.Value{
			Value: r.GEX,
			Label: label(r.Strike, lv, i == spotIdx),
			Style: barStyle(r, lv),
		}
	}
	// a flat profile still needs a non-empty range
	if maxAbs == 0 {
		maxAbs = 1
	}
	limit := maxAbs * 1.1

	graph := gochart.BarChart{
		Title:      fmt.Sprintf("GEX by strike  spot %.2f  call wall %d  put wall %d  magnet %d", spot, lv.CallWall, lv.PutWall, lv.Magnet),
		Width:      opt.width(len(rows)),
		Height:     opt.Height,
		BarWidth:   opt.BarWidth,
		BarSpacing: opt.BarSpacing,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis:      gochart.Style{TextRotationDegrees: 90, FontSize: 8},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: -limit, Max: limit},
			Ticks: ticks(limit, opt.YTicks),
		},
		UseBaseValue: true,
		BaseValue:    0,
		Bars:         bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

func barStyle(r exposure.Row, lv levels.Levels) gochart.Style {
	fill := positive
	if r.GEX < 0 {
		fill = negative
	}
	style := gochart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1}
	switch r.Strike {
	case lv.Magnet:
		style.FillColor = magnet
		style.StrokeColor = magnet
	case lv.CallWall, lv.PutWall:
		style.StrokeColor = wall
		style.StrokeWidth = 3
	}
	return style
}

// label tags a strike with every level that sits on it.
func label(strike int, lv levels.Levels, atSpot bool) string {
	s := strconv.Itoa(strike)
	if strike == lv.CallWall {
		s += " CW"
	}
	if strike == lv.PutWall {
		s += " PW"
	}
	if strike == lv.Magnet {
		s += " MAG"
	}
	if atSpot {
		s += " SPOT"
	}
	return s
}

func nearest(rows []exposure.Row, spot float64) int {
	best := 0
	for i, r := range rows {
		if math.Abs(float64(r.Strike)-spot) < math.Abs(float64(rows[best].Strike)-spot) {
			best = i
		}
	}
	return best
}

// ticks spreads n+1 labelled values evenly across [-limit, limit].
func ticks(limit float64, n int) []gochart.Tick {
	if n < 2 {
		n = 2
	}
	out := make([]gochart.Tick, 0, n+1)
	for i := 0; i <= n; i++ {
		v := -limit + 2*limit*float64(i)/float64(n)
		out = append(out, gochart.Tick{Value: v, Label: signedSI(v)})
	}
	return out
}

func signedSI(v float64) string {
	if math.Abs(v) < 1e-9 {
		return "0"
	}
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	return sign + humanize.SIWithDigits(v, 1, "")
}
