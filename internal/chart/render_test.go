package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
)

func TestRender(t *testing.T) {
	rows := []exposure.Row{
		{Strike: 6680, GEX: -4e8},
		{Strike: 6685, GEX: -1e8},
		{Strike: 6690, GEX: 2e8},
		{Strike: 6695, GEX: 5e8},
	}
	lv := levels.Levels{CallWall: 6695, PutWall: 6680, Magnet: 6690}

	opt := DefaultOptions()
	b, err := RenderWith(rows, 6688, lv, opt)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, opt.Width, img.Bounds().Dx())
	assert.Equal(t, opt.Height, img.Bounds().Dy())
}

func TestRender_WidensForManyStrikes(t *testing.T) {
	rows := make([]exposure.Row, 60)
	for i := range rows {
		rows[i] = exposure.Row{Strike: 6550 + 5*i, GEX: float64(i-30) * 1e7}
	}
	opt := DefaultOptions()
	b, err := RenderWith(rows, 6700, levels.Levels{CallWall: 6845, PutWall: 6550, Magnet: 6700}, opt)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	want := 2*opt.Margin + len(rows)*(opt.BarWidth+opt.BarSpacing)
	assert.Greater(t, want, opt.Width)
	assert.Equal(t, want, img.Bounds().Dx())
	assert.Equal(t, opt.Height, img.Bounds().Dy())
}

func TestRender_Empty(t *testing.T) {
	_, err := Render(nil, 6700, levels.Levels{})
	assert.ErrorIs(t, err, ErrEmpty)
}

func TestRender_FlatProfile(t *testing.T) {
	rows := []exposure.Row{{Strike: 6700}}
	b, err := Render(rows, 6700, levels.NeutralAt(6700))
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(b))
	assert.NoError(t, err)
}

func TestLabel(t *testing.T) {
	lv := levels.Levels{CallWall: 6700, PutWall: 6650, Magnet: 6700}
	assert.Equal(t, "6700 CW MAG SPOT", label(6700, lv, true))
	assert.Equal(t, "6650 PW", label(6650, lv, false))
	assert.Equal(t, "6675", label(6675, lv, false))
}

func TestTicks(t *testing.T) {
	ts := ticks(5e8, 4)
	require.Len(t, ts, 5)
	assert.InDelta(t, -5e8, ts[0].Value, 1)
	assert.InDelta(t, 0, ts[2].Value, 1)
	assert.Equal(t, "0", ts[2].Label)
	assert.Equal(t, "-500 M", ts[0].Label)
	assert.Equal(t, "500 M", ts[4].Label)
}

func TestNearest(t *testing.T) {
	rows := []exposure.Row{{Strike: 6680}, {Strike: 6685}, {Strike: 6690}}
	assert.Equal(t, 1, nearest(rows, 6686))
	assert.Equal(t, 2, nearest(rows, 6750))
}
