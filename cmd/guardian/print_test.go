package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/levels"
	"github.com/dgnsrekt/titan-guardian/internal/regime"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

func TestPrintResult(t *testing.T) {
	res := &scan.Result{
		Time:     time.Date(2025, 11, 14, 15, 30, 0, 0, time.UTC),
		Spot:     6701.25,
		Expiry:   "2025-11-14",
		Strategy: regime.LongGammaRange,
		Rule:     "long gamma",
		Levels:   levels.Levels{CallWall: 6720, PutWall: 6680, Magnet: 6700},
		Display: []exposure.Row{
			{Strike: 6680, GEX: -9e8},
			{Strike: 6700, GEX: 1e8},
			{Strike: 6720, GEX: 1.2e9},
		},
	}

	var buf bytes.Buffer
	printResult(&buf, res, false)
	out := buf.String()

	assert.Contains(t, out, "6,701.25")
	assert.Contains(t, out, string(regime.LongGammaRange))

	lines := strings.Split(out, "\n")
	var strikes []string
	for _, l := range lines {
		fields := strings.Fields(l)
		if len(fields) > 0 && strings.HasPrefix(fields[0], "67") {
			strikes = append(strikes, fields[0])
		}
	}
	require.Equal(t, []string{"6720", "6700", "6680"}, strikes, "highest strike first")
	assert.Contains(t, out, "call wall")
	assert.Contains(t, out, "put wall")
	assert.Contains(t, out, "magnet")
}

func TestSignedSI(t *testing.T) {
	assert.True(t, strings.HasPrefix(signedSI(-1.5e9), "-1.5 G"))
	assert.True(t, strings.HasPrefix(signedSI(2.5e6), "2.5 M"))
}
