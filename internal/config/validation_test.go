package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
)

func validConfig() *Config {
	p := exposure.DefaultParams()
	return &Config{
		Market: MarketConfig{ProxySymbol: "SPY", IndexSymbol: "SPX", Timezone: "America/New_York", CloseHour: 16},
		API:    APIConfig{RatePerSecond: 2, RetryCount: 3, Breaker: BreakerConfig{FailureRatio: 0.6}},
		Model: ModelConfig{
			Rate: p.Rate, MinOpenInterest: p.MinOpenInterest,
			WideWindowPct: p.WideWindowPct, NarrowWindowPct: p.NarrowWindowPct,
			TightenHour: p.TightenHour, DecayThreshold: p.DecayThreshold, DecayFactor: p.DecayFactor,
			Multiplier: p.Multiplier, BucketWidth: p.BucketWidth,
		},
		Scan:    ScanConfig{IntervalSec: 300, CooldownSec: 60},
		Replay:  ReplayConfig{DataMode: "memory", CacheMode: "exhaust"},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validConfig()
	cfg.Market.Timezone = "Mars/Olympus"
	cfg.Model.NarrowWindowPct = 0.2
	cfg.Replay.CacheMode = "loop"
	cfg.Logging.Level = "verbose"

	err := cfg.Validate()
	require.Error(t, err)

	var verrs *ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs.Fields, 4)

	msg := err.Error()
	assert.Contains(t, msg, "market.timezone=Mars/Olympus")
	assert.Contains(t, msg, "model.narrow_window_pct")
	assert.Contains(t, msg, "replay.cache_mode=loop")
	assert.Contains(t, msg, "exhaust, rotation")
	assert.Contains(t, msg, "logging.level=verbose")
}

func TestValidate_EnabledChannelsNeedSettings(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Ntfy = NtfyConfig{Enabled: true, Priority: "loud"}
	cfg.Notify.Telegram = TelegramConfig{Enabled: true}

	var verrs *ValidationErrors
	require.True(t, errors.As(cfg.Validate(), &verrs))

	fields := make([]string, 0, len(verrs.Fields))
	for _, f := range verrs.Fields {
		fields = append(fields, f.Field)
	}
	assert.ElementsMatch(t, []string{
		"notify.ntfy.topic",
		"notify.ntfy.priority",
		"notify.telegram.token",
		"notify.telegram.chat_id",
	}, fields)
}

func TestValidate_DisabledChannelsAreIgnored(t *testing.T) {
	cfg := validConfig()
	cfg.Notify.Ntfy = NtfyConfig{Priority: "loud"}
	assert.NoError(t, cfg.Validate())
}
