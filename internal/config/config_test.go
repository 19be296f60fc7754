package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GUARDIAN_API_KEY", "test-key-123")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-key-123", cfg.API.APIKey)
	assert.Equal(t, "https://api.tradier.com/v1", cfg.API.BaseURL)
	assert.Equal(t, "SPY", cfg.Market.ProxySymbol)
	assert.Equal(t, "SPX", cfg.Market.IndexSymbol)
	assert.Equal(t, 5*time.Minute, cfg.Scan.Interval())
	assert.Equal(t, exposure.DefaultParams(), cfg.Model.Params())
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoadWithoutAPIKey(t *testing.T) {
	t.Setenv("GUARDIAN_API_KEY", "")

	cfg, err := Load("")
	require.NoError(t, err, "replay works without a key")
	assert.Error(t, cfg.RequireAPIKey())
}

func TestLoadFromFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	yaml := `
market:
  proxy_symbol: QQQ
  index_symbol: NDX
scan:
  interval_sec: 120
notify:
  telegram:
    enabled: true
    chat_id: 42
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("GUARDIAN_TELEGRAM_TOKEN", "bot-token")
	t.Setenv("GUARDIAN_SCAN_COOLDOWN_SEC", "30")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "QQQ", cfg.Market.ProxySymbol)
	assert.Equal(t, "NDX", cfg.Market.IndexSymbol)
	assert.Equal(t, 2*time.Minute, cfg.Scan.Interval())
	assert.Equal(t, 30*time.Second, cfg.Scan.Cooldown())

	nc := cfg.NotifyConfig()
	assert.Equal(t, "bot-token", nc.Telegram.Token)
	assert.Equal(t, int64(42), nc.Telegram.ChatID)
	assert.Equal(t, "America/New_York", nc.Timezone)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guardian.yaml")
	require.NoError(t, os.WriteFile(path, []byte("replay:\n  data_mode: tape\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "replay.data_mode")
}

func TestBreakerSettings(t *testing.T) {
	api := APIConfig{Breaker: BreakerConfig{MaxRequests: 2, IntervalSec: 60, TimeoutSec: 30, MinRequests: 4, FailureRatio: 0.5}}
	s := api.BreakerSettings()
	assert.Equal(t, uint32(2), s.MaxRequests)
	assert.Equal(t, time.Minute, s.Interval)
	assert.Equal(t, 30*time.Second, s.Timeout)
	assert.Equal(t, uint32(4), s.MinRequests)
	assert.Equal(t, 0.5, s.FailureRatio)
}

func TestLatestRecording(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"2025-11-12.jsonl": "{}\n",
		"2025-11-14.jsonl": "{}\n",
		"2025-11-15.jsonl": "",
		"notes.jsonl":      "{}\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	path, err := LatestRecording(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-11-14.jsonl"), path, "empty files are skipped")

	_, err = LatestRecording(t.TempDir())
	assert.Error(t, err)
}
