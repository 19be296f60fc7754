package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgnsrekt/titan-guardian/internal/exposure"
	"github.com/dgnsrekt/titan-guardian/internal/marketdata"
	"github.com/dgnsrekt/titan-guardian/internal/notify"
)

type Config struct {
	Market  MarketConfig  `mapstructure:"market"`
	API     APIConfig     `mapstructure:"api"`
	Model   ModelConfig   `mapstructure:"model"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Alert   AlertConfig   `mapstructure:"alert"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MarketConfig struct {
	ProxySymbol string `mapstructure:"proxy_symbol"`
	IndexSymbol string `mapstructure:"index_symbol"`
	Timezone    string `mapstructure:"timezone"`
	CloseHour   int    `mapstructure:"close_hour"`
	CloseMinute int    `mapstructure:"close_minute"`
}

type APIConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	APIKey        string        `mapstructure:"api_key"`
	TimeoutSec    int           `mapstructure:"timeout_sec"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryDelay    int           `mapstructure:"retry_delay_sec"`
	RatePerSecond int           `mapstructure:"rate_per_second"`
	Breaker       BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests  uint32  `mapstructure:"max_requests"`
	IntervalSec  int     `mapstructure:"interval_sec"`
	TimeoutSec   int     `mapstructure:"timeout_sec"`
	MinRequests  uint32  `mapstructure:"min_requests"`
	FailureRatio float64 `mapstructure:"failure_ratio"`
}

type ModelConfig struct {
	Rate            float64 `mapstructure:"rate"`
	DividendYield   float64 `mapstructure:"dividend_yield"`
	MinOpenInterest int64   `mapstructure:"min_open_interest"`
	WideWindowPct   float64 `mapstructure:"wide_window_pct"`
	NarrowWindowPct float64 `mapstructure:"narrow_window_pct"`
	TightenHour     float64 `mapstructure:"tighten_hour"`
	DecayThreshold  float64 `mapstructure:"decay_threshold"`
	DecayFactor     float64 `mapstructure:"decay_factor"`
	Multiplier      float64 `mapstructure:"multiplier"`
	BucketWidth     int     `mapstructure:"bucket_width"`
}

type ScanConfig struct {
	IntervalSec  int    `mapstructure:"interval_sec"`
	CooldownSec  int    `mapstructure:"cooldown_sec"`
	RunOnStartup bool   `mapstructure:"run_on_startup"`
	RecordDir    string `mapstructure:"record_dir"` // empty disables recording
}

type ReplayConfig struct {
	DataMode  string `mapstructure:"data_mode"`  // "memory" or "stream"
	CacheMode string `mapstructure:"cache_mode"` // "exhaust" or "rotation"
}

type NotifyConfig struct {
	Label     string         `mapstructure:"label"`
	SendChart bool           `mapstructure:"send_chart"`
	Ntfy      NtfyConfig     `mapstructure:"ntfy"`
	Telegram  TelegramConfig `mapstructure:"telegram"`
}

type NtfyConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Server   string `mapstructure:"server"`
	Topic    string `mapstructure:"topic"`
	Priority string `mapstructure:"priority"`
	Tags     string `mapstructure:"tags"`
	Token    string `mapstructure:"token"`
}

type TelegramConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

type AlertConfig struct {
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

type LoggingConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("market.proxy_symbol", "SPY")
	v.SetDefault("market.index_symbol", "SPX")
	v.SetDefault("market.timezone", "America/New_York")
	v.SetDefault("market.close_hour", 16)
	v.SetDefault("market.close_minute", 0)
	v.SetDefault("api.base_url", "https://api.tradier.com/v1")
	v.SetDefault("api.timeout_sec", 30)
	v.SetDefault("api.retry_count", 3)
	v.SetDefault("api.retry_delay_sec", 2)
	v.SetDefault("api.rate_per_second", 2)
	v.SetDefault("api.breaker.max_requests", 1)
	v.SetDefault("api.breaker.interval_sec", 600)
	v.SetDefault("api.breaker.timeout_sec", 120)
	v.SetDefault("api.breaker.min_requests", 3)
	v.SetDefault("api.breaker.failure_ratio", 0.6)

	model := exposure.DefaultParams()
	v.SetDefault("model.rate", model.Rate)
	v.SetDefault("model.dividend_yield", model.DividendYield)
	v.SetDefault("model.min_open_interest", model.MinOpenInterest)
	v.SetDefault("model.wide_window_pct", model.WideWindowPct)
	v.SetDefault("model.narrow_window_pct", model.NarrowWindowPct)
	v.SetDefault("model.tighten_hour", model.TightenHour)
	v.SetDefault("model.decay_threshold", model.DecayThreshold)
	v.SetDefault("model.decay_factor", model.DecayFactor)
	v.SetDefault("model.multiplier", model.Multiplier)
	v.SetDefault("model.bucket_width", model.BucketWidth)

	v.SetDefault("scan.interval_sec", 300)
	v.SetDefault("scan.cooldown_sec", 60)
	v.SetDefault("scan.run_on_startup", true)
	v.SetDefault("scan.record_dir", "data")
	v.SetDefault("replay.data_mode", "memory")
	v.SetDefault("replay.cache_mode", "exhaust")
	v.SetDefault("notify.label", "SPX")
	v.SetDefault("notify.send_chart", true)
	v.SetDefault("notify.ntfy.server", "https://ntfy.sh")
	v.SetDefault("notify.ntfy.priority", "default")
	v.SetDefault("notify.ntfy.tags", "chart_with_upwards_trend")
	v.SetDefault("alert.environment", "production")
	v.SetDefault("server.enabled", false)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.ws_enabled", true)
	v.SetDefault("logging.enabled", true)
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 14)

	// Environment variable support
	v.SetEnvPrefix("GUARDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Secrets get short names
	_ = v.BindEnv("api.api_key", "GUARDIAN_API_KEY")
	_ = v.BindEnv("notify.telegram.token", "GUARDIAN_TELEGRAM_TOKEN")
	_ = v.BindEnv("alert.sentry_dsn", "GUARDIAN_SENTRY_DSN")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("default")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Params converts the model section into aggregator parameters.
func (m ModelConfig) Params() exposure.Params {
	return exposure.Params{
		Rate:            m.Rate,
		DividendYield:   m.DividendYield,
		MinOpenInterest: m.MinOpenInterest,
		WideWindowPct:   m.WideWindowPct,
		NarrowWindowPct: m.NarrowWindowPct,
		TightenHour:     m.TightenHour,
		DecayThreshold:  m.DecayThreshold,
		DecayFactor:     m.DecayFactor,
		Multiplier:      m.Multiplier,
		BucketWidth:     m.BucketWidth,
	}
}

func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

func (a APIConfig) RetryDelayDuration() time.Duration {
	return time.Duration(a.RetryDelay) * time.Second
}

func (a APIConfig) BreakerSettings() marketdata.BreakerSettings {
	return marketdata.BreakerSettings{
		MaxRequests:  a.Breaker.MaxRequests,
		Interval:     time.Duration(a.Breaker.IntervalSec) * time.Second,
		Timeout:      time.Duration(a.Breaker.TimeoutSec) * time.Second,
		MinRequests:  a.Breaker.MinRequests,
		FailureRatio: a.Breaker.FailureRatio,
	}
}

func (s ScanConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSec) * time.Second
}

func (s ScanConfig) Cooldown() time.Duration {
	return time.Duration(s.CooldownSec) * time.Second
}

// NotifyConfig builds the delivery configuration; the timezone follows
// the market so report timestamps read in exchange time.
func (c *Config) NotifyConfig() *notify.Config {
	return &notify.Config{
		Label:     c.Notify.Label,
		Timezone:  c.Market.Timezone,
		SendChart: c.Notify.SendChart,
		Ntfy: notify.NtfyConfig{
			Enabled:  c.Notify.Ntfy.Enabled,
			Server:   c.Notify.Ntfy.Server,
			Topic:    c.Notify.Ntfy.Topic,
			Priority: c.Notify.Ntfy.Priority,
			Tags:     c.Notify.Ntfy.Tags,
			Token:    c.Notify.Ntfy.Token,
		},
		Telegram: notify.TelegramConfig{
			Enabled: c.Notify.Telegram.Enabled,
			Token:   c.Notify.Telegram.Token,
			ChatID:  c.Notify.Telegram.ChatID,
		},
	}
}
