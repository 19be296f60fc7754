package config

import (
	"fmt"
	"strings"
	"time"
)

// FieldError is one invalid setting.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

// ValidationErrors collects all validation errors
type ValidationErrors struct {
	Fields []FieldError
}

func (e *ValidationErrors) add(field string, value any, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Value: value, Reason: reason})
}

// HasErrors returns true if any validation errors exist
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

// Error formats all validation errors into a clear message
func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("  - %s=%v: %s\n", f.Field, f.Value, f.Reason))
	}
	return sb.String()
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if c.Market.ProxySymbol == "" {
		errs.add("market.proxy_symbol", c.Market.ProxySymbol, "must not be empty")
	}
	if c.Market.IndexSymbol == "" {
		errs.add("market.index_symbol", c.Market.IndexSymbol, "must not be empty")
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		errs.add("market.timezone", c.Market.Timezone, "unknown timezone")
	}
	if c.Market.CloseHour < 0 || c.Market.CloseHour > 23 {
		errs.add("market.close_hour", c.Market.CloseHour, "must be 0-23")
	}
	if c.Market.CloseMinute < 0 || c.Market.CloseMinute > 59 {
		errs.add("market.close_minute", c.Market.CloseMinute, "must be 0-59")
	}

	if c.API.RatePerSecond < 1 {
		errs.add("api.rate_per_second", c.API.RatePerSecond, "must be >= 1")
	}
	if c.API.RetryCount < 0 {
		errs.add("api.retry_count", c.API.RetryCount, "must be >= 0")
	}
	if r := c.API.Breaker.FailureRatio; r <= 0 || r > 1 {
		errs.add("api.breaker.failure_ratio", r, "must be in (0, 1]")
	}

	validateModel(errs, c.Model)

	if c.Scan.IntervalSec < 1 {
		errs.add("scan.interval_sec", c.Scan.IntervalSec, "must be >= 1")
	}
	if c.Scan.CooldownSec < 0 {
		errs.add("scan.cooldown_sec", c.Scan.CooldownSec, "must be >= 0")
	}

	if !ValidDataModes[c.Replay.DataMode] {
		errs.add("replay.data_mode", c.Replay.DataMode, "must be one of "+keys(ValidDataModes))
	}
	if !ValidCacheModes[c.Replay.CacheMode] {
		errs.add("replay.cache_mode", c.Replay.CacheMode, "must be one of "+keys(ValidCacheModes))
	}

	if c.Notify.Ntfy.Enabled {
		if c.Notify.Ntfy.Topic == "" {
			errs.add("notify.ntfy.topic", c.Notify.Ntfy.Topic, "required when ntfy is enabled")
		}
		if !ValidPriorities[c.Notify.Ntfy.Priority] {
			errs.add("notify.ntfy.priority", c.Notify.Ntfy.Priority, "must be one of "+keys(ValidPriorities))
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.Token == "" {
			errs.add("notify.telegram.token", "", "required when telegram is enabled (set GUARDIAN_TELEGRAM_TOKEN)")
		}
		if c.Notify.Telegram.ChatID == 0 {
			errs.add("notify.telegram.chat_id", c.Notify.Telegram.ChatID, "required when telegram is enabled")
		}
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		errs.add("server.addr", c.Server.Addr, "required when the server is enabled")
	}

	if !ValidLogLevels[c.Logging.Level] {
		errs.add("logging.level", c.Logging.Level, "must be one of "+keys(ValidLogLevels))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func validateModel(errs *ValidationErrors, m ModelConfig) {
	if m.MinOpenInterest < 0 {
		errs.add("model.min_open_interest", m.MinOpenInterest, "must be >= 0")
	}
	if m.WideWindowPct <= 0 {
		errs.add("model.wide_window_pct", m.WideWindowPct, "must be > 0")
	}
	if m.NarrowWindowPct <= 0 || m.NarrowWindowPct > m.WideWindowPct {
		errs.add("model.narrow_window_pct", m.NarrowWindowPct, "must be > 0 and no wider than wide_window_pct")
	}
	if m.DecayFactor < 0 || m.DecayFactor > 1 {
		errs.add("model.decay_factor", m.DecayFactor, "must be in [0, 1]")
	}
	if m.Multiplier <= 0 {
		errs.add("model.multiplier", m.Multiplier, "must be > 0")
	}
	if m.BucketWidth < 1 {
		errs.add("model.bucket_width", m.BucketWidth, "must be >= 1")
	}
}

// RequireAPIKey is checked only by commands that talk to the live API.
func (c *Config) RequireAPIKey() error {
	if c.API.APIKey == "" {
		return fmt.Errorf("api_key is required (set GUARDIAN_API_KEY env var)")
	}
	return nil
}
