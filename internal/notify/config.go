package notify

import (
	"errors"
	"fmt"
)

// NtfyConfig holds ntfy notification configuration.
type NtfyConfig struct {
	Enabled  bool   // Whether notifications are enabled
	Server   string // ntfy server URL (default: https://ntfy.sh)
	Topic    string // Topic name (required if enabled)
	Priority string // Message priority: min, low, default, high, urgent
	Tags     string // Comma-separated emoji tags (e.g., "chart_with_upwards_trend")
	Token    string // Optional access token for private topics
}

// TelegramConfig holds Telegram bot delivery configuration.
type TelegramConfig struct {
	Enabled  bool
	Token    string
	ChatID   int64
	Endpoint string // Bot API endpoint format; empty uses the public API
}

// Config selects and configures every delivery channel.
type Config struct {
	Label     string // index name shown in titles, e.g. "SPX"
	Timezone  string // timezone for timestamps in messages
	SendChart bool
	Ntfy      NtfyConfig
	Telegram  TelegramConfig
}

// Validate checks configuration is valid when enabled.
func (c *Config) Validate() error {
	var errs []error

	if c.Ntfy.Enabled {
		if c.Ntfy.Topic == "" {
			errs = append(errs, errors.New("ntfy topic is required when ntfy is enabled"))
		}
		validPriorities := map[string]bool{
			"min": true, "low": true, "default": true, "high": true, "urgent": true,
		}
		if !validPriorities[c.Ntfy.Priority] {
			errs = append(errs, fmt.Errorf("invalid ntfy priority: %s (valid: min, low, default, high, urgent)", c.Ntfy.Priority))
		}
	}

	if c.Telegram.Enabled {
		if c.Telegram.Token == "" {
			errs = append(errs, errors.New("telegram token is required when telegram is enabled"))
		}
		if c.Telegram.ChatID == 0 {
			errs = append(errs, errors.New("telegram chat_id is required when telegram is enabled"))
		}
	}

	return errors.Join(errs...)
}
