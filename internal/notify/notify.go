package notify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/titan-guardian/internal/chart"
	"github.com/dgnsrekt/titan-guardian/internal/scan"
)

// Sender delivers a rendered report over one channel.
type Sender interface {
	Send(ctx context.Context, r Report) error
}

// Client implements the ntfy notification client.
type Client struct {
	httpClient *http.Client
	config     *NtfyConfig
	logger     *zap.Logger
}

// NewClient creates a new ntfy client.
func NewClient(cfg *NtfyConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
	}
}

// Send posts the report. With a chart the PNG is the request body and the
// text travels in the Message header, which ntfy turns into an attachment.
func (c *Client) Send(ctx context.Context, r Report) error {
	url := fmt.Sprintf("%s/%s", strings.TrimSuffix(c.config.Server, "/"), c.config.Topic)

	method, body := http.MethodPost, io.Reader(strings.NewReader(r.Body))
	if len(r.Chart) > 0 {
		method, body = http.MethodPut, bytes.NewReader(r.Chart)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	priority := c.config.Priority
	if r.Priority != "" {
		priority = r.Priority
	}
	tags := c.config.Tags
	if r.Tags != "" {
		tags = strings.Trim(tags+","+r.Tags, ",")
	}

	req.Header.Set("Title", r.Title)
	req.Header.Set("Priority", priority)
	req.Header.Set("Tags", tags)
	if len(r.Chart) > 0 {
		req.Header.Set("Filename", "gex.png")
		// header values cannot carry raw newlines
		req.Header.Set("Message", strings.ReplaceAll(r.Body, "\n", `\n`))
	}

	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("failed to send notification", zap.Error(err))
		return fmt.Errorf("sending notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Drain response body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("notification failed",
			zap.Int("status", resp.StatusCode),
			zap.String("url", url),
		)
		return fmt.Errorf("notification failed with status: %d", resp.StatusCode)
	}

	c.logger.Debug("notification sent", zap.String("title", r.Title))
	return nil
}

// Multi renders each scan once and fans it out to every sender. It is both
// a scan sink and a failure alerter.
type Multi struct {
	senders  []Sender
	config   *Config
	location *time.Location
	cooldown time.Duration
	logger   *zap.Logger
}

// NewMulti creates a fan-out over senders. cooldown is only quoted in
// failure messages.
func NewMulti(cfg *Config, cooldown time.Duration, logger *zap.Logger, senders ...Sender) *Multi {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return &Multi{
		senders:  senders,
		config:   cfg,
		location: loc,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Len returns the number of senders.
func (m *Multi) Len() int {
	return len(m.senders)
}

// Publish sends the scan report to every sender; the first error is returned
// after all senders have been tried.
func (m *Multi) Publish(ctx context.Context, res *scan.Result) error {
	if len(m.senders) == 0 {
		return nil
	}
	return m.send(ctx, m.report(res))
}

// Alert sends a high-priority failure message.
func (m *Multi) Alert(ctx context.Context, err error) {
	if len(m.senders) == 0 {
		return
	}
	r := Report{
		Title:    fmt.Sprintf("%s scan failed", m.config.Label),
		Body:     FormatFailureMessage(err, m.cooldown),
		Priority: "high",
		Tags:     "x",
	}
	if sendErr := m.send(ctx, r); sendErr != nil {
		m.logger.Warn("failed to deliver failure alert", zap.Error(sendErr))
	}
}

func (m *Multi) report(res *scan.Result) Report {
	r := Report{
		Title: fmt.Sprintf("%s GEX: %s", m.config.Label, res.Strategy),
		Body:  FormatReport(res, m.location),
	}
	if m.config.SendChart {
		png, err := chart.Render(res.Display, res.Spot, res.Levels)
		if err != nil {
			m.logger.Warn("chart rendering failed, sending text only", zap.Error(err))
		} else {
			r.Chart = png
		}
	}
	return r
}

func (m *Multi) send(ctx context.Context, r Report) error {
	var first error
	for _, s := range m.senders {
		if err := s.Send(ctx, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NoopNotifier is a no-op implementation for when notifications are disabled.
type NoopNotifier struct{}

// Publish is a no-op.
func (NoopNotifier) Publish(context.Context, *scan.Result) error { return nil }

// Alert is a no-op.
func (NoopNotifier) Alert(context.Context, error) {}

// Notifier is what the runner needs from a notification channel.
type Notifier interface {
	scan.Sink
	scan.Alerter
}

// New creates the appropriate notifier based on config.
func New(cfg *Config, cooldown time.Duration, logger *zap.Logger) (Notifier, error) {
	var senders []Sender

	if cfg.Ntfy.Enabled {
		senders = append(senders, NewClient(&cfg.Ntfy, logger))
	}
	if cfg.Telegram.Enabled {
		tg, err := NewTelegramClient(&cfg.Telegram, logger)
		if err != nil {
			return nil, fmt.Errorf("telegram: %w", err)
		}
		senders = append(senders, tg)
	}

	if len(senders) == 0 {
		return NoopNotifier{}, nil
	}
	return NewMulti(cfg, cooldown, logger, senders...), nil
}
