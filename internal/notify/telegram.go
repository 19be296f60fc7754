package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// captionLimit is the Bot API limit on photo captions.
const captionLimit = 1024

// TelegramClient sends reports to one chat, as a photo with caption when a
// chart is present.
type TelegramClient struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

// NewTelegramClient authorizes the bot; it fails fast on a bad token.
func NewTelegramClient(cfg *TelegramConfig, logger *zap.Logger) (*TelegramClient, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
	}

	api, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", api.Self.UserName))

	return &TelegramClient{
		api:    api,
		chatID: cfg.ChatID,
		logger: logger,
	}, nil
}

func (t *TelegramClient) Send(ctx context.Context, r Report) error {
	text := r.Title + "\n\n" + r.Body

	var msg tgbotapi.Chattable
	if len(r.Chart) > 0 {
		photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FileBytes{Name: "gex.png", Bytes: r.Chart})
		photo.Caption = truncate(text, captionLimit)
		msg = photo
	} else {
		msg = tgbotapi.NewMessage(t.chatID, text)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := t.api.Send(msg); err != nil {
		t.logger.Warn("failed to send telegram message", zap.Error(err))
		return fmt.Errorf("sending telegram message: %w", err)
	}

	t.logger.Debug("telegram message sent", zap.String("title", r.Title))
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
