package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client interface for testability
type Client interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
	GetExpirations(ctx context.Context, symbol string) ([]string, error)
	GetOptionChain(ctx context.Context, symbol, expiration string) ([]Option, error)
}

type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retryCount int
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, ratePerSec int, timeout, retryDelay time.Duration, retryCount int, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:       20,
		MaxConnsPerHost:    4,
		IdleConnTimeout:    90 * time.Second,
		DisableCompression: false,
	}

	return &HTTPClient{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec*2),
		retryCount: retryCount,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

func (c *HTTPClient) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	var resp QuotesResponse
	if err := c.get(ctx, "/markets/quotes", url.Values{"symbols": {symbol}}, &resp); err != nil {
		return nil, err
	}
	for _, q := range resp.Quotes.Quote {
		if q.Symbol == symbol {
			return &q, nil
		}
	}
	return nil, fmt.Errorf("quote %s: %w", symbol, ErrNotFound)
}

func (c *HTTPClient) GetExpirations(ctx context.Context, symbol string) ([]string, error) {
	var resp ExpirationsResponse
	q := url.Values{"symbol": {symbol}, "includeAllRoots": {"true"}}
	if err := c.get(ctx, "/markets/options/expirations", q, &resp); err != nil {
		return nil, err
	}
	return resp.Expirations.Date, nil
}

func (c *HTTPClient) GetOptionChain(ctx context.Context, symbol, expiration string) ([]Option, error) {
	var resp OptionChainResponse
	q := url.Values{"symbol": {symbol}, "expiration": {expiration}, "greeks": {"true"}}
	if err := c.get(ctx, "/markets/options/chains", q, &resp); err != nil {
		return nil, err
	}
	return resp.Options.Option, nil
}

// get performs a rate-limited GET with exponential-backoff retries on
// transport errors, 429 and 5xx, and decodes the JSON body into out.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, out any) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + path + "?" + query.Encode()
	c.logger.Debug("requesting", zap.String("url", endpoint))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			c.logger.Debug("retrying request",
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(lastErr))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return ErrAuthFailed
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = ErrRateLimited
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		return nil
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
