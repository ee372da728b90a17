package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"TickerScope/internal/retry"
)

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BaseURL   string
	BotToken  string
	ChatID    string
	Client    *http.Client
	Log       *logrus.Entry
	// BaseDelay and MaxDelay bound the backoff used by SendWithRetry.
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, chatID, proxyURL string, log *logrus.Entry) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &TelegramNotifier{
		BaseURL:  "https://api.telegram.org",
		BotToken: botToken,
		ChatID:   chatID,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Log:       log.WithField("component", "telegram"),
		BaseDelay: time.Second,
		MaxDelay:  30 * time.Second,
	}
}

// Enabled reports whether both a bot token and a chat id are configured.
func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

// Send sends a message to the configured chat.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	_, err := t.send(ctx, text)
	return err
}

// send reports whether a failed delivery is worth retrying: transport errors,
// 429 and 5xx are; other API errors are not.
func (t *TelegramNotifier) send(ctx context.Context, text string) (bool, error) {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	payload := map[string]string{
		"chat_id":    t.ChatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := t.Client.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return retryable, fmt.Errorf("telegram API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return false, nil
}

// SendWithRetry sends a message, retrying transient failures with exponential backoff.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	r := retry.Retryer{MaxRetries: maxRetries, BaseDelay: t.BaseDelay, MaxDelay: t.MaxDelay}
	attempt := 0
	err := r.Do(ctx, func() (bool, error) {
		attempt++
		retryable, err := t.send(ctx, text)
		if err != nil && retryable && attempt <= maxRetries {
			t.Log.WithError(err).Warnf("send failed (attempt %d/%d), retrying", attempt, maxRetries+1)
		}
		return retryable, err
	})
	if err != nil {
		return fmt.Errorf("send after %d attempt(s): %w", attempt, err)
	}
	return nil
}
