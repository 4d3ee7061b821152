package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskcom/internal/logger"
)

// Mailer dispatches transactional mail. Recovery mail is best-effort: the
// caller logs a failure and moves on.
type Mailer interface {
	SendRecovery(ctx context.Context, to, link string) error
}

// WebhookMailer posts a JSON payload to a transactional-mail relay endpoint.
type WebhookMailer struct {
	url    string
	from   string
	client *http.Client
}

func NewWebhookMailer(url, from string) *WebhookMailer {
	return &WebhookMailer{
		url:  url,
		from: from,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type mailPayload struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	TextBody string `json:"text_body"`
}

func (m *WebhookMailer) SendRecovery(ctx context.Context, to, link string) error {
	payload := mailPayload{
		From:     m.from,
		To:       to,
		Subject:  "Password recovery",
		TextBody: "A password reset was requested for your account.\n\nUse this one-time link within the hour:\n" + link + "\n\nIf you did not request it, ignore this message.",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail relay returned %d", resp.StatusCode)
	}

	logger.Info("Mailer: recovery mail dispatched", zap.String("to", to))
	return nil
}

// NopMailer logs instead of sending. Used when no relay is configured.
type NopMailer struct{}

func (NopMailer) SendRecovery(ctx context.Context, to, link string) error {
	logger.Warn("Mailer: no relay configured, recovery link not sent",
		zap.String("to", to))
	return nil
}
