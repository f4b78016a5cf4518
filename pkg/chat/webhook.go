package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/cityscope/cityscope-cli/internal/resilience"
)

// WebhookGateway posts prompts to a remote automation webhook (n8n or
// similar) and extracts the answer from whichever JSON shape the workflow
// happens to return.
type WebhookGateway struct {
	url     string
	source  string
	version string
	http    *http.Client
	retry   resilience.RetryConfig
}

// WebhookOption configures the gateway.
type WebhookOption func(*WebhookGateway)

// WithWebhookHTTPClient overrides the default http.Client.
func WithWebhookHTTPClient(hc *http.Client) WebhookOption {
	return func(g *WebhookGateway) { g.http = hc }
}

// WithWebhookRetry overrides the retry policy (used in tests to drop the
// backoff sleeps).
func WithWebhookRetry(cfg resilience.RetryConfig) WebhookOption {
	return func(g *WebhookGateway) { g.retry = cfg }
}

// NewWebhookGateway creates a webhook-backed Gateway.
func NewWebhookGateway(url string, opts ...WebhookOption) *WebhookGateway {
	g := &WebhookGateway{
		url:     url,
		source:  "cityscope-cli",
		version: "1.0",
		http:    &http.Client{Timeout: 30 * time.Second},
		retry:   resilience.WebhookRetryConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type webhookRequest struct {
	Prompt       string `json:"prompt"`
	Type         string `json:"type"`
	Timestamp    string `json:"timestamp"`
	Source       string `json:"source"`
	Version      string `json:"version"`
	RetryAttempt int    `json:"retry_attempt"`
}

// Ask posts the prompt, retrying transient failures with backoff. Failures
// come back as *Error with a class for user messaging.
func (g *WebhookGateway) Ask(ctx context.Context, prompt string) (string, error) {
	attempt := 0
	answer, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (string, error) {
		attempt++
		return g.post(ctx, prompt, attempt)
	})
	if err != nil {
		zap.L().Warn("chat: webhook failed",
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		return "", wrapError(err)
	}
	return answer, nil
}

func (g *WebhookGateway) post(ctx context.Context, prompt string, attempt int) (string, error) {
	body, err := json.Marshal(webhookRequest{
		Prompt:       prompt,
		Type:         "urban_query",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		Source:       g.source,
		Version:      g.version,
		RetryAttempt: attempt,
	})
	if err != nil {
		return "", eris.Wrap(err, "chat: marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", eris.Wrap(err, "chat: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "chat: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", eris.Wrap(err, "chat: read response")
	}

	if resilience.IsTransientHTTPStatus(resp.StatusCode) {
		return "", resilience.NewTransientError(
			eris.Errorf("chat: webhook status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}
	if resp.StatusCode != http.StatusOK {
		return "", eris.Errorf("chat: webhook status %d", resp.StatusCode)
	}

	answer, ok := ExtractText(respBody)
	if !ok {
		return "", eris.New("chat: no recognizable text field in webhook response")
	}
	return answer, nil
}
