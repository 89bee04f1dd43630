// Package notify delivers run summaries to an external collector. Delivery
// is best effort: a failed callback never affects the analysis outcome.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
)

const contentTypeJSON = "application/json"

// Notifier POSTs completed run summaries to a configured callback URL.
type Notifier struct {
	url    string
	http   *retryablehttp.Client
	logger *slog.Logger
}

// New returns a Notifier, or nil when no callback URL is configured. A nil
// Notifier is safe to call.
func New(callbackURL string, logger *slog.Logger) *Notifier {
	if callbackURL == "" {
		return nil
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &Notifier{url: callbackURL, http: client, logger: logger}
}

// Send posts the summary JSON to the callback URL.
func (n *Notifier) Send(ctx context.Context, summary any) error {
	if n == nil {
		return nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("callback %s: %w", n.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("callback %s: unexpected status %d", n.url, resp.StatusCode)
	}

	n.logger.Info("run summary delivered", "url", n.url)
	return nil
}
