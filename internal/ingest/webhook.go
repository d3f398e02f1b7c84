package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/statusgarden/availability/internal/pkg/ctxlog"
)

const (
	defaultWebhookTimeout  = 10 * time.Second
	defaultWebhookUsername = "availability"
)

// WebhookConfig holds operator webhook configuration.
type WebhookConfig struct {
	// URL is the incoming webhook endpoint. Empty disables notification.
	URL      string
	Username string
	Timeout  time.Duration
}

// WebhookNotifier reports ingestion run failures to an operator channel via
// an incoming webhook.
type WebhookNotifier struct {
	config     WebhookConfig
	httpClient *http.Client
}

// NewWebhookNotifier creates a new webhook notifier.
func NewWebhookNotifier(config WebhookConfig) *WebhookNotifier {
	if config.Username == "" {
		config.Username = defaultWebhookUsername
	}
	if config.Timeout == 0 {
		config.Timeout = defaultWebhookTimeout
	}

	return &WebhookNotifier{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type webhookPayload struct {
	Text     string `json:"text"`
	Username string `json:"username,omitempty"`
}

// NotifyRunFailures posts a summary of a run that finished with failures.
// A nil or URL-less notifier is a no-op, so callers need not branch.
func (n *WebhookNotifier) NotifyRunFailures(ctx context.Context, report *RunReport) error {
	if n == nil || n.config.URL == "" {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "### Ingestion run %s finished with failures\n\n", report.RunID)
	fmt.Fprintf(&sb, "- incidents: %d\n- stored: %d\n- failed: %d\n- duration: %s\n",
		report.Total, report.Stored, report.Failed, report.Duration.Round(time.Millisecond))
	if len(report.Errors) > 0 {
		sb.WriteString("\nFirst errors:\n")
		for _, msg := range report.Errors {
			fmt.Fprintf(&sb, "- %s\n", msg)
		}
	}

	body, err := json.Marshal(webhookPayload{
		Text:     sb.String(),
		Username: n.config.Username,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, string(respBody))
	}

	ctxlog.FromContext(ctx).Debug("run failure report sent", "webhook", maskWebhookURL(n.config.URL))
	return nil
}

// maskWebhookURL hides part of the URL for logging.
func maskWebhookURL(url string) string {
	if len(url) > 40 {
		return url[:20] + "..." + url[len(url)-10:]
	}
	return url
}
