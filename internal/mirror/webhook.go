package mirror

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/ontoguard/internal/model"
)

const (
	requestTimeout = 5 * time.Second
	maxRetries     = 3
)

var httpClient = &http.Client{Timeout: requestTimeout}

// retryDelay is the base backoff between webhook attempts.
var retryDelay = time.Second

// WebhookSink posts snapshots to an HTTP endpoint.
type WebhookSink struct {
	cfg SinkConfig
}

// NewWebhookSink validates cfg and returns a webhook sink.
func NewWebhookSink(cfg SinkConfig) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	switch cfg.Format {
	case "", FormatGeneric, FormatNeo4j:
	default:
		return nil, fmt.Errorf("unknown webhook format %q", cfg.Format)
	}
	return &WebhookSink{cfg: cfg}, nil
}

// Name implements Sink.
func (w *WebhookSink) Name() string {
	return w.cfg.Name()
}

// Send posts the snapshot with retry on 5xx. 4xx responses are not retried.
func (w *WebhookSink) Send(ctx context.Context, snap model.Snapshot) error {
	body, err := FormatPayload(w.cfg.Format, snap)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("webhook cancelled: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		for k, v := range w.cfg.Headers {
			req.Header.Set(k, v)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("webhook rejected: HTTP %d", resp.StatusCode)
		}
		// 5xx: retry
		lastErr = fmt.Errorf("webhook server error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", maxRetries, lastErr)
}

// Close is a no-op.
func (w *WebhookSink) Close() error {
	return nil
}
