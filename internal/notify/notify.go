// Package notify posts change notifications to an HTTP endpoint so
// external consumers (overlay frontends, dashboards) can refresh when
// the store changes.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"spawnkit/internal/config"
	"spawnkit/internal/spawn"
)

const defaultTimeout = 10 * time.Second

// HTTPNotifier implements spawn.Notifier by POSTing a JSON payload to
// a configured endpoint.
type HTTPNotifier struct {
	endpoint string
	client   *http.Client
}

var _ spawn.Notifier = (*HTTPNotifier)(nil)

// NewNotifierFromConfig creates a notifier from configuration. When no
// endpoint is configured, a no-op notifier is returned so callers never
// need a nil check.
func NewNotifierFromConfig(cfg config.NotifyConfig) spawn.Notifier {
	if cfg.Endpoint == "" {
		return spawn.NewNopNotifier()
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &HTTPNotifier{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type changePayload struct {
	Kind      string `json:"kind"`
	Timestamp string `json:"timestamp"`
}

// NotifyChanged posts a change event for the given collection kind.
func (n *HTTPNotifier) NotifyChanged(ctx context.Context, kind spawn.ChangeKind) error {
	payload := changePayload{
		Kind:      string(kind),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
