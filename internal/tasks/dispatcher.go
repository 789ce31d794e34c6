package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lightkeep/lightkeep/internal/logger"
	"github.com/lightkeep/lightkeep/internal/utils"
)

// HTTPDispatcher submits refresh tasks by POSTing the URL back into the
// service's own audit endpoint (or an external queue front-end with the
// same contract). One POST per URL, no retry.
type HTTPDispatcher struct {
	client *http.Client
	target string
	logger logger.Logger
}

// NewHTTPDispatcher creates a dispatcher POSTing to target.
func NewHTTPDispatcher(target string, timeout time.Duration, log logger.Logger) *HTTPDispatcher {
	return &HTTPDispatcher{
		client: &http.Client{Timeout: timeout},
		target: target,
		logger: log,
	}
}

type taskPayload struct {
	URL string `json:"url"`
}

// Submit enqueues one refresh task for url. The response body is
// discarded; only the status code matters.
func (d *HTTPDispatcher) Submit(ctx context.Context, url string) error {
	payload, err := json.Marshal(taskPayload{URL: url})
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build task request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Mark the request as coming from the task fan-out so the force-SSL
	// middleware leaves it alone, mirroring the task-queue header.
	req.Header.Set("X-AppEngine-QueueName", "lighthouse-refresh")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("task submission failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("task endpoint returned status %d", resp.StatusCode)
	}

	d.logger.Debug("refresh task submitted", logger.String("url", url))
	return nil
}
