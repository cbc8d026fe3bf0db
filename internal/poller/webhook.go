package poller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPWebhookCaller polls a session by POSTing to its own webhook URL with
// an empty JSON body. The handler answers with the current session event.
type HTTPWebhookCaller struct {
	httpc *http.Client
}

func NewHTTPWebhookCaller(timeout time.Duration) *HTTPWebhookCaller {
	return &HTTPWebhookCaller{
		httpc: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPWebhookCaller) Poll(ctx context.Context, url string) (*WebhookResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build poll request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read poll response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("poll webhook returned status %d", resp.StatusCode)
	}

	var result WebhookResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("decode poll response: %w", err)
		}
	}
	return &result, nil
}
