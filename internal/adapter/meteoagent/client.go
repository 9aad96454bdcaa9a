// Package meteoagent fetches the raw K-index forecast widget markup.
package meteoagent

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxBodySize bounds the widget response; the real payload is a few KiB.
const maxBodySize = 1 << 20

// Client performs the single idempotent GET of an update cycle.
type Client struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

// NewClient creates a forecast widget client. The timeout bounds the whole
// request, connection setup through body read.
func NewClient(url string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		url:    url,
		logger: logger,
	}
}

// Fetch retrieves the raw widget markup. Any transport error, timeout, or
// non-2xx status fails the call; retry policy belongs to the caller's cycle
// scheduling, not here.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("meteoagent: unexpected status %d: %s", resp.StatusCode, body)
	}

	markup, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read forecast body: %w", err)
	}

	c.logger.Debug("forecast fetched", "bytes", len(markup), "duration", time.Since(start))
	return markup, nil
}
