package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

const maxAttempts = 3

// Client sends record files to the gymviz server over HTTP.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	// backoff returns the wait before the given retry (1-based).
	backoff func(retry int) time.Duration
}

// NewClient creates a new HTTP client for the gymviz server.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: func(retry int) time.Duration {
			return time.Duration(1<<uint(retry-1)) * time.Second
		},
	}
}

// ingestPath returns the endpoint for a source.
func ingestPath(source string) (string, error) {
	switch source {
	case models.SourceWorkbook:
		return "/api/v1/ingest/records", nil
	case models.SourceAlpha:
		return "/api/v1/ingest/alpha", nil
	default:
		return "", fmt.Errorf("unknown source %q", source)
	}
}

// Upload POSTs one file's bytes to the ingest endpoint for source.
// Server errors and transport failures are retried up to 3 times with
// exponential backoff; 4xx responses are returned at once.
func (c *Client) Upload(ctx context.Context, source, filename string, data []byte) (*ingest.Result, error) {
	path, err := ingestPath(source)
	if err != nil {
		return nil, err
	}
	u := c.serverURL + path + "?" + url.Values{"filename": {filename}}.Encode()

	var lastErr error
	for attempt := range maxAttempts {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/octet-stream")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var res ingest.Result
			if err := json.Unmarshal(body, &res); err != nil {
				return nil, fmt.Errorf("decoding ingest result: %w", err)
			}
			return &res, nil
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, fmt.Errorf("ingest rejected %s (status %d): %s", filename, resp.StatusCode, bytes.TrimSpace(body))
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil, fmt.Errorf("after %d attempts: %w", maxAttempts, lastErr)
}
