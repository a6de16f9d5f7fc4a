package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// HTTPClient implements DataSource by calling the gymviz REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// filterParams encodes a records.Filter as /api/v1/records query parameters.
func filterParams(f records.Filter) url.Values {
	v := url.Values{}
	if f.Start != nil {
		v.Set("start", f.Start.Format("2006-01-02"))
	}
	if f.End != nil {
		v.Set("end", f.End.Format("2006-01-02"))
	}
	for _, g := range f.Gyms {
		v.Add("gym", g)
	}
	if f.Name != "" {
		v.Set("name", f.Name)
	}
	return v
}

func (c *HTTPClient) QueryRecords(ctx context.Context, f records.Filter, _ int) (*models.Table, error) {
	body, err := c.get(ctx, "/api/v1/records", filterParams(f))
	if err != nil {
		return nil, err
	}

	var t models.Table
	if err := json.Unmarshal(body, &t); err != nil {
		return nil, fmt.Errorf("httpclient: decode records: %w", err)
	}
	return &t, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, _ int) ([]storage.ExerciseStat, error) {
	body, err := c.get(ctx, "/api/v1/exercises", nil)
	if err != nil {
		return nil, err
	}

	var exercises []storage.ExerciseStat
	if err := json.Unmarshal(body, &exercises); err != nil {
		return nil, fmt.Errorf("httpclient: decode exercises: %w", err)
	}
	return exercises, nil
}

func (c *HTTPClient) GetDataStats(ctx context.Context, _ int) (*storage.DataStats, error) {
	body, err := c.get(ctx, "/api/v1/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats storage.DataStats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}
