package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

const recentDays = 14

func (h *handlers) recentRecords(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	start := time.Now().AddDate(0, 0, -recentDays)
	t, err := h.ds.QueryRecords(ctx, records.Filter{Start: &start}, UserIDFromContext(ctx))
	if err != nil {
		return nil, err
	}
	records.SortByDate(t)
	if err := metrics.Compute(t, h.cfg); err != nil {
		return nil, err
	}

	data, err := json.Marshal(t.Records)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
