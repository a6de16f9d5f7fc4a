package mcp

import (
	"context"

	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface. Metrics are
// always derived by the tools, never trusted from the source.
type DataSource interface {
	QueryRecords(ctx context.Context, f records.Filter, userID int) (*models.Table, error)
	ListExercises(ctx context.Context, userID int) ([]storage.ExerciseStat, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
