// Package mcp exposes workout records and their derived metrics as MCP tools
// and resources.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered. cfg is
// the engine configuration tools fall back to when a call sets no
// thresholds.
func New(ds DataSource, cfg metrics.Config, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("gymviz", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Gym training records server. Records hold weight/reps per set; "+
			"tools derive capacity (weight x reps) and passing-set weight boundaries. "+
			"All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, cfg: cfg, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetExerciseMetrics, Handler: h.getExerciseMetrics},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resRecentRecords, Handler: h.recentRecords},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	cfg metrics.Config
	log *slog.Logger
}

var resRecentRecords = mcp.NewResource(
	"gymviz://recent_records",
	"Recent Records",
	mcp.WithResourceDescription("Exercise records from the last 14 days with derived metrics"),
	mcp.WithMIMEType("application/json"),
)
