// Package server exposes record ingest, metric queries and charts over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/cabinz/gym-track-visualizer/internal/chart"
	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/alpha"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
	"github.com/cabinz/gym-track-visualizer/internal/mcp"
	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// Store is the part of *storage.DB the handlers use.
type Store interface {
	ingest.Store
	QueryRecords(ctx context.Context, f records.Filter, userID int) (*models.Table, error)
	ListExercises(ctx context.Context, userID int) ([]storage.ExerciseStat, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	UpdateImportLog(ctx context.Context, id int64, log storage.ImportLog) error
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
}

var _ Store = (*storage.DB)(nil)

// Settings carries the configuration the handlers need.
type Settings struct {
	APIKey  string
	Metrics metrics.Config
	// Workers splits metric computation for large tables; 0 or 1 computes inline.
	Workers int
	Chart   chart.Options
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	workbook  *workbook.Provider
	alpha     *alpha.Provider
	settings  Settings
	log       *slog.Logger
	router    chi.Router
	tailscale WhoIser
}

// New creates a new Server with all routes configured.
func New(db Store, settings Settings, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		workbook: workbook.NewProvider(db, log),
		alpha:    alpha.NewProvider(db, log),
		settings: settings,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches identity resolution from the local dev user to
// Tailscale WhoIs lookups. Call before serving.
func (s *Server) SetTailscale(lc WhoIser) {
	s.tailscale = lc
}

func (s *Server) identity(next http.Handler) http.Handler {
	dev := DevIdentity(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			dev.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.db, s.log)(next).ServeHTTP(w, r)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(s.identity)

	// Ingest endpoints (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.settings.APIKey))
		r.Post("/records", s.handleRecordsIngest)
		r.Post("/alpha", s.handleAlphaIngest)
	})

	// Query endpoints (no API key; tsnet handles access)
	s.router.Get("/api/v1/records", s.handleQueryRecords)
	s.router.Get("/api/v1/exercises", s.handleExercises)
	s.router.Get("/api/v1/charts/{name}", s.handleChart)
	s.router.Get("/api/v1/summary", s.handleSummary)
	s.router.Get("/api/v1/stats", s.handleStats)
	s.router.Get("/api/v1/import-logs", s.handleImportLogs)
	s.router.Get("/api/v1/me", s.handleMe)
}

// SetMCP mounts the MCP server on /mcp using the streamable HTTP transport.
// Tool calls run as the user resolved by the identity middleware.
func (s *Server) SetMCP(m *mcpserver.MCPServer) {
	h := mcpserver.NewStreamableHTTPServer(m,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return mcp.WithUserID(ctx, userIDFromContext(r))
		}),
	)
	s.router.Handle("/mcp", h)
}
