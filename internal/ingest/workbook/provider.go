package workbook

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Provider processes record workbooks.
type Provider struct {
	store ingest.Store
	log   *slog.Logger
}

// NewProvider creates a workbook ingest provider.
func NewProvider(store ingest.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses a workbook and replaces the user's workbook records on every
// date it contains.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, format string, opts Options, userID int) (*ingest.Result, error) {
	t, err := Parse(r, format, opts)
	if err != nil {
		return nil, &ingest.ParseError{Format: format, Err: err}
	}
	res, err := ingest.Save(ctx, p.store, userID, models.SourceWorkbook, t)
	if err != nil {
		return nil, fmt.Errorf("storing workbook records: %w", err)
	}
	p.log.Info("workbook import", "user_id", userID, "format", format,
		"records", res.RecordsInserted, "sets", res.SetsInserted, "skipped", res.RecordsSkipped)
	return res, nil
}
