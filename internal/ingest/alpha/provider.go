package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	store ingest.Store
	log   *slog.Logger
}

// NewProvider creates an Alpha Progression ingest provider.
func NewProvider(store ingest.Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log}
}

// Ingest parses an export and replaces the user's alpha records on every
// session day it contains.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*ingest.Result, error) {
	sessions, err := Parse(r)
	if err != nil {
		return nil, &ingest.ParseError{Format: "alpha export", Err: err}
	}
	res, err := ingest.Save(ctx, p.store, userID, models.SourceAlpha, Records(sessions))
	if err != nil {
		return nil, fmt.Errorf("storing alpha records: %w", err)
	}
	p.log.Info("alpha import", "user_id", userID, "sessions", len(sessions),
		"records", res.RecordsInserted, "sets", res.SetsInserted)
	return res, nil
}
