// Package ingest holds what the per-format ingest providers share.
package ingest

import (
	"context"
	"fmt"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Result holds the outcome of an ingest operation.
type Result struct {
	RecordsReceived int   `json:"records_received"`
	RecordsInserted int64 `json:"records_inserted"`
	RecordsSkipped  int   `json:"records_skipped"`
	SetsInserted    int64 `json:"sets_inserted"`
	Days            int   `json:"days"`

	Message string `json:"message,omitempty"`
}

// ParseError wraps input a provider could not read. Nothing was stored.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store persists parsed records. ReplaceDays swaps out everything the user
// imported from source on the dates present in recs.
type Store interface {
	ReplaceDays(ctx context.Context, userID int, source string, recs []models.Record) (int64, int64, error)
}

// Save writes t through store and fills in a Result. Records without a name
// are skipped.
func Save(ctx context.Context, store Store, userID int, source string, t *models.Table) (*Result, error) {
	res := &Result{RecordsReceived: t.Len()}
	keep := make([]models.Record, 0, t.Len())
	days := map[string]bool{}
	for _, r := range t.Records {
		if r.Name == "" {
			res.RecordsSkipped++
			continue
		}
		r.Source = source
		keep = append(keep, r)
		days[r.Day().Format("2006-01-02")] = true
	}
	res.Days = len(days)
	if len(keep) == 0 {
		res.Message = "no records to import"
		return res, nil
	}
	n, sets, err := store.ReplaceDays(ctx, userID, source, keep)
	if err != nil {
		return nil, err
	}
	res.RecordsInserted = n
	res.SetsInserted = sets
	return res, nil
}
