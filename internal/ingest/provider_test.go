package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

type fakeStore struct {
	source string
	recs   []models.Record
	err    error
}

func (f *fakeStore) ReplaceDays(_ context.Context, _ int, source string, recs []models.Record) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.source = source
	f.recs = recs
	var sets int64
	for _, r := range recs {
		sets += int64(len(r.Sets))
	}
	return int64(len(recs)), sets, nil
}

// TestSaveSkipsUnnamed verifies unnamed records are counted as skipped and the
// source is stamped on the rest.
func TestSaveSkipsUnnamed(t *testing.T) {
	day := time.Date(2023, 11, 22, 0, 0, 0, 0, time.UTC)
	tb := &models.Table{Records: []models.Record{
		{Date: day, Name: "bench press", Sets: map[int]models.SetEntry{1: {}}},
		{Date: day},
		{Date: day.AddDate(0, 0, 1), Name: "leg press"},
	}}
	store := &fakeStore{}
	res, err := Save(context.Background(), store, 1, models.SourceWorkbook, tb)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.RecordsReceived != 3 || res.RecordsSkipped != 1 || res.RecordsInserted != 2 {
		t.Errorf("result = %+v", res)
	}
	if res.Days != 2 || res.SetsInserted != 1 {
		t.Errorf("days/sets = %d/%d, want 2/1", res.Days, res.SetsInserted)
	}
	for _, r := range store.recs {
		if r.Source != models.SourceWorkbook {
			t.Errorf("source = %q", r.Source)
		}
	}
}

// TestSaveEmpty verifies nothing reaches the store when no record is usable.
func TestSaveEmpty(t *testing.T) {
	store := &fakeStore{err: errors.New("should not be called")}
	res, err := Save(context.Background(), store, 1, models.SourceAlpha, &models.Table{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Message == "" {
		t.Error("expected a message for an empty import")
	}
}

// TestSaveStoreError verifies store failures propagate.
func TestSaveStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	tb := &models.Table{Records: []models.Record{{Name: "row"}}}
	if _, err := Save(context.Background(), store, 1, models.SourceAlpha, tb); err == nil {
		t.Error("expected error")
	}
}
