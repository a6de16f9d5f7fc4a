package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

const recordsCSV = `date,name,gym,weight_1,reps_1,weight_2,reps_2
2024-03-01,bench press,city,40,12,42.5,9
2024-03-08,bench press,city,42.5,10,45,8
`

const alphaCSV = `"Push · Day 1";"2024-03-08 18:00 h";"1:02 hr"
"1. Bench Press · Barbell · 8 reps";"WU1 · 20 kg · 10 reps"
#;KG;REPS;RIR
1;60;8;2
2;60;8;1
"2. Dips · Bodyweight · 10 reps"
#;KG;REPS;RIR
1;+10;10;1
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

type call struct {
	source string
	n      int
}

type fakeStore struct {
	calls []call
}

func (f *fakeStore) ReplaceDays(_ context.Context, _ int, source string, recs []models.Record) (int64, int64, error) {
	f.calls = append(f.calls, call{source: source, n: len(recs)})
	var sets int64
	for _, r := range recs {
		sets += int64(len(r.Sets))
	}
	return int64(len(recs)), sets, nil
}

func testDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "2024/records.csv", recordsCSV)
	writeFile(t, dir, "2024/alpha-export.csv", alphaCSV)
	writeFile(t, dir, "2024/broken.csv", "name,reps_1\nbench,10\n")
	writeFile(t, dir, "notes.txt", "not a workbook")
	writeFile(t, dir, "~$records.xlsx", "lock")
	writeFile(t, dir, ".cache/old.csv", recordsCSV)
	return dir
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestDetect verifies Alpha exports are told apart from record sheets by
// content, not extension.
func TestDetect(t *testing.T) {
	dir := testDir(t)
	cases := map[string]string{
		"2024/records.csv":      models.SourceWorkbook,
		"2024/alpha-export.csv": models.SourceAlpha,
	}
	for name, want := range cases {
		got, err := Detect(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("Detect(%s): %v", name, err)
		}
		if got != want {
			t.Errorf("Detect(%s) = %q, want %q", name, got, want)
		}
	}
	if _, err := Detect(filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("expected error for .txt")
	}
}

// TestImport verifies both sources are stored, broken files counted and
// ignored files skipped.
func TestImport(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, quietLogger(), Options{Workers: 2})
	stats, err := imp.Import(context.Background(), testDir(t))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.FilesProcessed != 2 || stats.FilesErrored != 1 || stats.FilesSkipped != 1 {
		t.Errorf("files processed/errored/skipped = %d/%d/%d, want 2/1/1",
			stats.FilesProcessed, stats.FilesErrored, stats.FilesSkipped)
	}
	if stats.RecordsParsed != 4 || stats.RecordsInserted != 4 {
		t.Errorf("records parsed/inserted = %d/%d, want 4/4", stats.RecordsParsed, stats.RecordsInserted)
	}
	if stats.ActiveDays != 2 {
		t.Errorf("active days = %d, want 2", stats.ActiveDays)
	}
	// Lexical path order: alpha-export.csv before records.csv.
	if len(store.calls) != 2 || store.calls[0].source != models.SourceAlpha || store.calls[1].source != models.SourceWorkbook {
		t.Errorf("store calls = %+v", store.calls)
	}
}

// TestImportDryRun verifies nothing is stored in dry-run mode while counts
// are still reported.
func TestImportDryRun(t *testing.T) {
	store := &fakeStore{}
	imp := New(store, quietLogger(), Options{DryRun: true})
	stats, err := imp.Import(context.Background(), testDir(t))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(store.calls) != 0 {
		t.Errorf("dry run stored %d batches", len(store.calls))
	}
	if stats.RecordsParsed != 4 || stats.RecordsInserted != 0 {
		t.Errorf("records parsed/inserted = %d/%d, want 4/0", stats.RecordsParsed, stats.RecordsInserted)
	}
}

// TestImportMissingDir verifies a missing directory is an error.
func TestImportMissingDir(t *testing.T) {
	imp := New(&fakeStore{}, quietLogger(), Options{})
	if _, err := imp.Import(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
