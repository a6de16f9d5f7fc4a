// Package importer loads every record workbook and Alpha Progression export
// under a directory straight into storage.
package importer

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/alpha"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// sniffBytes is how much of a .csv is read to tell Alpha exports from
// record sheets.
const sniffBytes = 4096

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	RecordsParsed   int
	RecordsSkipped  int
	RecordsInserted int64
	SetsInserted    int64
	ActiveDays      int
}

// Options tunes an import run.
type Options struct {
	DryRun bool
	// Workers bounds concurrent parsing. 0 uses GOMAXPROCS.
	Workers int
	// Sheets is passed to the workbook parser for .xlsx files.
	Sheets workbook.Options
	// UserID owns the imported records. 0 means user 1.
	UserID int
}

// Importer parses files concurrently and stores them one at a time, in path
// order, so later files win when two cover the same day.
type Importer struct {
	store ingest.Store
	log   *slog.Logger
	opts  Options
	stats Stats
}

// New creates a new Importer.
func New(store ingest.Store, log *slog.Logger, opts Options) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.UserID == 0 {
		opts.UserID = 1
	}
	return &Importer{store: store, log: log, opts: opts}
}

// parsed is one file's parse outcome.
type parsed struct {
	path   string
	source string
	table  *models.Table
	err    error
}

// Import processes all supported files under dir.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := imp.collect(dir)
	if err != nil {
		return &imp.stats, err
	}

	results := make([]parsed, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imp.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, t, err := ParseFile(path, imp.opts.Sheets)
			results[i] = parsed{path: path, source: source, table: t, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &imp.stats, err
	}

	days := map[string]bool{}
	for _, p := range results {
		if p.err != nil {
			imp.log.Warn("parse failed", "file", p.path, "error", p.err)
			imp.stats.FilesErrored++
			continue
		}
		if p.table.Len() == 0 {
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.RecordsParsed += p.table.Len()
		for _, r := range p.table.Records {
			days[r.Day().Format("2006-01-02")] = true
		}
		if imp.opts.DryRun {
			continue
		}

		res, err := ingest.Save(ctx, imp.store, imp.opts.UserID, p.source, p.table)
		if err != nil {
			return &imp.stats, fmt.Errorf("storing %s: %w", p.path, err)
		}
		imp.stats.RecordsSkipped += res.RecordsSkipped
		imp.stats.RecordsInserted += res.RecordsInserted
		imp.stats.SetsInserted += res.SetsInserted
		imp.log.Info("imported", "file", filepath.Base(p.path), "source", p.source,
			"records", res.RecordsInserted, "sets", res.SetsInserted)
	}
	imp.stats.ActiveDays = len(days)

	return &imp.stats, nil
}

// collect returns the .xlsx and .csv files under dir in lexical order,
// skipping hidden files and office lock files.
func (imp *Importer) collect(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != dir && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		if _, err := workbook.FormatFromPath(name); err != nil {
			imp.stats.FilesSkipped++
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	return files, nil
}

// Detect reports which source a file holds: models.SourceAlpha for Alpha
// Progression exports, models.SourceWorkbook for record sheets.
func Detect(path string) (string, error) {
	format, err := workbook.FormatFromPath(path)
	if err != nil {
		return "", err
	}
	if format != workbook.FormatCSV {
		return models.SourceWorkbook, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if alpha.Sniff(head[:n]) {
		return models.SourceAlpha, nil
	}
	return models.SourceWorkbook, nil
}

// ParseFile detects the file's source and parses it into a table.
func ParseFile(path string, opts workbook.Options) (string, *models.Table, error) {
	source, err := Detect(path)
	if err != nil {
		return "", nil, err
	}
	if source == models.SourceWorkbook {
		t, err := workbook.ParseFile(path, opts)
		return source, t, err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	sessions, err := alpha.Parse(f)
	if err != nil {
		return "", nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return source, alpha.Records(sessions), nil
}
