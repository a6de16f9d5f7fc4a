// Package upload sends local record workbooks and Alpha Progression exports
// to a remote gymviz server, skipping files it has already delivered.
package upload

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/cabinz/gym-track-visualizer/internal/importer"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	RecordsSent int64
	SetsSent    int64
}

// Uploader walks a directory and POSTs every new or changed file.
type Uploader struct {
	client *Client
	state  *StateDB
	root   string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, root string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		root:   root,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline. A file that fails to upload is counted
// and logged; the run continues with the next file.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	err := filepath.WalkDir(u.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != u.root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			return nil
		}
		if _, err := workbook.FormatFromPath(name); err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		u.stats.FilesTotal++
		if err := u.processFile(ctx, path); err != nil {
			u.log.Warn("upload failed", "file", path, "error", err)
			u.stats.FilesErrored++
		}
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.root, err)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) error {
	rel, err := filepath.Rel(u.root, path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}
	done, err := u.state.IsUploaded(rel, info.Size(), hash)
	if err != nil {
		return err
	}
	if done {
		u.stats.FilesSkipped++
		return nil
	}

	source, err := importer.Detect(path)
	if err != nil {
		return err
	}
	if u.dryRun {
		u.log.Info("would upload", "file", rel, "source", source, "bytes", info.Size())
		u.stats.FilesUploaded++
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	res, err := u.client.Upload(ctx, source, filepath.Base(path), data)
	if err != nil {
		return err
	}
	if err := u.state.MarkUploaded(rel, info.Size(), hash, source, res.RecordsInserted); err != nil {
		return err
	}
	u.stats.FilesUploaded++
	u.stats.RecordsSent += res.RecordsInserted
	u.stats.SetsSent += res.SetsInserted
	u.log.Info("uploaded", "file", rel, "source", source, "records", res.RecordsInserted)
	return nil
}
