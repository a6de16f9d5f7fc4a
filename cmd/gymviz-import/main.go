package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/importer"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dir := flag.String("path", "", "directory holding workbooks and Alpha exports (required)")
	sheets := flag.String("sheets", "", "comma-separated sheet names (default: sheets starting with \"records\")")
	workers := flag.Int("workers", 0, "concurrent parsers (default: GOMAXPROCS)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dir == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymviz-import -config config.yaml -path /path/to/records [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		log.Error("path does not exist or is not a directory", "path", *dir)
		os.Exit(1)
	}

	opts := importer.Options{DryRun: *dryRun, Workers: *workers}
	if *sheets != "" {
		opts.Sheets = workbook.Options{Sheets: strings.Split(*sheets, ",")}
	}
	ctx := context.Background()

	var store *storage.DB
	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")

		store, err = storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		log.Info("database connected")
	}

	imp := importer.New(store, log, opts)
	stats, err := imp.Import(ctx, *dir)
	if err != nil {
		log.Error("import failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	log.Info("import complete")
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"records_parsed", stats.RecordsParsed,
		"records_skipped", stats.RecordsSkipped,
		"records_inserted", stats.RecordsInserted,
		"sets_inserted", stats.SetsInserted,
		"active_days", stats.ActiveDays,
	)
}
