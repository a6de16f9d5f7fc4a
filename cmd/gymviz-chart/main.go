package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cabinz/gym-track-visualizer/internal/chart"
	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/importer"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

// gymviz-chart renders one PNG per exercise straight from a workbook or an
// Alpha Progression export. No database is involved.
func main() {
	file := flag.String("file", "", "workbook (.xlsx/.csv) or Alpha export (required)")
	outDir := flag.String("out", "charts", "output directory")
	configPath := flag.String("config", "", "config file for thresholds and chart layout (default: built-in)")
	start := flag.String("start", "", "first date, YYYY-MM-DD (default: earliest record)")
	end := flag.String("end", "", "last date, YYYY-MM-DD (default: latest record)")
	gyms := flag.String("gym", "", "comma-separated gyms to keep")
	name := flag.String("name", "", "render only this exercise")
	sheets := flag.String("sheets", "", "comma-separated sheet names (default: sheets starting with \"records\")")
	tick := flag.String("tick", "", "x tick mode: d, dsparse, mo, yr, moyr")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *file == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymviz-chart -file records.xlsx [-out charts] [-start -end -gym -name]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadAnalysis(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	opts := cfg.Chart
	if *tick != "" {
		if _, err := chart.TickLabels(nil, *tick); err != nil {
			log.Error("invalid -tick", "error", err)
			os.Exit(1)
		}
		opts.TickMode = *tick
	}

	filter, err := buildFilter(*start, *end, *gyms, *name)
	if err != nil {
		log.Error("invalid filter", "error", err)
		os.Exit(1)
	}

	var wbOpts workbook.Options
	if *sheets != "" {
		wbOpts.Sheets = strings.Split(*sheets, ",")
	}
	source, t, err := importer.ParseFile(*file, wbOpts)
	if err != nil {
		log.Error("failed to load records", "file", *file, "error", err)
		os.Exit(1)
	}
	sel := records.Select(t, filter)
	first, last, ok := records.DateBounds(sel)
	if !ok {
		log.Warn("no records match", "file", *file)
		return
	}
	log.Info("records loaded",
		"source", source,
		"records", sel.Len(),
		"active_days", records.ActiveDays(sel),
		"from", first.Format("2006-01-02"),
		"to", last.Format("2006-01-02"),
	)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	groups := records.ByExercise(sel)
	var g errgroup.Group
	g.SetLimit(max(cfg.Metrics.Workers, 1))
	for _, exercise := range records.Exercises(sel) {
		sub := groups[exercise]
		path := filepath.Join(*outDir, chart.FileName(exercise))
		g.Go(func() error {
			if err := render(path, exercise, sub, cfg, opts); err != nil {
				return fmt.Errorf("%s: %w", exercise, err)
			}
			log.Info("chart written", "exercise", exercise, "records", sub.Len(), "file", path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func buildFilter(start, end, gyms, name string) (records.Filter, error) {
	f := records.Filter{Name: name}
	for _, p := range []struct {
		flag string
		val  string
		dst  **time.Time
	}{{"start", start, &f.Start}, {"end", end, &f.End}} {
		if p.val == "" {
			continue
		}
		d, err := time.Parse("2006-01-02", p.val)
		if err != nil {
			return f, fmt.Errorf("-%s: %w", p.flag, err)
		}
		*p.dst = &d
	}
	for _, g := range strings.Split(gyms, ",") {
		if g = strings.TrimSpace(g); g != "" {
			f.Gyms = append(f.Gyms, g)
		}
	}
	return f, nil
}
