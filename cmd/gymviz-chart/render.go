package main

import (
	"fmt"
	"os"

	"github.com/cabinz/gym-track-visualizer/internal/chart"
	"github.com/cabinz/gym-track-visualizer/internal/config"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

func render(path, exercise string, t *models.Table, cfg *config.Config, opts chart.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := chart.Render(f, t, exercise, cfg.Metrics.Config, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
