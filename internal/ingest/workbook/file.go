package workbook

import (
	"fmt"
	"os"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// ParseFile opens path and parses it according to its extension.
func ParseFile(path string, opts Options) (*models.Table, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	t, err := Parse(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return t, nil
}
