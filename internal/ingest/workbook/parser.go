// Package workbook loads workout record sheets (.xlsx or .csv) into a
// models.Table.
//
// Excerpt of a record sheet (first row holds the headers):
//
//	date|machine|name|weight_0|handle_0|reps_0|xhstd_0|weight_1|...
//	22/11/2023|shoulder press|seated shoulder press|2.5|back|12.0|0.0|5.0|...
//	22/11/2023|chest press|seated chest press|10.0||12.0|0.0|17.5|...
//
// Only date, name, gym, order and weight_<i>/reps_<i> are read. Set indices
// start at 0; which of them count toward metrics is up to metrics.SetRange.
package workbook

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Supported formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// DefaultSheetPrefix selects sheets when Options.Sheets is empty.
const DefaultSheetPrefix = "records"

// ErrNoSheets is returned when no sheet matches the selection.
var ErrNoSheets = errors.New("workbook: no matching sheets")

// Column names of the raw record sheet.
const (
	ColDate  = "date"
	ColName  = "name"
	ColGym   = "gym"
	ColOrder = "order"
)

var setColumnRe = regexp.MustCompile(`^(weight|reps)_(\d+)$`)

// Options controls sheet selection.
type Options struct {
	// Sheets lists sheet names to read. Empty selects every sheet whose name
	// starts with SheetPrefix.
	Sheets []string
	// SheetPrefix defaults to DefaultSheetPrefix.
	SheetPrefix string
}

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported format %q", filepath.Ext(path))
	}
}

// Parse reads a workbook in the given format.
func Parse(r io.Reader, format string, opts Options) (*models.Table, error) {
	switch format {
	case FormatXLSX:
		return parseXLSX(r, opts)
	case FormatCSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		rows, err := cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		t := &models.Table{}
		if err := appendSheet(t, "csv", rows); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func parseXLSX(r io.Reader, opts Options) (*models.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening xlsx: %w", err)
	}
	defer f.Close()

	sheets := opts.Sheets
	if len(sheets) == 0 {
		prefix := opts.SheetPrefix
		if prefix == "" {
			prefix = DefaultSheetPrefix
		}
		for _, name := range f.GetSheetList() {
			if strings.HasPrefix(name, prefix) {
				sheets = append(sheets, name)
			}
		}
	}
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	t := &models.Table{}
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		if err := appendSheet(t, sheet, rows); err != nil {
			return nil, err
		}
	}
	return t, nil
}

type setCols struct {
	weight, reps int
}

// appendSheet converts one sheet's rows (header first) into records.
func appendSheet(t *models.Table, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	header := rows[0]
	col := map[string]int{}
	sets := map[int]*setCols{}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if m := setColumnRe.FindStringSubmatch(h); m != nil {
			idx, _ := strconv.Atoi(m[2])
			sc, ok := sets[idx]
			if !ok {
				sc = &setCols{weight: -1, reps: -1}
				sets[idx] = sc
			}
			if m[1] == "weight" {
				sc.weight = i
			} else {
				sc.reps = i
			}
			continue
		}
		col[h] = i
	}
	dateCol, ok := col[ColDate]
	if !ok {
		return fmt.Errorf("sheet %q: missing %q column", sheet, ColDate)
	}
	nameCol, ok := col[ColName]
	if !ok {
		return fmt.Errorf("sheet %q: missing %q column", sheet, ColName)
	}

	for idx := range sets {
		if !t.HasSetColumn(idx) {
			t.SetColumns = append(t.SetColumns, idx)
		}
	}
	sort.Ints(t.SetColumns)

	for n, row := range rows[1:] {
		line := n + 2
		rawDate := cell(row, dateCol)
		if rawDate == "" {
			continue
		}
		date, err := ParseDate(rawDate)
		if err != nil {
			return fmt.Errorf("sheet %q row %d: %w", sheet, line, err)
		}
		r := models.Record{
			Date:   date,
			Name:   strings.TrimSpace(cell(row, nameCol)),
			Source: models.SourceWorkbook,
			Sets:   make(map[int]models.SetEntry, len(sets)),
		}
		if c, ok := col[ColGym]; ok {
			r.Gym = strings.TrimSpace(cell(row, c))
		}
		if c, ok := col[ColOrder]; ok {
			if v := cell(row, c); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("sheet %q row %d: order %q: %w", sheet, line, v, err)
				}
				o := int(f)
				r.Order = &o
			}
		}
		for idx, sc := range sets {
			w, err := optionalFloat(row, sc.weight)
			if err != nil {
				return fmt.Errorf("sheet %q row %d: weight_%d: %w", sheet, line, idx, err)
			}
			reps, err := optionalFloat(row, sc.reps)
			if err != nil {
				return fmt.Errorf("sheet %q row %d: reps_%d: %w", sheet, line, idx, err)
			}
			r.Sets[idx] = models.SetEntry{Weight: w, Reps: reps}
		}
		t.Records = append(t.Records, r)
	}
	return nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// optionalFloat returns nil for empty or NaN cells.
func optionalFloat(row []string, i int) (*float64, error) {
	v := cell(row, i)
	if v == "" || strings.EqualFold(v, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02012006",
}

// ParseDate accepts Excel serial numbers and the day-first layouts the record
// sheets use. The result is truncated to the date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil && !isPackedDate(s) {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("date %q: %w", s, err)
		}
		return models.DateOnly(t), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.DateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// isPackedDate reports whether s looks like ddmmyyyy rather than an Excel serial.
func isPackedDate(s string) bool {
	return len(s) == 8 && !strings.ContainsAny(s, ".eE-+")
}
