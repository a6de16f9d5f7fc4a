// Package chart draws the per-exercise training history chart: target and
// actual capacity bars on the left axis and the best passing set weight on
// the right axis.
package chart

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

// Options controls layout. Zero fields fall back to DefaultOptions.
type Options struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	TickMode      string  `yaml:"tick_mode"`
	TickRotation  float64 `yaml:"tick_rotation"`
	ShowOrder     bool    `yaml:"show_order"`
	SkipDays      bool    `yaml:"skip_days"`
	LegendOutside bool    `yaml:"legend_outside"`
	BarWidth      float64 `yaml:"bar_width"`
}

// DefaultOptions returns the layout used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Width:         1000,
		Height:        600,
		TickMode:      TickDaySparse,
		TickRotation:  35,
		LegendOutside: true,
		BarWidth:      0.8,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.TickMode == "" {
		o.TickMode = d.TickMode
	}
	if o.BarWidth <= 0 || o.BarWidth > 1 {
		o.BarWidth = d.BarWidth
	}
	return o
}

var (
	background  = color.White
	inkColor    = color.NRGBA{0x33, 0x33, 0x33, 0xff}
	gridColor   = color.NRGBA{0xdd, 0xdd, 0xdd, 0xff}
	targetColor = color.NRGBA{0x80, 0x80, 0x80, 0xff}
	barColor    = color.NRGBA{0x1e, 0x90, 0xff, 0xff} // dodgerblue
	lineColor   = color.NRGBA{0xfa, 0x80, 0x72, 0xff} // salmon
)

const (
	targetAlpha = 0.15
	yTicks      = 5
)

type layout struct {
	left, right, top, bottom float64
}

func (l layout) width() float64  { return l.right - l.left }
func (l layout) height() float64 { return l.bottom - l.top }

// Render draws the chart for t as a PNG. Metrics are recomputed on a sorted
// copy, so t is left untouched and precomputed values are ignored. An empty
// table yields a chart with only the title.
func Render(w io.Writer, t *models.Table, title string, cfg metrics.Config, opts Options) error {
	opts = opts.withDefaults()
	work := t.Clone()
	records.SortByDate(work)
	if err := metrics.Compute(work, cfg); err != nil {
		return err
	}

	dates := make([]time.Time, work.Len())
	for i, r := range work.Records {
		dates[i] = r.Day()
	}
	labels, err := TickLabels(dates, opts.TickMode)
	if err != nil {
		return err
	}

	titleFace, err := fontFace(18)
	if err != nil {
		return err
	}
	textFace, err := fontFace(12)
	if err != nil {
		return err
	}

	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(background)
	dc.Clear()

	heading := cases.Title(language.English).String(title)
	dc.SetFontFace(titleFace)
	dc.SetColor(inkColor)
	dc.DrawStringAnchored(heading, float64(opts.Width)/2, 24, 0.5, 0.5)

	if work.Len() == 0 {
		return encode(dc, w)
	}

	top := 50.0
	if opts.LegendOutside {
		top = 80
	}
	area := layout{left: 80, right: float64(opts.Width) - 80, top: top, bottom: float64(opts.Height) - 90}

	xs, slot := positions(work, opts.SkipDays, area)
	barW := slot * opts.BarWidth

	capMax, weightMax := 0.0, 0.0
	segs := make([][]segment, work.Len())
	for i, r := range work.Records {
		segs[i] = stackSegments(r, r.Metrics, cfg.SetRange)
		stacked := 0.0
		for _, s := range segs[i] {
			stacked += s.Capacity
		}
		capMax = math.Max(capMax, math.Max(stacked, r.Metrics.TargetCapacity))
		weightMax = math.Max(weightMax, r.Metrics.MaxPassWeight)
	}
	capTicks := niceTicks(capMax, yTicks)
	weightTicks := niceTicks(weightMax, yTicks)
	capTop := capTicks[len(capTicks)-1]
	weightTop := weightTicks[len(weightTicks)-1]
	capY := func(v float64) float64 { return area.bottom - v/capTop*area.height() }
	weightY := func(v float64) float64 { return area.bottom - v/weightTop*area.height() }

	dc.SetFontFace(textFace)
	drawAxes(dc, area, capTicks, capY, weightTicks, weightY)

	for i, r := range work.Records {
		x := xs[i] - barW/2
		if tc := r.Metrics.TargetCapacity; tc > 0 {
			dc.DrawRectangle(x, capY(tc), barW, area.bottom-capY(tc))
			dc.SetColor(withAlpha(targetColor, targetAlpha))
			dc.Fill()
		}
		base := 0.0
		for _, s := range segs[i] {
			if s.Capacity <= 0 {
				continue
			}
			dc.DrawRectangle(x, capY(base+s.Capacity), barW, capY(base)-capY(base+s.Capacity))
			dc.SetColor(withAlpha(barColor, s.Alpha))
			dc.Fill()
			base += s.Capacity
		}
		if opts.ShowOrder && r.Order != nil {
			dc.SetColor(inkColor)
			dc.DrawStringAnchored(Ordinal(*r.Order), xs[i], area.bottom-4, 0.5, 0)
		}
	}

	dc.SetColor(lineColor)
	dc.SetLineWidth(2)
	for i, r := range work.Records {
		y := weightY(r.Metrics.MaxPassWeight)
		if i == 0 {
			dc.MoveTo(xs[i], y)
		} else {
			dc.LineTo(xs[i], y)
		}
	}
	dc.Stroke()
	for i, r := range work.Records {
		dc.DrawCircle(xs[i], weightY(r.Metrics.MaxPassWeight), 3)
		dc.Fill()
	}

	drawTickLabels(dc, area, xs, labels, opts.TickRotation)
	drawLegend(dc, area, opts.LegendOutside)
	return encode(dc, w)
}

// positions returns bar centers and the slot width. With skipDays bars sit at
// their calendar offset from the first date; otherwise they are evenly spaced.
func positions(t *models.Table, skipDays bool, area layout) ([]float64, float64) {
	n := t.Len()
	xs := make([]float64, n)
	if !skipDays {
		slot := area.width() / float64(n)
		for i := range xs {
			xs[i] = area.left + (float64(i)+0.5)*slot
		}
		return xs, slot
	}
	first := t.Records[0].Day()
	span := int(t.Records[n-1].Day().Sub(first).Hours()/24) + 1
	slot := area.width() / float64(span)
	for i, r := range t.Records {
		day := int(r.Day().Sub(first).Hours() / 24)
		xs[i] = area.left + (float64(day)+0.5)*slot
	}
	return xs, slot
}

func drawAxes(dc *gg.Context, area layout, capTicks []float64, capY func(float64) float64,
	weightTicks []float64, weightY func(float64) float64) {
	p := message.NewPrinter(language.English)

	dc.SetLineWidth(1)
	for _, v := range capTicks {
		y := capY(v)
		dc.SetColor(gridColor)
		dc.DrawLine(area.left, y, area.right, y)
		dc.Stroke()
		dc.SetColor(inkColor)
		dc.DrawStringAnchored(p.Sprintf("%.0f", v), area.left-6, y, 1, 0.5)
	}
	for _, v := range weightTicks {
		dc.SetColor(inkColor)
		dc.DrawStringAnchored(strconv.FormatFloat(v, 'f', -1, 64), area.right+6, weightY(v), 0, 0.5)
	}

	dc.SetColor(inkColor)
	dc.DrawLine(area.left, area.top, area.left, area.bottom)
	dc.DrawLine(area.right, area.top, area.right, area.bottom)
	dc.DrawLine(area.left, area.bottom, area.right, area.bottom)
	dc.Stroke()

	dc.Push()
	dc.RotateAbout(gg.Radians(-90), 20, (area.top+area.bottom)/2)
	dc.DrawStringAnchored("Capacity (kg·reps)", 20, (area.top+area.bottom)/2, 0.5, 0.5)
	dc.Pop()
	dc.Push()
	right := float64(dc.Width()) - 20
	dc.RotateAbout(gg.Radians(90), right, (area.top+area.bottom)/2)
	dc.DrawStringAnchored("Weight (kg)", right, (area.top+area.bottom)/2, 0.5, 0.5)
	dc.Pop()
}

func drawTickLabels(dc *gg.Context, area layout, xs []float64, labels []string, rotation float64) {
	dc.SetColor(inkColor)
	_, lineH := dc.MeasureString("0")
	for i, lbl := range labels {
		if lbl == "" {
			continue
		}
		x, y := xs[i], area.bottom+8
		dc.Push()
		dc.RotateAbout(gg.Radians(-rotation), x, y)
		for j, line := range strings.Split(lbl, "\n") {
			dc.DrawStringAnchored(line, x, y+float64(j)*(lineH+2), 1, 1)
		}
		dc.Pop()
	}
}

type legendEntry struct {
	label string
	color color.Color
	line  bool
}

func drawLegend(dc *gg.Context, area layout, outside bool) {
	entries := []legendEntry{
		{"Target Capacity", withAlpha(targetColor, 0.4), false},
		{"Actual Capacity", barColor, false},
		{"Best Set Weight", lineColor, true},
	}
	x, y := area.left+10, area.top+14
	if outside {
		y = area.top - 18
	}
	for _, e := range entries {
		dc.SetColor(e.color)
		if e.line {
			dc.SetLineWidth(2)
			dc.DrawLine(x, y, x+18, y)
			dc.Stroke()
		} else {
			dc.DrawRectangle(x, y-6, 18, 12)
			dc.Fill()
		}
		dc.SetColor(inkColor)
		dc.DrawStringAnchored(e.label, x+24, y, 0, 0.5)
		tw, _ := dc.MeasureString(e.label)
		x += 24 + tw + 20
	}
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(math.Round(alpha * 255))
	return c
}

func encode(dc *gg.Context, w io.Writer) error {
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}
	return nil
}
