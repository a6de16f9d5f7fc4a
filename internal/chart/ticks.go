package chart

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Tick label modes.
const (
	TickDay       = "d"
	TickDaySparse = "dsparse"
	TickMonth     = "mo"
	TickYear      = "yr"
	TickMonthYear = "moyr"
)

// maxSparseTicks bounds the labels shown in TickDaySparse mode.
const maxSparseTicks = 10

// TickLabels returns one x label per date (ascending). Empty strings mean no
// label at that position.
func TickLabels(dates []time.Time, mode string) ([]string, error) {
	out := make([]string, len(dates))
	switch mode {
	case TickDay:
		for i, d := range dates {
			out[i] = d.Format("2006-01-02")
		}
	case TickDaySparse:
		if len(dates) < maxSparseTicks {
			return TickLabels(dates, TickDay)
		}
		// First and last are always labeled; in between every interval-th
		// date unless it would crowd the last label.
		interval := int(math.Ceil(float64(len(dates)) / maxSparseTicks))
		half := interval / 2
		for i, d := range dates {
			if i == 0 || i == len(dates)-1 || (i%interval == 0 && i+half < len(dates)) {
				out[i] = d.Format("2006-01-02")
			}
		}
	case TickYear:
		prev := -1
		for i, d := range dates {
			if d.Year() != prev {
				prev = d.Year()
				out[i] = d.Format("2006")
			}
		}
	case TickMonth:
		prev := time.Month(0)
		for i, d := range dates {
			if d.Month() != prev {
				prev = d.Month()
				out[i] = d.Format("Jan")
			}
		}
	case TickMonthYear:
		prevMonth, prevYear := time.Month(0), -1
		for i, d := range dates {
			var lbl string
			if d.Month() != prevMonth || d.Year() != prevYear {
				prevMonth = d.Month()
				lbl = d.Format("Jan")
			}
			if d.Year() != prevYear {
				prevYear = d.Year()
				lbl += "\n" + d.Format("2006")
			}
			out[i] = lbl
		}
	default:
		return nil, fmt.Errorf("unknown tick mode %q", mode)
	}
	return out, nil
}

// Ordinal renders 1 as "1st", 12 as "12th", 22 as "22nd".
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// niceTicks returns evenly spaced axis values from 0 covering max, using a
// 1/2/5 step.
func niceTicks(max float64, target int) []float64 {
	if max <= 0 || math.IsInf(max, 0) || math.IsNaN(max) {
		return []float64{0, 1}
	}
	raw := max / float64(target)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := 10 * mag
	for _, m := range []float64{1, 2, 5} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var ticks []float64
	for v := 0.0; v < max+step; v += step {
		ticks = append(ticks, v)
		if v >= max {
			break
		}
	}
	return ticks
}
