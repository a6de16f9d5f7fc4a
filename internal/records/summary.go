package records

import (
	"fmt"
	"sort"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Summary buckets.
const (
	BucketWeek  = "week"
	BucketMonth = "month"
)

// PeriodSummary aggregates engine output over one week or month. Capacities
// are summed across exercises; pass weights are kept per exercise.
type PeriodSummary struct {
	Period          string  `json:"period"`
	Records         int     `json:"records"`
	ActiveDays      int     `json:"active_days"`
	Exercises       int     `json:"exercises"`
	TotCapacity     float64 `json:"tot_capacity"`
	PassSetCapacity float64 `json:"pass_set_capacity"`
	FullSetCapacity float64 `json:"full_set_capacity"`
	TargetCapacity  float64 `json:"target_capacity"`
	// BestPassWeights maps each exercise with a pass set in the period to
	// its heaviest passing weight.
	BestPassWeights map[string]float64 `json:"best_pass_weights"`
}

// Summarize computes metrics on a copy of t and aggregates them per period,
// newest period first.
func Summarize(t *models.Table, cfg metrics.Config, bucket string) ([]PeriodSummary, error) {
	if bucket == "" {
		bucket = BucketMonth
	}
	if bucket != BucketWeek && bucket != BucketMonth {
		return nil, fmt.Errorf("unknown bucket %q (want week or month)", bucket)
	}

	work := t.Clone()
	if err := metrics.Compute(work, cfg); err != nil {
		return nil, err
	}

	type acc struct {
		sum       PeriodSummary
		days      map[time.Time]bool
		exercises map[string]bool
	}
	periods := map[time.Time]*acc{}
	for _, r := range work.Records {
		key := periodStart(r.Day(), bucket)
		a, ok := periods[key]
		if !ok {
			a = &acc{
				sum: PeriodSummary{
					Period:          key.Format("2006-01-02"),
					BestPassWeights: map[string]float64{},
				},
				days:      map[time.Time]bool{},
				exercises: map[string]bool{},
			}
			periods[key] = a
		}
		m := r.Metrics
		a.sum.Records++
		a.sum.TotCapacity += m.TotCapacity
		a.sum.PassSetCapacity += m.PassSetCapacity
		a.sum.FullSetCapacity += m.FullSetCapacity
		a.sum.TargetCapacity += m.TargetCapacity
		if m.HasPassSet && m.MaxPassWeight > a.sum.BestPassWeights[r.Name] {
			a.sum.BestPassWeights[r.Name] = m.MaxPassWeight
		}
		a.days[r.Day()] = true
		a.exercises[r.Name] = true
	}

	keys := make([]time.Time, 0, len(periods))
	for k := range periods {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].After(keys[j]) })

	out := make([]PeriodSummary, 0, len(keys))
	for _, k := range keys {
		a := periods[k]
		a.sum.ActiveDays = len(a.days)
		a.sum.Exercises = len(a.exercises)
		out = append(out, a.sum)
	}
	return out, nil
}

// periodStart returns the Monday of the week or the first of the month.
func periodStart(day time.Time, bucket string) time.Time {
	if bucket == BucketWeek {
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}
