// Package metrics derives per-record training metrics (capacity, pass/full
// set capacity, passing weight bounds, target capacity) from raw set columns.
//
// Every function here is a row-wise pure transformation: a record's metrics
// depend only on its own sets and on the Config.
package metrics

import (
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Compute validates cfg, then runs the capacity and weight-boundary passes
// over every record, overwriting Record.Metrics in place.
func Compute(t *models.Table, cfg Config) error {
	if err := check(t, cfg); err != nil {
		return err
	}
	for i := range t.Records {
		t.Records[i].Metrics = Derive(t.Records[i], cfg)
	}
	return nil
}

// ComputeParallel is Compute with rows split into contiguous batches across
// workers. Results are identical to Compute.
func ComputeParallel(t *models.Table, cfg Config, workers int) error {
	if err := check(t, cfg); err != nil {
		return err
	}
	n := len(t.Records)
	if workers <= 1 || n < 2*workers {
		for i := range t.Records {
			t.Records[i].Metrics = Derive(t.Records[i], cfg)
		}
		return nil
	}

	batch := (n + workers - 1) / workers
	var g errgroup.Group
	for lo := 0; lo < n; lo += batch {
		hi := min(lo+batch, n)
		rows := t.Records[lo:hi]
		g.Go(func() error {
			for i := range rows {
				rows[i].Metrics = Derive(rows[i], cfg)
			}
			return nil
		})
	}
	return g.Wait()
}

// UpdateCapacity runs only the capacity pass, leaving weight bounds untouched.
func UpdateCapacity(t *models.Table, cfg Config) error {
	if err := check(t, cfg); err != nil {
		return err
	}
	for i := range t.Records {
		c := capacity(t.Records[i], cfg)
		m := &t.Records[i].Metrics
		m.TotCapacity = c.TotCapacity
		m.PassSetCapacity = c.PassSetCapacity
		m.FullSetCapacity = c.FullSetCapacity
	}
	return nil
}

// UpdateWeightBoundaries runs only the weight-boundary pass (max/min passing
// weight and target capacity), leaving capacities untouched.
func UpdateWeightBoundaries(t *models.Table, cfg Config) error {
	if err := check(t, cfg); err != nil {
		return err
	}
	for i := range t.Records {
		b := boundaries(t.Records[i], cfg)
		m := &t.Records[i].Metrics
		m.MaxPassWeight = b.MaxPassWeight
		m.MinPassWeight = b.MinPassWeight
		m.TargetCapacity = b.TargetCapacity
		m.HasPassSet = b.HasPassSet
	}
	return nil
}

// Derive computes all metrics of a single record. It does not validate cfg.
func Derive(r models.Record, cfg Config) models.Metrics {
	c := capacity(r, cfg)
	b := boundaries(r, cfg)
	return models.Metrics{
		TotCapacity:     c.TotCapacity,
		PassSetCapacity: c.PassSetCapacity,
		FullSetCapacity: c.FullSetCapacity,
		MaxPassWeight:   b.MaxPassWeight,
		MinPassWeight:   b.MinPassWeight,
		TargetCapacity:  b.TargetCapacity,
		HasPassSet:      b.HasPassSet,
	}
}

func check(t *models.Table, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.StrictColumns {
		for _, i := range cfg.SetRange.Indices() {
			if !t.HasSetColumn(i) {
				return &MissingColumnError{SetIndex: i}
			}
		}
	}
	return nil
}

// capacity sums weight*reps over the set window; nulls count as 0.
func capacity(r models.Record, cfg Config) models.Metrics {
	var m models.Metrics
	pass, full := float64(cfg.PassReps), float64(cfg.FullReps)
	for i := cfg.SetRange.Lo; i <= cfg.SetRange.Hi; i++ {
		s := r.Set(i)
		w, reps := valueOr0(s.Weight), valueOr0(s.Reps)
		c := w * reps
		m.TotCapacity += c
		if reps >= pass {
			m.PassSetCapacity += c
		}
		if reps >= full {
			m.FullSetCapacity += c
		}
	}
	return m
}

// boundaries tracks max/min weight among pass sets. A null weight on a pass
// set leaves the bounds unchanged.
func boundaries(r models.Record, cfg Config) models.Metrics {
	m := models.Metrics{MinPassWeight: math.Inf(1)}
	pass := float64(cfg.PassReps)
	for i := cfg.SetRange.Lo; i <= cfg.SetRange.Hi; i++ {
		s := r.Set(i)
		if s.Reps == nil || *s.Reps < pass || s.Weight == nil {
			continue
		}
		w := *s.Weight
		m.MaxPassWeight = math.Max(m.MaxPassWeight, w)
		m.MinPassWeight = math.Min(m.MinPassWeight, w)
		m.HasPassSet = true
	}
	m.TargetCapacity = m.MaxPassWeight * float64(cfg.FullReps) * float64(cfg.SetRange.Width())
	return m
}

func valueOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
