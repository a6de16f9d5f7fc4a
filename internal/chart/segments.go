package chart

import (
	"sort"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

const (
	maxAlpha   = 1.0
	alphaRange = 0.6
	minAlpha   = maxAlpha - alphaRange
)

// segment is one slice of a stacked capacity bar.
type segment struct {
	Capacity float64
	Alpha    float64
}

// stackSegments splits a record's capacity by set weight. Sets at or above
// the best passing weight share the darkest segment; lighter weights fade
// linearly and bottom out at the minimum passing weight. Sets with a null
// weight or reps are not drawn. Segments are ordered darkest first.
func stackSegments(r models.Record, m models.Metrics, rng metrics.SetRange) []segment {
	best := m.MaxPassWeight
	span := 0.0
	if lo, ok := m.MinPass(); ok {
		span = best - lo
	}

	segs := []segment{{Alpha: maxAlpha}}
	byWeight := map[float64]int{}
	for _, i := range rng.Indices() {
		s := r.Set(i)
		if s.Weight == nil || s.Reps == nil {
			continue
		}
		w := *s.Weight
		c := w * *s.Reps
		if w >= best {
			segs[0].Capacity += c
			continue
		}
		j, ok := byWeight[w]
		if !ok {
			alpha := minAlpha
			if span > 0 {
				alpha = maxAlpha - alphaRange*min(best-w, span)/span
			}
			segs = append(segs, segment{Alpha: alpha})
			j = len(segs) - 1
			byWeight[w] = j
		}
		segs[j].Capacity += c
	}
	sort.SliceStable(segs, func(a, b int) bool { return segs[a].Alpha > segs[b].Alpha })
	return segs
}
