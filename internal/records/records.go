// Package records selects, groups and summarizes workout record tables.
package records

import (
	"sort"
	"strings"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// Filter narrows a table. Zero values mean "no constraint"; Start and End are
// inclusive and compared by date only.
type Filter struct {
	Start *time.Time
	End   *time.Time
	Gyms  []string
	Name  string
}

// Select returns the records matching f. The result shares no record storage
// with t. Records are not reordered.
func Select(t *models.Table, f Filter) *models.Table {
	out := &models.Table{SetColumns: append([]int(nil), t.SetColumns...)}
	var start, end time.Time
	if f.Start != nil {
		start = models.DateOnly(*f.Start)
	}
	if f.End != nil {
		end = models.DateOnly(*f.End)
	}
	gyms := make(map[string]bool, len(f.Gyms))
	for _, g := range f.Gyms {
		gyms[g] = true
	}
	name := strings.TrimSpace(f.Name)

	var kept []models.Record
	for _, r := range t.Records {
		day := r.Day()
		if f.Start != nil && day.Before(start) {
			continue
		}
		if f.End != nil && day.After(end) {
			continue
		}
		if len(gyms) > 0 && !gyms[r.Gym] {
			continue
		}
		if name != "" && !strings.EqualFold(r.Name, name) {
			continue
		}
		kept = append(kept, r)
	}
	out.Records = (&models.Table{Records: kept}).Clone().Records
	return out
}

// DateBounds returns the earliest and latest record dates. ok is false for an
// empty table.
func DateBounds(t *models.Table) (first, last time.Time, ok bool) {
	for i, r := range t.Records {
		d := r.Day()
		if i == 0 || d.Before(first) {
			first = d
		}
		if i == 0 || d.After(last) {
			last = d
		}
	}
	return first, last, len(t.Records) > 0
}

// SortByDate orders records by date, then by session order, then name.
func SortByDate(t *models.Table) {
	sort.SliceStable(t.Records, func(i, j int) bool {
		a, b := t.Records[i], t.Records[j]
		if !a.Day().Equal(b.Day()) {
			return a.Day().Before(b.Day())
		}
		ao, bo := orderOf(a), orderOf(b)
		if ao != bo {
			return ao < bo
		}
		return a.Name < b.Name
	})
}

func orderOf(r models.Record) int {
	if r.Order == nil {
		return int(^uint(0) >> 1)
	}
	return *r.Order
}

// Exercises returns the distinct exercise names, sorted.
func Exercises(t *models.Table) []string {
	seen := map[string]bool{}
	var names []string
	for _, r := range t.Records {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	sort.Strings(names)
	return names
}

// ByExercise splits t into one table per exercise name.
func ByExercise(t *models.Table) map[string]*models.Table {
	out := map[string]*models.Table{}
	for _, r := range t.Records {
		sub, ok := out[r.Name]
		if !ok {
			sub = &models.Table{SetColumns: append([]int(nil), t.SetColumns...)}
			out[r.Name] = sub
		}
		sub.Records = append(sub.Records, r)
	}
	for name, sub := range out {
		out[name] = sub.Clone()
	}
	return out
}

// ActiveDays counts distinct workout dates.
func ActiveDays(t *models.Table) int {
	days := map[time.Time]bool{}
	for _, r := range t.Records {
		days[r.Day()] = true
	}
	return len(days)
}
