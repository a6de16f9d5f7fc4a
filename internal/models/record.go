package models

import (
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Record sources.
const (
	SourceWorkbook = "workbook"
	SourceAlpha    = "alpha"
)

// SetEntry is one weight/reps pair. A nil pointer is a null cell.
type SetEntry struct {
	Weight *float64 `json:"weight"`
	Reps   *float64 `json:"reps"`
}

// Record is one exercise performed on one date.
type Record struct {
	ID     uuid.UUID        `json:"id"`
	Date   time.Time        `json:"date"`
	Name   string           `json:"name"`
	Gym    string           `json:"gym,omitempty"`
	Order  *int             `json:"order,omitempty"`
	Source string           `json:"source,omitempty"`
	Sets   map[int]SetEntry `json:"sets"`

	// Metrics holds the derived columns. They are overwritten on every engine run.
	Metrics Metrics `json:"metrics"`
}

// Set returns the entry for set index i; missing indices yield an all-null entry.
func (r Record) Set(i int) SetEntry {
	return r.Sets[i]
}

// Day returns the record date truncated to midnight UTC.
func (r Record) Day() time.Time {
	return DateOnly(r.Date)
}

// Table is a collection of records plus the set indices that have backing
// weight_i/reps_i columns in the source.
type Table struct {
	SetColumns []int    `json:"set_columns"`
	Records    []Record `json:"records"`
}

// HasSetColumn reports whether set index i has backing columns.
func (t *Table) HasSetColumn(i int) bool {
	for _, c := range t.SetColumns {
		if c == i {
			return true
		}
	}
	return false
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Clone returns a deep copy so callers can annotate or reorder without
// touching the original.
func (t *Table) Clone() *Table {
	out := &Table{
		SetColumns: append([]int(nil), t.SetColumns...),
		Records:    make([]Record, len(t.Records)),
	}
	for i, r := range t.Records {
		cp := r
		if r.Order != nil {
			o := *r.Order
			cp.Order = &o
		}
		cp.Sets = make(map[int]SetEntry, len(r.Sets))
		for k, v := range r.Sets {
			cp.Sets[k] = v
		}
		out.Records[i] = cp
	}
	return out
}

// SetColumnsOf returns the sorted union of set indices present in the records.
func SetColumnsOf(records []Record) []int {
	seen := map[int]bool{}
	var cols []int
	for _, r := range records {
		for i := range r.Sets {
			if !seen[i] {
				seen[i] = true
				cols = append(cols, i)
			}
		}
	}
	sort.Ints(cols)
	return cols
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Float returns a pointer to v, for building SetEntry values.
func Float(v float64) *float64 {
	return &v
}

// Metrics are the per-record values derived by the metric engine.
//
// MinPassWeight is +Inf when no set qualified; check HasPassSet (or MinPass)
// before using it as a bound.
type Metrics struct {
	TotCapacity     float64
	PassSetCapacity float64
	FullSetCapacity float64
	MaxPassWeight   float64
	MinPassWeight   float64
	TargetCapacity  float64
	HasPassSet      bool
}

// MinPass returns the minimum passing weight and whether one exists.
func (m Metrics) MinPass() (float64, bool) {
	if !m.HasPassSet || math.IsInf(m.MinPassWeight, 1) {
		return 0, false
	}
	return m.MinPassWeight, true
}

type metricsJSON struct {
	TotCapacity     float64  `json:"tot_capacity"`
	PassSetCapacity float64  `json:"pass_set_capacity"`
	FullSetCapacity float64  `json:"full_set_capacity"`
	MaxPassWeight   float64  `json:"max_pass_weight"`
	MinPassWeight   *float64 `json:"min_pass_weight"`
	TargetCapacity  float64  `json:"target_capacity"`
	HasPassSet      bool     `json:"has_pass_set"`
}

// MarshalJSON encodes the +Inf sentinel as null; JSON has no infinities.
func (m Metrics) MarshalJSON() ([]byte, error) {
	out := metricsJSON{
		TotCapacity:     m.TotCapacity,
		PassSetCapacity: m.PassSetCapacity,
		FullSetCapacity: m.FullSetCapacity,
		MaxPassWeight:   m.MaxPassWeight,
		TargetCapacity:  m.TargetCapacity,
		HasPassSet:      m.HasPassSet,
	}
	if v, ok := m.MinPass(); ok {
		out.MinPassWeight = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the +Inf sentinel from a null min_pass_weight.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var in metricsJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*m = Metrics{
		TotCapacity:     in.TotCapacity,
		PassSetCapacity: in.PassSetCapacity,
		FullSetCapacity: in.FullSetCapacity,
		MaxPassWeight:   in.MaxPassWeight,
		MinPassWeight:   math.Inf(1),
		TargetCapacity:  in.TargetCapacity,
		HasPassSet:      in.HasPassSet,
	}
	if in.MinPassWeight != nil {
		m.MinPassWeight = *in.MinPassWeight
	}
	return nil
}
