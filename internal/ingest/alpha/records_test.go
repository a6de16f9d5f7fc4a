package alpha

import (
	"strings"
	"testing"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

// TestRecordsDropWarmups verifies one record per exercise with working sets
// renumbered from 1.
func TestRecordsDropWarmups(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tb := Records(sessions)
	if tb.Len() != 7 {
		t.Fatalf("records = %d, want 7", tb.Len())
	}
	hack := tb.Records[0]
	if hack.Name != "Hack Squats" || hack.Source != models.SourceAlpha {
		t.Errorf("record 0 = %q from %q", hack.Name, hack.Source)
	}
	if hack.Order == nil || *hack.Order != 1 {
		t.Errorf("order = %v, want 1", hack.Order)
	}
	if got := hack.Day().Format("2006-01-02"); got != "2026-02-19" {
		t.Errorf("date = %s", got)
	}
	if len(hack.Sets) != 3 {
		t.Fatalf("sets = %d, want 3", len(hack.Sets))
	}
	if w := *hack.Set(1).Weight; w != 115 {
		t.Errorf("set 1 weight = %v, want 115 (warmups skipped)", w)
	}
	want := []int{1, 2, 3}
	if len(tb.SetColumns) != len(want) {
		t.Fatalf("set columns = %v, want %v", tb.SetColumns, want)
	}
}

// TestRecordsFeedEngine verifies converted records compute like workbook rows.
func TestRecordsFeedEngine(t *testing.T) {
	sessions, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tb := Records(sessions)
	if err := metrics.Compute(tb, metrics.DefaultConfig()); err != nil {
		t.Fatalf("Compute: %v", err)
	}
	hack := tb.Records[0].Metrics
	if hack.TotCapacity != 115*28 {
		t.Errorf("tot_capacity = %v, want %v", hack.TotCapacity, 115*28)
	}
	if hack.MaxPassWeight != 115 || hack.TargetCapacity != 115*12*4 {
		t.Errorf("max/target = %v/%v", hack.MaxPassWeight, hack.TargetCapacity)
	}
	bench := tb.Records[6].Metrics
	if bench.HasPassSet {
		t.Error("6-rep sets should not pass at 8 reps")
	}
}
