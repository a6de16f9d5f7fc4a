package records

import (
	"testing"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(date, name, gym string, w, r float64) models.Record {
	return models.Record{
		Date: day(date),
		Name: name,
		Gym:  gym,
		Sets: map[int]models.SetEntry{1: {Weight: models.Float(w), Reps: models.Float(r)}},
	}
}

func sample() *models.Table {
	return &models.Table{SetColumns: []int{1, 2, 3, 4}, Records: []models.Record{
		rec("2023-11-22", "bench press", "city", 40, 10),
		rec("2023-11-18", "bench press", "campus", 37.5, 12),
		rec("2023-11-22", "pectoral fold", "city", 20, 13),
		rec("2023-12-02", "bench press", "city", 42.5, 8),
		rec("2024-01-05", "leg press", "campus", 80, 12),
	}}
}

// TestSelectDateRangeInclusive verifies both bounds are inclusive by date,
// ignoring any time of day on the bound.
func TestSelectDateRangeInclusive(t *testing.T) {
	start := day("2023-11-22").Add(15 * time.Hour)
	end := day("2023-12-02")
	got := Select(sample(), Filter{Start: &start, End: &end})
	if got.Len() != 3 {
		t.Fatalf("records = %d, want 3", got.Len())
	}
}

// TestSelectGymsAndName verifies gym and exercise filters combine.
func TestSelectGymsAndName(t *testing.T) {
	got := Select(sample(), Filter{Gyms: []string{"city"}, Name: "Bench Press"})
	if got.Len() != 2 {
		t.Fatalf("records = %d, want 2", got.Len())
	}
	for _, r := range got.Records {
		if r.Gym != "city" || r.Name != "bench press" {
			t.Errorf("unexpected record %s @ %s", r.Name, r.Gym)
		}
	}
}

// TestSelectCopies verifies the selection does not alias the source sets.
func TestSelectCopies(t *testing.T) {
	src := sample()
	got := Select(src, Filter{})
	got.Records[0].Sets[1] = models.SetEntry{}
	if src.Records[0].Sets[1].Weight == nil {
		t.Error("mutating the selection changed the source table")
	}
}

// TestSortByDate verifies date then session order ordering.
func TestSortByDate(t *testing.T) {
	tb := sample()
	one, two := 1, 2
	tb.Records[0].Order = &two
	tb.Records[2].Order = &one
	SortByDate(tb)
	want := []string{"bench press", "pectoral fold", "bench press", "bench press", "leg press"}
	for i, r := range tb.Records {
		if r.Name != want[i] {
			t.Errorf("record %d = %s, want %s", i, r.Name, want[i])
		}
	}
	if !tb.Records[0].Day().Equal(day("2023-11-18")) {
		t.Errorf("first date = %v, want 2023-11-18", tb.Records[0].Date)
	}
	if tb.Records[1].Name != "pectoral fold" {
		t.Errorf("second = %s, want pectoral fold (order 1)", tb.Records[1].Name)
	}
}

// TestActiveDaysAndExercises verifies distinct date and name counting.
func TestActiveDaysAndExercises(t *testing.T) {
	tb := sample()
	if got := ActiveDays(tb); got != 4 {
		t.Errorf("ActiveDays = %d, want 4", got)
	}
	names := Exercises(tb)
	want := []string{"bench press", "leg press", "pectoral fold"}
	if len(names) != len(want) {
		t.Fatalf("Exercises = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Exercises[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	groups := ByExercise(tb)
	if groups["bench press"].Len() != 3 {
		t.Errorf("bench press records = %d, want 3", groups["bench press"].Len())
	}
}

// TestDateBounds verifies min/max date and the empty case.
func TestDateBounds(t *testing.T) {
	first, last, ok := DateBounds(sample())
	if !ok {
		t.Fatal("ok = false")
	}
	if !first.Equal(day("2023-11-18")) || !last.Equal(day("2024-01-05")) {
		t.Errorf("bounds = %v..%v", first, last)
	}
	if _, _, ok := DateBounds(&models.Table{}); ok {
		t.Error("empty table: ok = true")
	}
}

// TestSummarizeMonth verifies monthly aggregation of engine output.
func TestSummarizeMonth(t *testing.T) {
	got, err := Summarize(sample(), metrics.DefaultConfig(), BucketMonth)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("periods = %d, want 3", len(got))
	}
	nov := got[2]
	if nov.Period != "2023-11-01" {
		t.Errorf("period = %s, want 2023-11-01", nov.Period)
	}
	if nov.Records != 3 || nov.ActiveDays != 2 || nov.Exercises != 2 {
		t.Errorf("nov counts = %d/%d/%d, want 3/2/2", nov.Records, nov.ActiveDays, nov.Exercises)
	}
	// 40*10 + 37.5*12 + 20*13
	if nov.TotCapacity != 1110 {
		t.Errorf("tot_capacity = %v, want 1110", nov.TotCapacity)
	}
	if got := nov.BestPassWeights["bench press"]; got != 40 {
		t.Errorf("best bench press = %v, want 40", got)
	}
	if got := nov.BestPassWeights["pectoral fold"]; got != 20 {
		t.Errorf("best pectoral fold = %v, want 20", got)
	}
}

// TestSummarizeBestWeightPerExercise verifies pass weights of different
// exercises on one day are not merged, and exercises without a pass set are
// left out.
func TestSummarizeBestWeightPerExercise(t *testing.T) {
	tb := &models.Table{SetColumns: []int{1}, Records: []models.Record{
		rec("2023-11-22", "curl", "city", 10, 12),
		rec("2023-11-22", "leg press", "city", 150, 10),
		rec("2023-11-22", "leg press", "city", 170, 9),
		rec("2023-11-22", "deadlift", "city", 200, 3),
	}}
	got, err := Summarize(tb, metrics.DefaultConfig(), BucketMonth)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("periods = %d, want 1", len(got))
	}
	best := got[0].BestPassWeights
	if len(best) != 2 {
		t.Fatalf("best pass weights = %v, want curl and leg press only", best)
	}
	if best["curl"] != 10 {
		t.Errorf("curl = %v, want 10", best["curl"])
	}
	if best["leg press"] != 170 {
		t.Errorf("leg press = %v, want 170", best["leg press"])
	}
}

// TestSummarizeWeekStartsMonday verifies weekly buckets key on Monday.
func TestSummarizeWeekStartsMonday(t *testing.T) {
	got, err := Summarize(sample(), metrics.DefaultConfig(), BucketWeek)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	last := got[len(got)-1]
	// 2023-11-18 is a Saturday.
	if last.Period != "2023-11-13" {
		t.Errorf("period = %s, want 2023-11-13", last.Period)
	}
}

// TestSummarizeRejectsBadInput verifies bucket and config errors surface.
func TestSummarizeRejectsBadInput(t *testing.T) {
	if _, err := Summarize(sample(), metrics.DefaultConfig(), "year"); err == nil {
		t.Error("expected error for unknown bucket")
	}
	bad := metrics.Config{PassReps: 12, FullReps: 8, SetRange: metrics.SetRange{Lo: 1, Hi: 4}}
	if _, err := Summarize(sample(), bad, BucketMonth); err == nil {
		t.Error("expected configuration error")
	}
}
