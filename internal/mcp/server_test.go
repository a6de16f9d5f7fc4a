package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDateRange verifies open bounds and both accepted layouts.
func TestDateRange(t *testing.T) {
	start, end, err := dateRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != nil || end != nil {
		t.Errorf("empty input: got %v..%v, want open range", start, end)
	}

	start, end, err = dateRange("2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Day() != 1 || end.Day() != 31 {
		t.Errorf("range = %v..%v", start, end)
	}

	start, _, err = dateRange("2024-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	if _, _, err = dateRange("not-a-date", ""); err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeSource serves a fixed table and records the filter it was asked for.
type fakeSource struct {
	table  *models.Table
	filter records.Filter
	err    error
}

func (f *fakeSource) QueryRecords(_ context.Context, flt records.Filter, _ int) (*models.Table, error) {
	f.filter = flt
	if f.err != nil {
		return nil, f.err
	}
	return records.Select(f.table, flt), nil
}

func (f *fakeSource) ListExercises(context.Context, int) ([]storage.ExerciseStat, error) {
	return []storage.ExerciseStat{{Name: "bench press", Records: 2}}, f.err
}

func (f *fakeSource) GetDataStats(context.Context, int) (*storage.DataStats, error) {
	return &storage.DataStats{TotalRecords: int64(f.table.Len())}, f.err
}

func benchTable() *models.Table {
	set := func(w, r float64) models.SetEntry {
		return models.SetEntry{Weight: models.Float(w), Reps: models.Float(r)}
	}
	return &models.Table{SetColumns: []int{1, 2, 3, 4}, Records: []models.Record{
		{Date: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), Name: "bench press", Gym: "city",
			Sets: map[int]models.SetEntry{1: set(40, 12), 2: set(42.5, 9)}},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Name: "bench press", Gym: "campus",
			Sets: map[int]models.SetEntry{1: set(40, 10)}},
		{Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Name: "leg press",
			Sets: map[int]models.SetEntry{1: set(80, 12)}},
	}}
}

func newTestHandlers(ds DataSource) *handlers {
	return &handlers{ds: ds, cfg: metrics.DefaultConfig(), log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T, want TextContent", res.Content[0])
	}
	return tc.Text
}

// TestGetExerciseMetrics verifies sessions come back date-ordered with
// metrics computed under the requested thresholds.
func TestGetExerciseMetrics(t *testing.T) {
	ds := &fakeSource{table: benchTable()}
	h := newTestHandlers(ds)

	res, err := h.getExerciseMetrics(context.Background(), callRequest(map[string]any{
		"exercise":  "Bench Press",
		"pass_reps": 10,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	var out struct {
		PassReps   int `json:"pass_reps"`
		ActiveDays int `json:"active_days"`
		Sessions   []struct {
			Date    string         `json:"date"`
			Metrics models.Metrics `json:"metrics"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if out.PassReps != 10 || out.ActiveDays != 2 {
		t.Errorf("pass_reps=%d active_days=%d, want 10/2", out.PassReps, out.ActiveDays)
	}
	if len(out.Sessions) != 2 || out.Sessions[0].Date != "2024-03-01" {
		t.Fatalf("sessions = %+v", out.Sessions)
	}
	// 42.5x9 fails pass_reps=10; only 40x12 passes.
	if got := out.Sessions[1].Metrics.MaxPassWeight; got != 40 {
		t.Errorf("max_pass_weight = %v, want 40", got)
	}
	if got := out.Sessions[1].Metrics.TotCapacity; got != 40*12+42.5*9 {
		t.Errorf("tot_capacity = %v", got)
	}
}

// TestGetExerciseMetricsSetCount verifies the set count covers only sets
// inside the configured range that hold data.
func TestGetExerciseMetricsSetCount(t *testing.T) {
	tb := &models.Table{SetColumns: []int{0, 1, 2, 3, 5}, Records: []models.Record{{
		Date: time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC),
		Name: "row",
		Sets: map[int]models.SetEntry{
			0: {Weight: models.Float(20), Reps: models.Float(15)},
			1: {Weight: models.Float(40), Reps: models.Float(12)},
			2: {},
			3: {Weight: models.Float(40)},
			5: {Weight: models.Float(50), Reps: models.Float(8)},
		},
	}}}
	h := newTestHandlers(&fakeSource{table: tb})

	res, err := h.getExerciseMetrics(context.Background(), callRequest(map[string]any{"exercise": "row"}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var out struct {
		Sessions []struct {
			Sets int `json:"sets"`
		} `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Sessions) != 1 || out.Sessions[0].Sets != 2 {
		t.Errorf("sessions = %+v, want one session with 2 sets", out.Sessions)
	}
}

// TestGetExerciseMetricsGymFilter verifies the gym argument reaches the source.
func TestGetExerciseMetricsGymFilter(t *testing.T) {
	ds := &fakeSource{table: benchTable()}
	h := newTestHandlers(ds)

	res, err := h.getExerciseMetrics(context.Background(), callRequest(map[string]any{
		"exercise": "bench press",
		"gym":      "city",
		"start":    "2024-03-01",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if len(ds.filter.Gyms) != 1 || ds.filter.Gyms[0] != "city" || ds.filter.Start == nil {
		t.Errorf("filter = %+v", ds.filter)
	}
}

// TestGetExerciseMetricsErrors verifies argument problems become tool errors.
func TestGetExerciseMetricsErrors(t *testing.T) {
	cases := []struct {
		name string
		args map[string]any
	}{
		{"missing exercise", map[string]any{}},
		{"bad date", map[string]any{"exercise": "bench press", "start": "yesterday"}},
		{"full below pass", map[string]any{"exercise": "bench press", "full_reps": 5}},
		{"empty set range", map[string]any{"exercise": "bench press", "set_lo": 3, "set_hi": 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandlers(&fakeSource{table: benchTable()})
			res, err := h.getExerciseMetrics(context.Background(), callRequest(tc.args))
			if err != nil {
				t.Fatal(err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

// TestSourceErrorsBecomeToolErrors verifies data layer failures are reported
// to the client rather than returned as protocol errors.
func TestSourceErrorsBecomeToolErrors(t *testing.T) {
	h := newTestHandlers(&fakeSource{table: benchTable(), err: errors.New("db down")})
	res, err := h.listExercises(context.Background(), callRequest(nil))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected tool error")
	}
}

// TestGetTrainingSummary verifies the bucket argument and default start.
func TestGetTrainingSummary(t *testing.T) {
	ds := &fakeSource{table: benchTable()}
	h := newTestHandlers(ds)

	res, err := h.getTrainingSummary(context.Background(), callRequest(map[string]any{
		"start":  "2024-01-01",
		"bucket": "week",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	var periods []records.PeriodSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &periods); err != nil {
		t.Fatal(err)
	}
	if len(periods) != 2 || periods[0].Period != "2024-03-04" {
		t.Errorf("periods = %+v", periods)
	}

	if _, err := h.getTrainingSummary(context.Background(), callRequest(nil)); err != nil {
		t.Fatal(err)
	}
	if ds.filter.Start == nil || time.Since(*ds.filter.Start) < 150*24*time.Hour {
		t.Errorf("default start = %v, want about 6 months ago", ds.filter.Start)
	}
}

// TestNewRegistersTools verifies the server builds with every tool attached.
func TestNewRegistersTools(t *testing.T) {
	s := New(&fakeSource{table: benchTable()}, metrics.DefaultConfig(), "test", slog.New(slog.NewTextHandler(io.Discard, nil)))
	tools := s.ListTools()
	for _, name := range []string{"get_exercise_metrics", "list_exercises", "get_training_summary", "get_data_stats"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("tool %s not registered", name)
		}
	}
}
