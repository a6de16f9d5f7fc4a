package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

// dateRange parses optional start/end bounds. Empty strings leave the bound
// open.
func dateRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if startStr != "" {
		t, err := parseFlexTime(startStr)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if endStr != "" {
		t, err := parseFlexTime(endStr)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var thresholdOptions = []mcp.ToolOption{
	mcp.WithNumber("pass_reps", mcp.Description("Reps needed for a set to pass. Defaults to the server setting.")),
	mcp.WithNumber("full_reps", mcp.Description("Reps needed for a full set. Defaults to the server setting.")),
	mcp.WithNumber("set_lo", mcp.Description("First set index considered. Defaults to the server setting.")),
	mcp.WithNumber("set_hi", mcp.Description("Last set index considered. Defaults to the server setting.")),
}

var toolGetExerciseMetrics = mcp.NewTool("get_exercise_metrics",
	append([]mcp.ToolOption{
		mcp.WithDescription("Per-session metrics for one exercise: total, passing-set and full-set capacity (kg x reps), best and lightest passing weight, and target capacity."),
		mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive exact match, e.g. 'bench press')")),
		mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to the first record.")),
		mcp.WithString("end", mcp.Description("End date. Defaults to the last record.")),
		mcp.WithString("gym", mcp.Description("Only records from this gym")),
	}, thresholdOptions...)...,
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List every recorded exercise with its record count and first/last training date."),
)

var toolGetTrainingSummary = mcp.NewTool("get_training_summary",
	append([]mcp.ToolOption{
		mcp.WithDescription("Weekly or monthly totals: records, active days, exercises, capacities and the best passing weight of each exercise per period, newest first."),
		mcp.WithString("start", mcp.Description("Start date. Defaults to 6 months ago.")),
		mcp.WithString("end", mcp.Description("End date. Defaults to now.")),
		mcp.WithString("bucket", mcp.Description("Aggregation period. Defaults to month."), mcp.Enum(records.BucketWeek, records.BucketMonth)),
	}, thresholdOptions...)...,
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Counts of stored records, sets, exercises and active days, with the covered date span."),
)

// --- Tool handlers ---

// engineConfig applies threshold arguments to the server configuration.
func (h *handlers) engineConfig(req mcp.CallToolRequest) (metrics.Config, error) {
	var o metrics.Overrides
	args := req.GetArguments()
	for key, dst := range map[string]**int{
		"pass_reps": &o.PassReps,
		"full_reps": &o.FullReps,
		"set_lo":    &o.SetLo,
		"set_hi":    &o.SetHi,
	} {
		if _, ok := args[key]; ok {
			v := req.GetInt(key, 0)
			*dst = &v
		}
	}
	cfg := h.cfg.Apply(o)
	return cfg, cfg.Validate()
}

type exerciseSession struct {
	Date    string         `json:"date"`
	Gym     string         `json:"gym,omitempty"`
	Order   *int           `json:"order,omitempty"`
	Sets    int            `json:"sets"`
	Metrics models.Metrics `json:"metrics"`
}

// setsInRange counts the sets within rng that hold a weight or reps value.
func setsInRange(r models.Record, rng metrics.SetRange) int {
	n := 0
	for _, i := range rng.Indices() {
		if s := r.Set(i); s.Weight != nil || s.Reps != nil {
			n++
		}
	}
	return n
}

func (h *handlers) getExerciseMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	cfg, err := h.engineConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	f := records.Filter{Start: start, End: end, Name: exercise}
	if gym := req.GetString("gym", ""); gym != "" {
		f.Gyms = []string{gym}
	}
	uid := UserIDFromContext(ctx)
	t, err := h.ds.QueryRecords(ctx, f, uid)
	if err != nil {
		h.log.Error("mcp get_exercise_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	records.SortByDate(t)
	if err := metrics.Compute(t, cfg); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions := make([]exerciseSession, 0, t.Len())
	for _, r := range t.Records {
		sessions = append(sessions, exerciseSession{
			Date:    r.Day().Format("2006-01-02"),
			Gym:     r.Gym,
			Order:   r.Order,
			Sets:    setsInRange(r, cfg.SetRange),
			Metrics: r.Metrics,
		})
	}
	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise":    exercise,
		"pass_reps":   cfg.PassReps,
		"full_reps":   cfg.FullReps,
		"set_range":   cfg.SetRange.String(),
		"active_days": records.ActiveDays(t),
		"sessions":    sessions,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := dateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	if start == nil {
		s := time.Now().AddDate(0, -6, 0)
		start = &s
	}
	cfg, err := h.engineConfig(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	t, err := h.ds.QueryRecords(ctx, records.Filter{Start: start, End: end}, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_training_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	periods, err := records.Summarize(t, cfg, req.GetString("bucket", records.BucketMonth))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(periods)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetDataStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
