package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cabinz/gym-track-visualizer/internal/chart"
	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/metrics"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

func (s *Server) handleQueryRecords(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cfg, err := s.engineConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t, err := s.db.QueryRecords(r.Context(), f, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	records.SortByDate(t)
	if err := metrics.ComputeParallel(t, cfg, s.settings.Workers); err != nil {
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, recordsResponse{
		PassReps:   cfg.PassReps,
		FullReps:   cfg.FullReps,
		SetRange:   cfg.SetRange.String(),
		ActiveDays: records.ActiveDays(t),
		Table:      t,
	})
}

// recordsResponse is a models.Table annotated with the thresholds its metrics
// were computed under.
type recordsResponse struct {
	PassReps   int    `json:"pass_reps"`
	FullReps   int    `json:"full_reps"`
	SetRange   string `json:"set_range"`
	ActiveDays int    `json:"active_days"`
	*models.Table
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise name"})
		return
	}
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	f.Name = name
	cfg, err := s.engineConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	opts, err := s.chartOptions(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t, err := s.db.QueryRecords(r.Context(), f, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if t.Len() == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no records for " + name})
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, t, name, cfg, opts); err != nil {
		s.log.Error("render chart", "exercise", name, "error", err)
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	cfg, err := s.engineConfig(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	t, err := s.db.QueryRecords(r.Context(), f, userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	periods, err := records.Summarize(t, cfg, r.URL.Query().Get("bucket"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps caller mistakes to 400 and everything else to 500.
func errorStatus(err error) int {
	var (
		cfgErr   *metrics.ConfigurationError
		colErr   *metrics.MissingColumnError
		parseErr *ingest.ParseError
		sizeErr  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &cfgErr), errors.As(err, &colErr), errors.As(err, &parseErr):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseFilter reads start, end, gym and name. Dates are YYYY-MM-DD or
// RFC3339; gym may repeat or hold a comma-separated list.
func parseFilter(r *http.Request) (records.Filter, error) {
	q := r.URL.Query()
	var f records.Filter
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"start", &f.Start}, {"end", &f.End}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		t, err := parseDate(v)
		if err != nil {
			return records.Filter{}, fmt.Errorf("invalid %s: %w", p.key, err)
		}
		*p.dst = &t
	}
	for _, g := range q["gym"] {
		for _, part := range strings.Split(g, ",") {
			if part = strings.TrimSpace(part); part != "" {
				f.Gyms = append(f.Gyms, part)
			}
		}
	}
	f.Name = strings.TrimSpace(q.Get("name"))
	return f, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// engineConfig applies the pass, full, lo and hi query overrides to the
// configured thresholds and validates the result.
func (s *Server) engineConfig(r *http.Request) (metrics.Config, error) {
	q := r.URL.Query()
	var o metrics.Overrides
	for _, p := range []struct {
		key string
		dst **int
	}{{"pass", &o.PassReps}, {"full", &o.FullReps}, {"lo", &o.SetLo}, {"hi", &o.SetHi}} {
		v := q.Get(p.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return metrics.Config{}, fmt.Errorf("invalid %s: %q is not an integer", p.key, v)
		}
		*p.dst = &n
	}
	cfg := s.settings.Metrics.Apply(o)
	return cfg, cfg.Validate()
}

// chartOptions applies tick, order, skip_days, width and height overrides to
// the configured chart layout.
func (s *Server) chartOptions(r *http.Request) (chart.Options, error) {
	q := r.URL.Query()
	opts := s.settings.Chart
	if v := q.Get("tick"); v != "" {
		if _, err := chart.TickLabels(nil, v); err != nil {
			return opts, err
		}
		opts.TickMode = v
	}
	for _, p := range []struct {
		key string
		dst *bool
	}{{"order", &opts.ShowOrder}, {"skip_days", &opts.SkipDays}} {
		if v := q.Get(p.key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, fmt.Errorf("invalid %s: %q", p.key, v)
			}
			*p.dst = b
		}
	}
	for _, p := range []struct {
		key string
		dst *int
	}{{"width", &opts.Width}, {"height", &opts.Height}} {
		if v := q.Get(p.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 100 || n > 4000 {
				return opts, fmt.Errorf("invalid %s: %q (want 100..4000)", p.key, v)
			}
			*p.dst = n
		}
	}
	return opts, nil
}
