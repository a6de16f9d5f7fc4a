package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cabinz/gym-track-visualizer/internal/ingest"
	"github.com/cabinz/gym-track-visualizer/internal/ingest/workbook"
	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/storage"
)

// maxUploadBytes caps ingest request bodies.
const maxUploadBytes = 32 << 20

func (s *Server) handleRecordsIngest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filename := q.Get("filename")
	format := q.Get("format")
	if format == "" && filename != "" {
		f, err := workbook.FormatFromPath(filename)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		format = f
	}
	if format == "" {
		format = workbook.FormatXLSX
	}
	var opts workbook.Options
	if v := q.Get("sheets"); v != "" {
		opts.Sheets = strings.Split(v, ",")
	}

	uid := userIDFromContext(r)
	meta := map[string]any{"format": format}
	if len(opts.Sheets) > 0 {
		meta["sheets"] = opts.Sheets
	}
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	s.runImport(w, r, models.SourceWorkbook, filename, meta, func(ctx context.Context) (*ingest.Result, error) {
		return s.workbook.Ingest(ctx, body, format, opts, uid)
	})
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	body := http.MaxBytesReader(w, r.Body, maxUploadBytes)
	s.runImport(w, r, models.SourceAlpha, r.URL.Query().Get("filename"), nil, func(ctx context.Context) (*ingest.Result, error) {
		return s.alpha.Ingest(ctx, body, uid)
	})
}

// runImport wraps one ingest call in an import log entry: running before,
// success or error after.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, source, filename string, meta map[string]any,
	fn func(context.Context) (*ingest.Result, error)) {
	uid := userIDFromContext(r)
	entry := storage.ImportLog{
		UserID:   uid,
		Source:   source,
		Filename: filename,
		Status:   storage.ImportRunning,
	}
	if meta != nil {
		if raw, err := json.Marshal(meta); err == nil {
			msg := json.RawMessage(raw)
			entry.Metadata = &msg
		}
	}
	logID, err := s.db.InsertImportLog(r.Context(), entry)
	if err != nil {
		s.log.Error("failed to log import start", "source", source, "error", err)
	}

	start := time.Now()
	result, importErr := fn(r.Context())
	s.logImport(logID, entry, result, importErr, int(time.Since(start).Milliseconds()))

	if importErr != nil {
		s.log.Error("ingest error", "source", source, "filename", filename, "error", importErr)
		writeJSON(w, errorStatus(importErr), map[string]string{"error": importErr.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// logImport records an import operation's result to the import_logs table.
// logID 0 means the running entry could not be created; a fresh row is
// inserted instead.
func (s *Server) logImport(logID int64, entry storage.ImportLog, result *ingest.Result, importErr error, durationMs int) {
	entry.Status = storage.ImportSuccess
	entry.DurationMs = &durationMs
	if importErr != nil {
		entry.Status = storage.ImportError
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if result != nil {
		entry.RecordsReceived = result.RecordsReceived
		entry.RecordsInserted = result.RecordsInserted
		entry.SetsInserted = result.SetsInserted
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	var err error
	if logID == 0 {
		_, err = s.db.InsertImportLog(ctx, entry)
	} else {
		err = s.db.UpdateImportLog(ctx, logID, entry)
	}
	if err != nil {
		s.log.Error("failed to log import", "source", entry.Source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for
// import logging, so a cancelled request still records its outcome.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), userIDFromContext(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}
