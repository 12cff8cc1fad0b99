package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/pipeline"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/storage"
	"github.com/claude/daypulse/internal/weekly"
	"github.com/google/uuid"
)

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var payload models.ExportPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	// Large exports get a wall-clock budget so they cannot block the host.
	ctx, cancel := context.WithTimeout(r.Context(), s.ingestTimeout)
	defer cancel()

	started := time.Now()
	batchID := uuid.New()

	records, result, err := s.pipe.Normalize(ctx, &payload, userID)
	if err != nil {
		s.logIngest(batchID, userID, result, started, err)
		s.log.Error("ingest normalize error", "batch", batchID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if _, err := s.store.UpsertDayRecords(ctx, records); err != nil {
		s.logIngest(batchID, userID, result, started, err)
		s.log.Error("ingest write error", "batch", batchID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.logIngest(batchID, userID, result, started, nil)
	writeJSON(w, http.StatusOK, map[string]any{
		"batch_id": batchID,
		"result":   result,
		"records":  records,
	})
}

// logIngest records the batch outcome. Failure to write the log is warned but
// never fails the ingest.
func (s *Server) logIngest(batchID uuid.UUID, userID int, result *pipeline.Result, started time.Time, ingestErr error) {
	durationMs := int(time.Since(started).Milliseconds())
	entry := storage.IngestLog{
		ID:         batchID,
		UserID:     userID,
		Source:     "rest",
		Status:     "success",
		DurationMs: &durationMs,
	}
	if result != nil {
		entry.SamplesReceived = result.SamplesReceived
		entry.SamplesApplied = result.SamplesApplied
		entry.SamplesSkipped = result.SamplesSkipped
		entry.RecordsWritten = result.Records
	}
	if ingestErr != nil {
		entry.Status = "error"
		msg := ingestErr.Error()
		entry.ErrorMessage = &msg
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.InsertIngestLog(ctx, entry); err != nil {
		s.log.Warn("failed to write ingest log", "batch", batchID, "error", err)
	}
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	date, err := dateParam(r, "date", time.Now().UTC())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rec, err := s.store.GetDayRecord(r.Context(), userID, date)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	res := readiness.Score(rec, s.readinessCfg)
	if res.Date == "" {
		res.Date = date.Format("2006-01-02")
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Default window: the 7 days ending today.
	defaultStart := time.Now().UTC().AddDate(0, 0, -6)
	weekStart, err := dateParam(r, "week_start", defaultStart)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	currStart := weekStart
	currEnd := weekStart.AddDate(0, 0, 6)
	prevStart := weekStart.AddDate(0, 0, -7)
	prevEnd := weekStart.AddDate(0, 0, -1)

	current, err := s.store.QueryDayRecords(r.Context(), userID, currStart, currEnd)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	previous, err := s.store.QueryDayRecords(r.Context(), userID, prevStart, prevEnd)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	rep := weekly.Build(current, previous, currStart, s.weeklyCfg)

	if err := s.store.UpsertWeeklyReport(r.Context(), userID, rep); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	start, err := dateParam(r, "start", now.AddDate(0, 0, -7))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	end, err := dateParam(r, "end", now)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "end date is before start date"})
		return
	}

	records, err := s.store.QueryDayRecords(r.Context(), userID, start, end)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleIngestLogs(w http.ResponseWriter, r *http.Request) {
	userID, err := requireUser(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := s.store.QueryIngestLogs(r.Context(), userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

// requireUser extracts the mandatory user query parameter. A missing or
// malformed user identifier is the one fail-fast condition at this boundary.
func requireUser(r *http.Request) (int, error) {
	v := r.URL.Query().Get("user")
	if v == "" {
		return 0, fmt.Errorf("user parameter is required")
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user identifier %q", v)
	}
	return id, nil
}

// dateParam parses a YYYY-MM-DD query parameter, using fallback when absent.
// A present-but-malformed date rejects rather than producing a misleading
// report.
func dateParam(r *http.Request, name string, fallback time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s date %q: expected YYYY-MM-DD", name, v)
	}
	return t, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
