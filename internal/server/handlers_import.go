package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/gymdirection/internal/ingest/alpha"
	"github.com/claude/gymdirection/internal/records"
	"github.com/claude/gymdirection/internal/storage"
)

// maxImportBytes bounds a CSV upload.
const maxImportBytes = 32 << 20

func (s *Server) handleAlphaImport(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start := time.Now()
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)

	result, err := s.alpha.Ingest(r.Context(), body, uid)
	s.logImport(r, uid, start, result, err)
	if err != nil {
		s.log.Error("alpha import error", "user_id", uid, "error", err)
		switch {
		case result == nil:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, records.ErrExcerptNotSynced):
			writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "hint": syncExcerptHint, "result": result})
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error(), "result": result})
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// logImport records the outcome. A failed log write never fails the import.
func (s *Server) logImport(r *http.Request, uid int, start time.Time, result *alpha.Result, importErr error) {
	ms := int(time.Since(start).Milliseconds())
	entry := storage.ImportLog{
		UserID:     uid,
		Source:     "alpha",
		Status:     "success",
		DurationMs: &ms,
	}
	if result != nil {
		entry.SessionsReceived = result.SessionsReceived
		entry.SessionsInserted = result.SessionsInserted
		entry.SetsReceived = result.SetsReceived
	}
	if importErr != nil {
		entry.Status = "error"
		if result != nil && result.SessionsInserted > 0 {
			entry.Status = "partial"
		}
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := s.ledger.InsertImportLog(r.Context(), entry); err != nil {
		s.log.Warn("writing import log", "user_id", uid, "error", err)
	}
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	logs, err := s.ledger.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.ledger.GetDataStats(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
