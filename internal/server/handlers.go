package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/gymdirection/internal/models"
	"github.com/claude/gymdirection/internal/records"
	"github.com/claude/gymdirection/internal/training"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const syncExcerptHint = "records saved; retry POST /api/v1/prs/sync-excerpt to publish"

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Program(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var p models.Program
	if !decodeBody(w, r, &p) {
		return
	}
	if err := s.svc.SaveProgram(r.Context(), uid, p); err != nil {
		s.writeError(w, err)
		return
	}
	saved, err := s.svc.Program(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = n
	}
	sessions, err := s.svc.RecentSessions(r.Context(), uid, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var sess models.Session
	if !decodeBody(w, r, &sess) {
		return
	}
	created, err := s.svc.CreateSession(r.Context(), uid, sess)
	if err != nil {
		if created.ID != uuid.Nil {
			// Stored, but records lag behind.
			s.writeSyncError(w, err, created)
			return
		}
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	sess, err := s.svc.Session(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var sess models.Session
	if !decodeBody(w, r, &sess) {
		return
	}
	sess.ID = id
	if err := s.svc.UpdateSession(r.Context(), uid, sess); err != nil {
		s.writeError(w, err)
		return
	}
	updated, err := s.svc.Session(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteSession(r.Context(), uid, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	month := time.Now().UTC()
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := time.Parse("2006-01", v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = m
	}
	dates, err := s.svc.Calendar(r.Context(), uid, month)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if dates == nil {
		dates = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month": month.Format("2006-01"),
		"dates": dates,
	})
}

func (s *Server) handleGetPRs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	c, err := s.svc.PRs(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleSyncExcerpt(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	if err := s.svc.SyncExcerpt(r.Context(), uid); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.Profile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_prs": p.TopPRs})
}

type profileUpdate struct {
	Public      bool   `json:"public"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Profile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var u profileUpdate
	if !decodeBody(w, r, &u) {
		return
	}
	if u.DisplayName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "display_name is required"})
		return
	}
	if err := s.svc.UpdateProfile(r.Context(), uid, u.Public, u.DisplayName, u.Bio); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.svc.Profile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.Atoi(chi.URLParam(r, "uid"))
	if err != nil || uid <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}
	p, err := s.svc.PublicProfile(r.Context(), uid)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// writeError maps service errors to status codes. Hidden profiles answer
// 404 so visibility does not leak.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, training.ErrInvalidSession), errors.Is(err, training.ErrInvalidProgram):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound), errors.Is(err, training.ErrNotVisible):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, records.ErrExcerptNotSynced):
		s.log.Warn("public excerpt not synced", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error(), "hint": syncExcerptHint})
	default:
		s.log.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// writeSyncError reports a stored session whose records resync failed.
func (s *Server) writeSyncError(w http.ResponseWriter, err error, sess models.Session) {
	status := http.StatusInternalServerError
	body := map[string]any{"error": err.Error(), "session": sess}
	if errors.Is(err, records.ErrExcerptNotSynced) {
		status = http.StatusBadGateway
		body["hint"] = syncExcerptHint
	}
	s.log.Warn("session stored but records not synced", "session_id", sess.ID, "error", err)
	writeJSON(w, status, body)
}

func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
