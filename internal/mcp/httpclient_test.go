package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/claude/gymdirection/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

func TestHTTPClientPRs(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/prs": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.PRCollection{Items: []models.PRRecord{
				{Exercise: "Squat", BestSetWeight: 140, BestSetReps: 3, BestVolume: 2100},
			}})
		},
	})
	defer ts.Close()

	c, err := NewHTTPClient(ts.URL+"/").PRs(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Items) != 1 || c.Items[0].Exercise != "Squat" || c.Items[0].BestVolume != 2100 {
		t.Errorf("items = %+v", c.Items)
	}
}

// TestHTTPClientRecentSessions verifies the limit is forwarded as a query param.
func TestHTTPClientRecentSessions(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/sessions": func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("limit"); got != "5" {
				t.Errorf("limit=%q, want 5", got)
			}
			writeTestJSON(t, w, []models.Session{{Date: "2026-03-05"}, {Date: "2026-03-03"}})
		},
	})
	defer ts.Close()

	sessions, err := NewHTTPClient(ts.URL).RecentSessions(context.Background(), 1, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].Date != "2026-03-05" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestHTTPClientProgram(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/program": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, models.Program{Days: []models.ProgramDay{{Weekday: 1, Title: "Push"}}})
		},
	})
	defer ts.Close()

	p, err := NewHTTPClient(ts.URL).Program(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Days) != 1 || p.Days[0].Title != "Push" {
		t.Errorf("program = %+v", p)
	}
}

// TestHTTPClientErrorStatus verifies non-200 responses surface the body.
func TestHTTPClientErrorStatus(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/prs": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL).PRs(context.Background(), 1)
	if err == nil || !strings.Contains(err.Error(), "500") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("err = %v, want status and body", err)
	}
}
