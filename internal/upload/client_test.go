package upload

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestSendCSVRetries verifies server errors are retried and the key and
// body are sent on every attempt.
func TestSendCSVRetries(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.URL.Path != "/api/v1/import/alpha" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "k" {
			t.Errorf("api key = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "csv" {
			t.Errorf("body = %q", body)
		}
		if attempts < 2 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"sessions_received":2,"sessions_inserted":2,"sets_received":9}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL+"/", "k")
	c.backoff = 0
	result, err := c.SendCSV(context.Background(), []byte("csv"))
	if err != nil {
		t.Fatal(err)
	}
	if attempts != 2 || result.SessionsInserted != 2 || result.SetsReceived != 9 {
		t.Errorf("attempts = %d, result = %+v", attempts, result)
	}
}

func TestSendCSVClientErrorNoRetry(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "bad")
	c.backoff = 0
	_, err := c.SendCSV(context.Background(), []byte("csv"))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("err = %v, want 403", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}
