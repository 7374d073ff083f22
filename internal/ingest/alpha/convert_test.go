package alpha

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/gymdirection/internal/models"
)

// TestToSessions verifies warmups are dropped and RIR maps to RPE.
func TestToSessions(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	sessions := ToSessions(parsed)
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	pull := sessions[0]
	if pull.Date != "2026-03-05" {
		t.Errorf("date = %q", pull.Date)
	}
	if pull.Weekday != 4 {
		t.Errorf("weekday = %d, want 4 (Thursday)", pull.Weekday)
	}
	if pull.ProgramTitle != "Pull · Day 3 · Week 2 · Upper-Lower" {
		t.Errorf("program title = %q", pull.ProgramTitle)
	}
	if !strings.Contains(pull.Notes, "0:58 hr") {
		t.Errorf("notes = %q", pull.Notes)
	}

	lat := pull.Exercises[0]
	if len(lat.Sets) != 3 {
		t.Fatalf("working sets = %d, want 3", len(lat.Sets))
	}
	first := lat.Sets[0]
	if first.WeightOrZero() != 62.5 || first.RepsOrZero() != 10 || *first.RPE != 8 {
		t.Errorf("first set = %v x %d @ %v", first.WeightOrZero(), first.RepsOrZero(), *first.RPE)
	}

	if got := CountSets(sessions); got != 7 {
		t.Errorf("CountSets = %d, want 7", got)
	}
}

type fakeImporter struct {
	got    []models.Session
	err    error
	userID int
}

func (f *fakeImporter) ImportSessions(_ context.Context, userID int, sessions []models.Session) (int, int, error) {
	f.userID = userID
	f.got = sessions
	if f.err != nil {
		return 1, 0, f.err
	}
	return len(sessions), 0, nil
}

// TestProviderIngest verifies the provider reports counts and forwards the user.
func TestProviderIngest(t *testing.T) {
	imp := &fakeImporter{}
	p := NewProvider(imp, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 3)
	if err != nil {
		t.Fatal(err)
	}
	if imp.userID != 3 || len(imp.got) != 2 {
		t.Errorf("forwarded user=%d sessions=%d", imp.userID, len(imp.got))
	}
	if result.SessionsReceived != 2 || result.SessionsInserted != 2 || result.SetsReceived != 7 {
		t.Errorf("result = %+v", result)
	}
}

// TestProviderIngestPartial verifies counts survive an import error.
func TestProviderIngestPartial(t *testing.T) {
	imp := &fakeImporter{err: errors.New("db down")}
	p := NewProvider(imp, slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := p.Ingest(context.Background(), strings.NewReader(sampleCSV), 3)
	if !errors.Is(err, imp.err) {
		t.Fatalf("err = %v, want db down", err)
	}
	if result == nil || result.SessionsInserted != 1 {
		t.Errorf("result = %+v", result)
	}
}
