package alpha

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/gymdirection/internal/models"
)

// Importer stores converted sessions and resyncs the user's records.
type Importer interface {
	ImportSessions(ctx context.Context, userID int, sessions []models.Session) (inserted, skipped int, err error)
}

// Result holds the outcome of an import.
type Result struct {
	SessionsReceived int `json:"sessions_received"`
	SessionsInserted int `json:"sessions_inserted"`
	SessionsSkipped  int `json:"sessions_skipped"`
	SetsReceived     int `json:"sets_received"`
}

// Provider processes Alpha Progression CSV exports.
type Provider struct {
	imp Importer
	log *slog.Logger
}

// NewProvider creates a new Alpha Progression ingest provider.
func NewProvider(imp Importer, log *slog.Logger) *Provider {
	return &Provider{imp: imp, log: log}
}

// Ingest parses a CSV export and imports its working sets as sessions.
// A partially failed import still reports what was stored.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, userID int) (*Result, error) {
	parsed, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	sessions := ToSessions(parsed)
	result := &Result{
		SessionsReceived: len(sessions),
		SetsReceived:     CountSets(sessions),
	}

	inserted, skipped, err := p.imp.ImportSessions(ctx, userID, sessions)
	result.SessionsInserted = inserted
	result.SessionsSkipped = skipped
	if err != nil {
		return result, fmt.Errorf("importing sessions: %w", err)
	}

	p.log.Info("alpha import complete", "user_id", userID,
		"sessions", inserted, "skipped", skipped, "sets", result.SetsReceived)
	return result, nil
}
