package mcp

import (
	"context"

	"github.com/claude/gymdirection/internal/models"
	"github.com/claude/gymdirection/internal/training"
)

// DataSource abstracts the data layer for MCP tools. Both *training.Service
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	PRs(ctx context.Context, userID int) (models.PRCollection, error)
	RecentSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	Program(ctx context.Context, userID int) (models.Program, error)
}

// Compile-time check: *training.Service satisfies DataSource.
var _ DataSource = (*training.Service)(nil)
