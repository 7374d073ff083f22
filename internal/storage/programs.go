package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/gymdirection/internal/models"
)

// GetProgram returns a user's weekly program.
func (db *DB) GetProgram(ctx context.Context, userID int) (models.Program, error) {
	var (
		p    models.Program
		days []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT days, updated_at FROM programs WHERE user_id = $1`, userID,
	).Scan(&days, &p.UpdatedAt)
	if err != nil {
		return models.Program{}, fmt.Errorf("querying program: %w", notFound(err))
	}
	if err := json.Unmarshal(days, &p.Days); err != nil {
		return models.Program{}, fmt.Errorf("decoding program: %w", err)
	}
	return p, nil
}

// SaveProgram stores a user's program and mirrors its days into the public
// profile summary.
func (db *DB) SaveProgram(ctx context.Context, userID int, p models.Program) error {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx,
		`INSERT INTO programs (user_id, days) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET days = EXCLUDED.days, updated_at = NOW()`,
		userID, days); err != nil {
		return fmt.Errorf("saving program: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE public_profiles SET program_summary = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, days); err != nil {
		return fmt.Errorf("updating program summary: %w", err)
	}
	return tx.Commit(ctx)
}

// EnsureProgram creates the program row if the user has none.
// Returns true if a row was created.
func (db *DB) EnsureProgram(ctx context.Context, userID int, p models.Program) (bool, error) {
	days, err := json.Marshal(p.Days)
	if err != nil {
		return false, fmt.Errorf("encoding program: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO programs (user_id, days) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, days)
	if err != nil {
		return false, fmt.Errorf("seeding program: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
