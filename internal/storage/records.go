package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/gymdirection/internal/models"
)

// WritePRCollection upserts a user's records. Only the items and the update
// time are replaced; other columns of an existing row are kept.
func (db *DB) WritePRCollection(ctx context.Context, userID int, c models.PRCollection) error {
	items, err := json.Marshal(nonNil(c.Items))
	if err != nil {
		return fmt.Errorf("encoding records: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO personal_records (user_id, items) VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = NOW()`,
		userID, items)
	if err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// GetPRCollection returns a user's stored records. A user without a row has
// an empty collection.
func (db *DB) GetPRCollection(ctx context.Context, userID int) (models.PRCollection, error) {
	var (
		c     models.PRCollection
		items []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT items, updated_at FROM personal_records WHERE user_id = $1`, userID,
	).Scan(&items, &c.UpdatedAt)
	if err != nil {
		if notFound(err) == ErrNotFound {
			return models.PRCollection{Items: []models.PRRecord{}}, nil
		}
		return models.PRCollection{}, fmt.Errorf("querying records: %w", err)
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return models.PRCollection{}, fmt.Errorf("decoding records: %w", err)
	}
	return c, nil
}

func nonNil(items []models.PRRecord) []models.PRRecord {
	if items == nil {
		return []models.PRRecord{}
	}
	return items
}
