package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/claude/gymdirection/internal/models"
)

// EnsurePublicProfile creates a private profile row if the user has none.
func (db *DB) EnsurePublicProfile(ctx context.Context, p models.PublicProfile) error {
	summary, err := json.Marshal(p.ProgramSummary)
	if err != nil {
		return fmt.Errorf("encoding program summary: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO public_profiles (user_id, public, display_name, bio, avatar, program_summary, top_prs)
		 VALUES ($1, FALSE, $2, $3, $4, $5, '[]')
		 ON CONFLICT DO NOTHING`,
		p.UserID, p.DisplayName, p.Bio, p.Avatar, summary)
	if err != nil {
		return fmt.Errorf("seeding public profile: %w", err)
	}
	return nil
}

// GetPublicProfile returns a user's profile regardless of visibility.
func (db *DB) GetPublicProfile(ctx context.Context, userID int) (models.PublicProfile, error) {
	var (
		p            models.PublicProfile
		summary, top []byte
	)
	err := db.Pool.QueryRow(ctx,
		`SELECT user_id, public, display_name, bio, avatar, program_summary, top_prs, updated_at
		 FROM public_profiles WHERE user_id = $1`, userID,
	).Scan(&p.UserID, &p.Public, &p.DisplayName, &p.Bio, &p.Avatar, &summary, &top, &p.UpdatedAt)
	if err != nil {
		return models.PublicProfile{}, fmt.Errorf("querying public profile: %w", notFound(err))
	}
	if err := json.Unmarshal(summary, &p.ProgramSummary); err != nil {
		return models.PublicProfile{}, fmt.Errorf("decoding program summary: %w", err)
	}
	if err := json.Unmarshal(top, &p.TopPRs); err != nil {
		return models.PublicProfile{}, fmt.Errorf("decoding top records: %w", err)
	}
	return p, nil
}

// WritePublicExcerpt overwrites the top_prs field of a user's profile.
func (db *DB) WritePublicExcerpt(ctx context.Context, userID int, top []models.PRRecord) error {
	data, err := json.Marshal(nonNil(top))
	if err != nil {
		return fmt.Errorf("encoding excerpt: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE public_profiles SET top_prs = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, data)
	if err != nil {
		return fmt.Errorf("writing excerpt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("writing excerpt: %w", ErrNotFound)
	}
	return nil
}

// UpdateProfile sets the user-editable profile fields.
func (db *DB) UpdateProfile(ctx context.Context, userID int, public bool, displayName, bio string) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE public_profiles
		 SET public = $2, display_name = $3, bio = $4, updated_at = NOW()
		 WHERE user_id = $1`,
		userID, public, displayName, bio)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
