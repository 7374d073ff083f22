package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/claude/gymdirection/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const sessionColumns = `id, user_id, session_date, weekday, program_title, notes, exercises, created_at`

// InsertSession stores a new session. ID and CreatedAt are assigned here.
func (db *DB) InsertSession(ctx context.Context, s *models.Session) error {
	date, err := time.Parse(models.DateLayout, s.Date)
	if err != nil {
		return fmt.Errorf("parsing session date: %w", err)
	}
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}

	s.ID = uuid.New()
	err = db.Pool.QueryRow(ctx,
		`INSERT INTO sessions (id, user_id, session_date, weekday, program_title, notes, exercises)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		s.ID, s.UserID, date, s.Weekday, s.ProgramTitle, s.Notes, exercises,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession replaces the mutable fields of a user's session.
func (db *DB) UpdateSession(ctx context.Context, s models.Session) error {
	date, err := time.Parse(models.DateLayout, s.Date)
	if err != nil {
		return fmt.Errorf("parsing session date: %w", err)
	}
	exercises, err := json.Marshal(s.Exercises)
	if err != nil {
		return fmt.Errorf("encoding exercises: %w", err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions
		 SET session_date = $3, weekday = $4, program_title = $5, notes = $6, exercises = $7
		 WHERE id = $1 AND user_id = $2`,
		s.ID, s.UserID, date, s.Weekday, s.ProgramTitle, s.Notes, exercises)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes a user's session.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID, userID int) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSession returns one of a user's sessions.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID, userID int) (models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND user_id = $2`, id, userID)
	s, err := scanSession(row)
	if err != nil {
		return models.Session{}, fmt.Errorf("querying session: %w", notFound(err))
	}
	return s, nil
}

// RecentSessions returns up to limit of a user's sessions, most recent
// first. Sessions on the same date are ordered newest logged first.
func (db *DB) RecentSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE user_id = $1
		 ORDER BY session_date DESC, created_at DESC, id
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// SessionDates returns the dates within [start, end) on which the user logged
// a session, ascending.
func (db *DB) SessionDates(ctx context.Context, userID int, start, end time.Time) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT session_date FROM sessions
		 WHERE user_id = $1 AND session_date >= $2 AND session_date < $3
		 ORDER BY session_date`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying session dates: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning session date: %w", err)
		}
		dates = append(dates, d.Format(models.DateLayout))
	}
	return dates, rows.Err()
}

func scanSession(row pgx.Row) (models.Session, error) {
	var (
		s         models.Session
		date      time.Time
		exercises []byte
	)
	if err := row.Scan(&s.ID, &s.UserID, &date, &s.Weekday, &s.ProgramTitle,
		&s.Notes, &exercises, &s.CreatedAt); err != nil {
		return models.Session{}, err
	}
	s.Date = date.Format(models.DateLayout)
	if err := json.Unmarshal(exercises, &s.Exercises); err != nil {
		return models.Session{}, fmt.Errorf("decoding exercises: %w", err)
	}
	return s, nil
}
