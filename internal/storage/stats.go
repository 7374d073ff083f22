package storage

import (
	"context"
	"fmt"
)

// DataStats holds aggregate statistics about a user's training log.
type DataStats struct {
	TotalSessions   int64         `json:"total_sessions"`
	TotalSets       int64         `json:"total_sets"`
	TotalExercises  int64         `json:"total_exercises"`
	EarliestSession *string       `json:"earliest_session"`
	LatestSession   *string       `json:"latest_session"`
	SessionsByTitle []ProgramStat `json:"sessions_by_title"`
}

// ProgramStat counts sessions logged under one program title.
type ProgramStat struct {
	Title string `json:"title"`
	Count int64  `json:"count"`
}

// GetDataStats returns aggregate statistics for a user's stored sessions.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{SessionsByTitle: []ProgramStat{}}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*), MIN(session_date)::text, MAX(session_date)::text
		 FROM sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.EarliestSession, &stats.LatestSession)
	if err != nil {
		return nil, fmt.Errorf("counting sessions: %w", err)
	}

	// Sets may be JSON null for an exercise logged without any.
	err = db.Pool.QueryRow(ctx,
		`SELECT
			COALESCE(SUM(CASE jsonb_typeof(ex->'sets') WHEN 'array' THEN jsonb_array_length(ex->'sets') ELSE 0 END), 0),
			COUNT(DISTINCT ex->>'name')
		 FROM sessions s, jsonb_array_elements(s.exercises) ex
		 WHERE s.user_id = $1`, userID,
	).Scan(&stats.TotalSets, &stats.TotalExercises)
	if err != nil {
		return nil, fmt.Errorf("counting sets: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT program_title, COUNT(*)
		 FROM sessions
		 WHERE user_id = $1
		 GROUP BY program_title
		 ORDER BY COUNT(*) DESC, program_title`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sessions by title: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ProgramStat
		if err := rows.Scan(&s.Title, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning program stat: %w", err)
		}
		stats.SessionsByTitle = append(stats.SessionsByTitle, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
