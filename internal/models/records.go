package models

import "time"

// PRRecord holds the personal records for one exercise. The best set and
// the best volume are tracked independently and may come from different
// sessions.
type PRRecord struct {
	Exercise       string  `json:"exercise"`
	BestSetWeight  float64 `json:"best_set_weight"`
	BestSetReps    int     `json:"best_set_reps"`
	BestSetDate    string  `json:"best_set_date"`
	BestVolume     float64 `json:"best_volume"`
	BestVolumeDate string  `json:"best_volume_date"`
}

// PRCollection is a user's full set of records ordered by descending
// BestVolume.
type PRCollection struct {
	Items     []PRRecord `json:"items"`
	UpdatedAt time.Time  `json:"updated_at,omitzero"`
}

// PublicProfile is the publicly readable projection of a user.
// Only TopPRs is written by record synchronization.
type PublicProfile struct {
	UserID         int          `json:"user_id"`
	Public         bool         `json:"public"`
	DisplayName    string       `json:"display_name"`
	Bio            string       `json:"bio"`
	Avatar         string       `json:"avatar"`
	ProgramSummary []ProgramDay `json:"program_summary"`
	TopPRs         []PRRecord   `json:"top_prs"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// User is an authenticated account.
type User struct {
	ID          int    `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}
