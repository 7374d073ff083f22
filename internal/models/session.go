package models

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format sessions are keyed by.
const DateLayout = "2006-01-02"

// TrainingSet is one performed set. Any field may be absent.
type TrainingSet struct {
	Reps   *int     `json:"reps,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	RPE    *float64 `json:"rpe,omitempty"`
}

// RepsOrZero returns the repetition count, or 0 when absent.
func (s TrainingSet) RepsOrZero() int {
	if s.Reps == nil {
		return 0
	}
	return *s.Reps
}

// WeightOrZero returns the load, or 0 when absent.
func (s TrainingSet) WeightOrZero() float64 {
	if s.Weight == nil {
		return 0
	}
	return *s.Weight
}

// ExerciseEntry groups the sets performed for one exercise in a session.
// Name is case-sensitive.
type ExerciseEntry struct {
	Name string        `json:"name"`
	Sets []TrainingSet `json:"sets"`
}

// Session is one logged training day.
type Session struct {
	ID           uuid.UUID       `json:"id"`
	UserID       int             `json:"-"`
	Date         string          `json:"date"`
	Weekday      int             `json:"weekday"`
	ProgramTitle string          `json:"program_title"`
	Notes        string          `json:"notes,omitempty"`
	Exercises    []ExerciseEntry `json:"exercises"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IntPtr and FloatPtr build optional set fields.
func IntPtr(v int) *int { return &v }

func FloatPtr(v float64) *float64 { return &v }
