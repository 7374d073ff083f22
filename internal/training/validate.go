package training

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/gymdirection/internal/models"
)

// ErrInvalidSession wraps every session validation failure.
var ErrInvalidSession = errors.New("invalid session")

// ErrInvalidProgram wraps every program validation failure.
var ErrInvalidProgram = errors.New("invalid program")

// Validate checks a session before it is stored.
func Validate(s models.Session) error {
	if _, err := time.Parse(models.DateLayout, s.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidSession, s.Date)
	}
	if s.Weekday < 0 || s.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidSession, s.Weekday)
	}
	for i, ex := range s.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("%w: exercise %d has no name", ErrInvalidSession, i+1)
		}
		for j, set := range ex.Sets {
			if set.Reps != nil && *set.Reps < 0 {
				return fmt.Errorf("%w: %s set %d has negative reps", ErrInvalidSession, ex.Name, j+1)
			}
			if set.Weight != nil && *set.Weight < 0 {
				return fmt.Errorf("%w: %s set %d has negative weight", ErrInvalidSession, ex.Name, j+1)
			}
			if set.RPE != nil && *set.RPE < 0 {
				return fmt.Errorf("%w: %s set %d has negative rpe", ErrInvalidSession, ex.Name, j+1)
			}
		}
	}
	return nil
}

// ValidateProgram checks a program before it is stored.
func ValidateProgram(p models.Program) error {
	seen := make(map[int]bool, len(p.Days))
	for _, d := range p.Days {
		if d.Weekday < 0 || d.Weekday > 6 {
			return fmt.Errorf("%w: weekday %d out of range 0-6", ErrInvalidProgram, d.Weekday)
		}
		if seen[d.Weekday] {
			return fmt.Errorf("%w: weekday %d planned twice", ErrInvalidProgram, d.Weekday)
		}
		seen[d.Weekday] = true
		for _, ex := range d.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("%w: %q has an unnamed exercise", ErrInvalidProgram, d.Title)
			}
		}
	}
	return nil
}
