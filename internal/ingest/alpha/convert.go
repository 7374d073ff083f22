package alpha

import (
	"fmt"

	"github.com/claude/gymdirection/internal/models"
)

// maxRPE anchors the RIR to RPE conversion: RPE = 10 - RIR.
const maxRPE = 10

// ToSessions converts parsed export sessions into training sessions.
// Warmup sets are dropped so they never count toward records.
func ToSessions(in []Session) []models.Session {
	out := make([]models.Session, 0, len(in))
	for _, s := range in {
		sess := models.Session{
			Date:         s.Date.Format(models.DateLayout),
			Weekday:      int(s.Date.Weekday()),
			ProgramTitle: s.Name,
			Exercises:    make([]models.ExerciseEntry, 0, len(s.Exercises)),
		}
		if s.Duration != "" {
			sess.Notes = fmt.Sprintf("Imported from Alpha Progression (%s)", s.Duration)
		}
		for _, ex := range s.Exercises {
			entry := models.ExerciseEntry{Name: ex.Name}
			for _, set := range ex.Sets {
				if set.IsWarmup {
					continue
				}
				rpe := max(maxRPE-set.RIR, 0)
				entry.Sets = append(entry.Sets, models.TrainingSet{
					Reps:   models.IntPtr(set.Reps),
					Weight: models.FloatPtr(set.WeightKg),
					RPE:    models.FloatPtr(rpe),
				})
			}
			sess.Exercises = append(sess.Exercises, entry)
		}
		out = append(out, sess)
	}
	return out
}

// CountSets returns the number of working sets across sessions.
func CountSets(sessions []models.Session) int {
	n := 0
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			n += len(ex.Sets)
		}
	}
	return n
}
