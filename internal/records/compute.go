package records

import (
	"sort"

	"github.com/claude/gymdirection/internal/models"
)

const (
	// WindowSize is how many of a user's most recent sessions are scanned.
	// Older sessions do not count toward records.
	WindowSize = 250

	// ExcerptSize is how many records are mirrored to the public profile.
	ExcerptSize = 12
)

// Compute derives per-exercise records from a window of sessions.
//
// Sessions are expected most recent first. Updates use strict comparisons,
// so on ties the first record encountered is kept, which for that ordering
// is the most recent one. Missing weights and reps count as zero.
func Compute(sessions []models.Session) models.PRCollection {
	byName := make(map[string]*models.PRRecord)
	var order []string

	for _, s := range sessions {
		for _, ex := range s.Exercises {
			var volume float64

			for _, set := range ex.Sets {
				w := set.WeightOrZero()
				r := set.RepsOrZero()
				volume += w * float64(r)

				cur, ok := byName[ex.Name]
				if !ok {
					cur = &models.PRRecord{Exercise: ex.Name, BestVolumeDate: s.Date}
					byName[ex.Name] = cur
					order = append(order, ex.Name)
				} else if w <= cur.BestSetWeight {
					continue
				}
				cur.BestSetWeight = w
				cur.BestSetReps = r
				cur.BestSetDate = s.Date
			}

			cur, ok := byName[ex.Name]
			if !ok {
				cur = &models.PRRecord{Exercise: ex.Name, BestSetDate: s.Date}
				byName[ex.Name] = cur
				order = append(order, ex.Name)
			} else if volume <= cur.BestVolume {
				continue
			}
			cur.BestVolume = volume
			cur.BestVolumeDate = s.Date
		}
	}

	items := make([]models.PRRecord, 0, len(order))
	for _, name := range order {
		items = append(items, *byName[name])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].BestVolume > items[j].BestVolume
	})

	return models.PRCollection{Items: items}
}

// Top returns the first n records of a collection ordered by volume.
func Top(c models.PRCollection, n int) []models.PRRecord {
	if len(c.Items) < n {
		n = len(c.Items)
	}
	top := make([]models.PRRecord, n)
	copy(top, c.Items[:n])
	return top
}

// Excerpt returns the public projection of a collection.
func Excerpt(c models.PRCollection) []models.PRRecord {
	return Top(c, ExcerptSize)
}
