package models

import "time"

// ProgramExercise is a planned exercise. Sets and Reps are targets only;
// Reps is free text such as "8–12".
type ProgramExercise struct {
	Name string `json:"name" yaml:"name"`
	Sets int    `json:"sets,omitempty" yaml:"sets,omitempty"`
	Reps string `json:"reps,omitempty" yaml:"reps,omitempty"`
}

// ProgramDay is the plan for one weekday (0 = Sunday ... 6 = Saturday).
type ProgramDay struct {
	Weekday   int               `json:"weekday" yaml:"weekday"`
	Title     string            `json:"title" yaml:"title"`
	Exercises []ProgramExercise `json:"exercises" yaml:"exercises"`
}

// Program is a user's weekly plan.
type Program struct {
	Days      []ProgramDay `json:"days" yaml:"days"`
	UpdatedAt time.Time    `json:"updated_at,omitzero" yaml:"-"`
}

// DayFor returns the program day planned for the weekday, if any.
func (p Program) DayFor(weekday int) (ProgramDay, bool) {
	for _, d := range p.Days {
		if d.Weekday == weekday {
			return d, true
		}
	}
	return ProgramDay{}, false
}
