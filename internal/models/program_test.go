package models

import "testing"

// TestDefaultProgram verifies the embedded program parses and covers six weekdays.
func TestDefaultProgram(t *testing.T) {
	p := DefaultProgram()
	if len(p.Days) != 6 {
		t.Fatalf("days = %d, want 6", len(p.Days))
	}

	sat, ok := p.DayFor(6)
	if !ok {
		t.Fatal("expected a Saturday day")
	}
	if sat.Title != "Saturday — Chest & Triceps" {
		t.Errorf("title = %q", sat.Title)
	}
	if len(sat.Exercises) != 6 {
		t.Fatalf("saturday exercises = %d, want 6", len(sat.Exercises))
	}
	if sat.Exercises[0].Sets != 4 || sat.Exercises[0].Reps != "8–12" {
		t.Errorf("first exercise = %+v", sat.Exercises[0])
	}

	if _, ok := p.DayFor(5); ok {
		t.Error("Friday should not be planned")
	}
}

// TestDefaultProgramIsCopy verifies callers cannot mutate the shared default.
func TestDefaultProgramIsCopy(t *testing.T) {
	a := DefaultProgram()
	a.Days[0].Title = "changed"
	if b := DefaultProgram(); b.Days[0].Title == "changed" {
		t.Error("DefaultProgram returned shared state")
	}
}

// TestParseProgramInvalid verifies malformed YAML is rejected.
func TestParseProgramInvalid(t *testing.T) {
	if _, err := ParseProgram([]byte("days: [")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

// TestSetZeroDefaults verifies absent set fields read as zero.
func TestSetZeroDefaults(t *testing.T) {
	var s TrainingSet
	if s.RepsOrZero() != 0 || s.WeightOrZero() != 0 {
		t.Errorf("empty set = (%d, %v), want zeros", s.RepsOrZero(), s.WeightOrZero())
	}
	s = TrainingSet{Reps: IntPtr(5), Weight: FloatPtr(102.5)}
	if s.RepsOrZero() != 5 || s.WeightOrZero() != 102.5 {
		t.Errorf("set = (%d, %v), want (5, 102.5)", s.RepsOrZero(), s.WeightOrZero())
	}
}
