package records

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/claude/gymdirection/internal/models"
)

func set(weight float64, reps int) models.TrainingSet {
	return models.TrainingSet{Weight: models.FloatPtr(weight), Reps: models.IntPtr(reps)}
}

func session(date string, exercises ...models.ExerciseEntry) models.Session {
	return models.Session{Date: date, Exercises: exercises}
}

func entry(name string, sets ...models.TrainingSet) models.ExerciseEntry {
	return models.ExerciseEntry{Name: name, Sets: sets}
}

func find(t *testing.T, c models.PRCollection, name string) models.PRRecord {
	t.Helper()
	for _, r := range c.Items {
		if r.Exercise == name {
			return r
		}
	}
	t.Fatalf("no record for %q", name)
	return models.PRRecord{}
}

// TestComputeEmpty verifies that no sessions yield an empty collection.
func TestComputeEmpty(t *testing.T) {
	c := Compute(nil)
	if len(c.Items) != 0 {
		t.Errorf("items = %d, want 0", len(c.Items))
	}
	if len(Excerpt(c)) != 0 {
		t.Errorf("excerpt = %d, want 0", len(Excerpt(c)))
	}
}

// TestComputeSingleSet verifies both records come from the only set logged.
func TestComputeSingleSet(t *testing.T) {
	c := Compute([]models.Session{
		session("2024-03-01", entry("Squats", set(100, 5))),
	})

	want := models.PRRecord{
		Exercise:       "Squats",
		BestSetWeight:  100,
		BestSetReps:    5,
		BestSetDate:    "2024-03-01",
		BestVolume:     500,
		BestVolumeDate: "2024-03-01",
	}
	if len(c.Items) != 1 || c.Items[0] != want {
		t.Errorf("items = %+v, want [%+v]", c.Items, want)
	}
}

// TestComputeIndependentBests verifies the heaviest set and the biggest
// session volume are tracked from different sessions.
func TestComputeIndependentBests(t *testing.T) {
	a := session("2024-03-08", entry("Bench Press", set(120, 1)))
	b := session("2024-03-01", entry("Bench Press", set(80, 10), set(80, 10), set(80, 10)))

	r := find(t, Compute([]models.Session{a, b}), "Bench Press")
	if r.BestSetWeight != 120 || r.BestSetReps != 1 || r.BestSetDate != a.Date {
		t.Errorf("best set = %v x %d on %s, want 120 x 1 on %s", r.BestSetWeight, r.BestSetReps, r.BestSetDate, a.Date)
	}
	if r.BestVolume != 2400 || r.BestVolumeDate != b.Date {
		t.Errorf("best volume = %v on %s, want 2400 on %s", r.BestVolume, r.BestVolumeDate, b.Date)
	}
}

// TestComputeTieKeepsFirst verifies equal values never overwrite, so with
// most-recent-first input the most recent date is kept.
func TestComputeTieKeepsFirst(t *testing.T) {
	recent := session("2024-05-10", entry("Deadlift", set(180, 3)))
	older := session("2024-05-03", entry("Deadlift", set(180, 3)))

	r := find(t, Compute([]models.Session{recent, older}), "Deadlift")
	if r.BestSetDate != recent.Date {
		t.Errorf("best set date = %s, want %s", r.BestSetDate, recent.Date)
	}
	if r.BestVolumeDate != recent.Date {
		t.Errorf("best volume date = %s, want %s", r.BestVolumeDate, recent.Date)
	}
}

// TestComputeTieWithinSession verifies the first of two equal sets keeps its reps.
func TestComputeTieWithinSession(t *testing.T) {
	r := find(t, Compute([]models.Session{
		session("2024-05-10", entry("Row", set(60, 12), set(60, 8))),
	}), "Row")
	if r.BestSetReps != 12 {
		t.Errorf("best set reps = %d, want 12", r.BestSetReps)
	}
}

// TestComputeMissingFields verifies absent weight or reps count as zero.
func TestComputeMissingFields(t *testing.T) {
	c := Compute([]models.Session{
		session("2024-06-01",
			entry("Pull Up", models.TrainingSet{Reps: models.IntPtr(12)}),
			entry("Curl", set(20, 10), models.TrainingSet{Weight: models.FloatPtr(30)}),
		),
	})

	pull := find(t, c, "Pull Up")
	if pull.BestSetWeight != 0 || pull.BestVolume != 0 {
		t.Errorf("pull up = %+v, want zero weight and volume", pull)
	}

	curl := find(t, c, "Curl")
	if curl.BestSetWeight != 30 || curl.BestSetReps != 0 {
		t.Errorf("curl best set = %v x %d, want 30 x 0", curl.BestSetWeight, curl.BestSetReps)
	}
	if curl.BestVolume != 200 {
		t.Errorf("curl volume = %v, want 200", curl.BestVolume)
	}
}

// TestComputeWeightlessSetCannotRaise verifies a set without weight never
// displaces an existing best set.
func TestComputeWeightlessSetCannotRaise(t *testing.T) {
	r := find(t, Compute([]models.Session{
		session("2024-06-02", entry("Dip", set(10, 8))),
		session("2024-06-01", entry("Dip", models.TrainingSet{Reps: models.IntPtr(30)})),
	}), "Dip")
	if r.BestSetWeight != 10 || r.BestSetReps != 8 {
		t.Errorf("best set = %v x %d, want 10 x 8", r.BestSetWeight, r.BestSetReps)
	}
}

// TestComputeEmptyCollections verifies entries without sets still produce a
// zero record and sessions without exercises are ignored.
func TestComputeEmptyCollections(t *testing.T) {
	c := Compute([]models.Session{
		{Date: "2024-07-01"},
		session("2024-06-30", models.ExerciseEntry{Name: "Plank"}),
	})
	if len(c.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(c.Items))
	}
	want := models.PRRecord{Exercise: "Plank", BestSetDate: "2024-06-30", BestVolumeDate: "2024-06-30"}
	if c.Items[0] != want {
		t.Errorf("record = %+v, want %+v", c.Items[0], want)
	}
}

// TestComputeCaseSensitiveNames verifies names differing in case are distinct.
func TestComputeCaseSensitiveNames(t *testing.T) {
	c := Compute([]models.Session{
		session("2024-06-01", entry("squat", set(100, 1)), entry("Squat", set(90, 1))),
	})
	if len(c.Items) != 2 {
		t.Errorf("items = %d, want 2", len(c.Items))
	}
}

// TestComputeOrderedByVolume verifies descending volume order with ties in
// first-seen order.
func TestComputeOrderedByVolume(t *testing.T) {
	c := Compute([]models.Session{
		session("2024-06-01",
			entry("A", set(10, 10)),
			entry("B", set(50, 10)),
			entry("C", set(10, 10)),
			entry("D", set(20, 10)),
		),
	})
	var got []string
	for _, r := range c.Items {
		got = append(got, r.Exercise)
	}
	if want := []string{"B", "D", "A", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

// TestExcerptCap verifies the excerpt holds the twelve highest volumes while
// the collection keeps everything.
func TestExcerptCap(t *testing.T) {
	var entries []models.ExerciseEntry
	for i := 1; i <= 20; i++ {
		entries = append(entries, entry(fmt.Sprintf("Exercise %02d", i), set(float64(i), 10)))
	}
	c := Compute([]models.Session{session("2024-06-01", entries...)})

	if len(c.Items) != 20 {
		t.Fatalf("items = %d, want 20", len(c.Items))
	}
	top := Excerpt(c)
	if len(top) != ExcerptSize {
		t.Fatalf("excerpt = %d, want %d", len(top), ExcerptSize)
	}
	for i, r := range top {
		want := fmt.Sprintf("Exercise %02d", 20-i)
		if r.Exercise != want {
			t.Errorf("excerpt[%d] = %s, want %s", i, r.Exercise, want)
		}
	}

	top[0].Exercise = "mutated"
	if c.Items[0].Exercise == "mutated" {
		t.Error("excerpt shares backing array with collection")
	}
}

// TestComputeMonotonic verifies that adding a session never lowers an
// existing record.
func TestComputeMonotonic(t *testing.T) {
	history := []models.Session{
		session("2024-06-10", entry("Squats", set(140, 3)), entry("Lunge", set(20, 10))),
		session("2024-06-05", entry("Squats", set(120, 8), set(120, 8))),
	}
	extras := []models.Session{
		session("2024-06-01", entry("Squats", set(60, 5))),
		session("2024-06-01", entry("Squats", set(150, 1), set(100, 20))),
		session("2024-06-01", entry("Lunge")),
		session("2024-06-01", entry("Lunge", models.TrainingSet{})),
	}

	before := Compute(history)
	for i, extra := range extras {
		after := Compute(append(append([]models.Session{}, history...), extra))
		for _, b := range before.Items {
			a := find(t, after, b.Exercise)
			if a.BestSetWeight < b.BestSetWeight || a.BestVolume < b.BestVolume {
				t.Errorf("extra %d lowered %s: %+v -> %+v", i, b.Exercise, b, a)
			}
		}
	}
}

// TestComputeIdempotent verifies repeated computation over the same input
// yields the same result.
func TestComputeIdempotent(t *testing.T) {
	in := []models.Session{
		session("2024-06-10", entry("Squats", set(140, 3)), entry("Press", set(60, 8))),
		session("2024-06-05", entry("Squats", set(120, 8)), entry("Press", set(62.5, 5))),
	}
	if a, b := Compute(in), Compute(in); !reflect.DeepEqual(a, b) {
		t.Errorf("results differ:\n%+v\n%+v", a, b)
	}
}
