package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/claude/gymdirection/internal/models"
)

type fakeStore struct {
	mu sync.Mutex

	sessions   []models.Session
	fetchErr   error
	lastLimit  int
	prs        map[int]models.PRCollection
	prErr      error
	excerpts   map[int][]models.PRRecord
	excerptErr error
	writes     []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prs:      make(map[int]models.PRCollection),
		excerpts: make(map[int][]models.PRRecord),
	}
}

func (f *fakeStore) RecentSessions(_ context.Context, _ int, limit int) ([]models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.sessions) > limit {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeStore) WritePRCollection(_ context.Context, userID int, c models.PRCollection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.prErr != nil {
		return f.prErr
	}
	f.prs[userID] = c
	f.writes = append(f.writes, "prs")
	return nil
}

func (f *fakeStore) GetPRCollection(_ context.Context, userID int) (models.PRCollection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.prs[userID], nil
}

func (f *fakeStore) WritePublicExcerpt(_ context.Context, userID int, top []models.PRRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.excerptErr != nil {
		return f.excerptErr
	}
	f.excerpts[userID] = top
	f.writes = append(f.writes, "excerpt")
	return nil
}

func newTestSyncer(f *fakeStore, window int) *Syncer {
	return NewSyncer(f, f, f, window, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TestRecomputeWritesBoth verifies the private collection is written before
// the public excerpt and both reflect the session window.
func TestRecomputeWritesBoth(t *testing.T) {
	f := newFakeStore()
	f.sessions = []models.Session{session("2024-03-01", entry("Squats", set(100, 5)))}

	c, err := newTestSyncer(f, 0).Recompute(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(c.Items))
	}
	if f.lastLimit != WindowSize {
		t.Errorf("limit = %d, want %d", f.lastLimit, WindowSize)
	}
	if got := f.writes; len(got) != 2 || got[0] != "prs" || got[1] != "excerpt" {
		t.Errorf("writes = %v, want [prs excerpt]", got)
	}
	if len(f.excerpts[7]) != 1 || f.excerpts[7][0].BestVolume != 500 {
		t.Errorf("excerpt = %+v", f.excerpts[7])
	}
}

// TestRecomputeFetchFailure verifies nothing is written when the session
// fetch fails, leaving earlier records intact.
func TestRecomputeFetchFailure(t *testing.T) {
	f := newFakeStore()
	prior := models.PRCollection{Items: []models.PRRecord{{Exercise: "Squats", BestVolume: 500}}}
	f.prs[7] = prior
	f.fetchErr = errors.New("connection refused")

	_, err := newTestSyncer(f, 0).Recompute(context.Background(), 7)
	if !errors.Is(err, f.fetchErr) {
		t.Fatalf("err = %v, want wrapped fetch error", err)
	}
	if len(f.writes) != 0 {
		t.Errorf("writes = %v, want none", f.writes)
	}
	if got := f.prs[7]; len(got.Items) != 1 || got.Items[0].Exercise != "Squats" {
		t.Errorf("prior records changed: %+v", got)
	}
}

// TestRecomputePRWriteFailure verifies the excerpt is not written when the
// private write fails.
func TestRecomputePRWriteFailure(t *testing.T) {
	f := newFakeStore()
	f.prErr = errors.New("disk full")

	_, err := newTestSyncer(f, 0).Recompute(context.Background(), 7)
	if !errors.Is(err, f.prErr) {
		t.Fatalf("err = %v, want wrapped write error", err)
	}
	if errors.Is(err, ErrExcerptNotSynced) {
		t.Error("private write failure reported as excerpt failure")
	}
	if _, ok := f.excerpts[7]; ok {
		t.Error("excerpt written after private write failed")
	}
}

// TestRecomputeExcerptFailure verifies a partial write is surfaced and can
// be repaired with SyncExcerpt.
func TestRecomputeExcerptFailure(t *testing.T) {
	f := newFakeStore()
	f.sessions = []models.Session{session("2024-03-01", entry("Squats", set(100, 5)))}
	f.excerptErr = errors.New("timeout")
	s := newTestSyncer(f, 0)

	_, err := s.Recompute(context.Background(), 7)
	if !errors.Is(err, ErrExcerptNotSynced) {
		t.Fatalf("err = %v, want ErrExcerptNotSynced", err)
	}
	if !errors.Is(err, f.excerptErr) {
		t.Errorf("err = %v, want cause preserved", err)
	}
	var ee *ExcerptError
	if !errors.As(err, &ee) || ee.UserID != 7 {
		t.Errorf("err = %v, want *ExcerptError for user 7", err)
	}
	if len(f.prs[7].Items) != 1 {
		t.Fatalf("private records not written")
	}

	f.excerptErr = nil
	if err := s.SyncExcerpt(context.Background(), 7); err != nil {
		t.Fatalf("SyncExcerpt: %v", err)
	}
	if len(f.excerpts[7]) != 1 {
		t.Errorf("excerpt = %+v, want 1 record", f.excerpts[7])
	}
}

// TestRecomputeWindow verifies a configured window bounds the fetch.
func TestRecomputeWindow(t *testing.T) {
	f := newFakeStore()
	f.sessions = []models.Session{
		session("2024-03-03", entry("Squats", set(100, 5))),
		session("2024-03-02", entry("Squats", set(200, 5))),
	}

	c, err := newTestSyncer(f, 1).Recompute(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Items[0].BestSetWeight != 100 {
		t.Errorf("best set = %v, want 100 (older session outside window)", c.Items[0].BestSetWeight)
	}
}

// TestRecomputeConcurrent verifies concurrent recomputes for the same and
// different users complete and release their locks.
func TestRecomputeConcurrent(t *testing.T) {
	f := newFakeStore()
	f.sessions = []models.Session{session("2024-03-01", entry("Squats", set(100, 5)))}
	s := newTestSyncer(f, 0)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(uid int) {
			defer wg.Done()
			if _, err := s.Recompute(context.Background(), uid); err != nil {
				t.Errorf("user %d: %v", uid, err)
			}
		}(i % 3)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.users) != 0 {
		t.Errorf("user locks leaked: %d", len(s.users))
	}
}
