package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/claude/gymdirection/internal/models"
)

// ErrExcerptNotSynced reports that the private records were written but the
// public excerpt was not. SyncExcerpt retries the second write.
var ErrExcerptNotSynced = errors.New("public excerpt not synced")

// SessionSource returns a user's most recent sessions, most recent first.
type SessionSource interface {
	RecentSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
}

// PRStore persists a user's full record collection. Writes must merge,
// leaving unrelated stored fields untouched.
type PRStore interface {
	WritePRCollection(ctx context.Context, userID int, c models.PRCollection) error
	GetPRCollection(ctx context.Context, userID int) (models.PRCollection, error)
}

// ProfileStore overwrites the excerpt field of a user's public profile.
type ProfileStore interface {
	WritePublicExcerpt(ctx context.Context, userID int, top []models.PRRecord) error
}

// ExcerptError wraps a failed excerpt write that followed a successful
// private write.
type ExcerptError struct {
	UserID int
	Err    error
}

func (e *ExcerptError) Error() string {
	return fmt.Sprintf("user %d: %v: %v", e.UserID, ErrExcerptNotSynced, e.Err)
}

func (e *ExcerptError) Unwrap() []error {
	return []error{ErrExcerptNotSynced, e.Err}
}

// Syncer recomputes records after session history changes and writes them
// back: private collection first, then the public excerpt.
type Syncer struct {
	sessions SessionSource
	prs      PRStore
	profiles ProfileStore
	window   int
	log      *slog.Logger

	mu    sync.Mutex
	users map[int]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewSyncer creates a Syncer. A window of 0 or less means WindowSize.
func NewSyncer(sessions SessionSource, prs PRStore, profiles ProfileStore, window int, log *slog.Logger) *Syncer {
	if window <= 0 {
		window = WindowSize
	}
	return &Syncer{
		sessions: sessions,
		prs:      prs,
		profiles: profiles,
		window:   window,
		log:      log,
		users:    make(map[int]*userLock),
	}
}

// Recompute rebuilds a user's records from the session window.
//
// If the fetch fails nothing is written. If the excerpt write fails after
// the private write succeeded the returned error matches ErrExcerptNotSynced.
func (s *Syncer) Recompute(ctx context.Context, userID int) (models.PRCollection, error) {
	unlock := s.lock(userID)
	defer unlock()

	sessions, err := s.sessions.RecentSessions(ctx, userID, s.window)
	if err != nil {
		return models.PRCollection{}, fmt.Errorf("fetching recent sessions: %w", err)
	}

	c := Compute(sessions)

	if err := s.prs.WritePRCollection(ctx, userID, c); err != nil {
		return models.PRCollection{}, fmt.Errorf("writing records: %w", err)
	}

	if err := s.profiles.WritePublicExcerpt(ctx, userID, Excerpt(c)); err != nil {
		s.log.Error("excerpt write failed", "user_id", userID, "error", err)
		return c, &ExcerptError{UserID: userID, Err: err}
	}

	s.log.Debug("records synced", "user_id", userID, "sessions", len(sessions), "exercises", len(c.Items))
	return c, nil
}

// SyncExcerpt republishes the excerpt from the stored private collection.
func (s *Syncer) SyncExcerpt(ctx context.Context, userID int) error {
	unlock := s.lock(userID)
	defer unlock()

	c, err := s.prs.GetPRCollection(ctx, userID)
	if err != nil {
		return fmt.Errorf("reading records: %w", err)
	}
	if err := s.profiles.WritePublicExcerpt(ctx, userID, Excerpt(c)); err != nil {
		return &ExcerptError{UserID: userID, Err: err}
	}
	return nil
}

// lock serializes work for one user. Entries are dropped once unused.
func (s *Syncer) lock(userID int) func() {
	s.mu.Lock()
	l, ok := s.users[userID]
	if !ok {
		l = &userLock{}
		s.users[userID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.users, userID)
		}
		s.mu.Unlock()
	}
}
