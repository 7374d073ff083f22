package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/claude/gymdirection/internal/models"
	"github.com/claude/gymdirection/internal/records"
	"github.com/google/uuid"
)

// ErrNotVisible is returned when a profile exists but is not public.
var ErrNotVisible = errors.New("profile is not public")

// Store is the persistence the service needs.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)

	InsertSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s models.Session) error
	DeleteSession(ctx context.Context, id uuid.UUID, userID int) error
	GetSession(ctx context.Context, id uuid.UUID, userID int) (models.Session, error)
	RecentSessions(ctx context.Context, userID, limit int) ([]models.Session, error)
	SessionDates(ctx context.Context, userID int, start, end time.Time) ([]string, error)

	GetProgram(ctx context.Context, userID int) (models.Program, error)
	SaveProgram(ctx context.Context, userID int, p models.Program) error
	EnsureProgram(ctx context.Context, userID int, p models.Program) (bool, error)

	GetPRCollection(ctx context.Context, userID int) (models.PRCollection, error)

	EnsurePublicProfile(ctx context.Context, p models.PublicProfile) error
	GetPublicProfile(ctx context.Context, userID int) (models.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID int, public bool, displayName, bio string) error
}

// Recomputer rebuilds a user's records after their history changes.
type Recomputer interface {
	Recompute(ctx context.Context, userID int) (models.PRCollection, error)
	SyncExcerpt(ctx context.Context, userID int) error
}

// Service owns session mutations and keeps records in step with them.
// A mutation is complete only once records are resynchronized.
type Service struct {
	store  Store
	sync   Recomputer
	window int
	log    *slog.Logger
}

// NewService creates a Service. window bounds RecentSessions and should
// match the window records are computed over; values <= 0 use WindowSize.
func NewService(store Store, sync Recomputer, window int, log *slog.Logger) *Service {
	if window <= 0 {
		window = records.WindowSize
	}
	return &Service{store: store, sync: sync, window: window, log: log}
}

// ResolveUser maps a login to a user ID, seeding first-time users.
func (s *Service) ResolveUser(ctx context.Context, login, displayName string) (int, error) {
	id, err := s.store.GetOrCreateUser(ctx, login, displayName)
	if err != nil {
		return 0, fmt.Errorf("resolving user %s: %w", login, err)
	}
	if err := s.EnsureSeed(ctx, id, displayName); err != nil {
		return 0, fmt.Errorf("seeding user %d: %w", id, err)
	}
	return id, nil
}

// EnsureSeed gives a user the default program and a private profile if
// they have none yet.
func (s *Service) EnsureSeed(ctx context.Context, userID int, displayName string) error {
	if displayName == "" {
		displayName = "Athlete"
	}
	program := models.DefaultProgram()

	created, err := s.store.EnsureProgram(ctx, userID, program)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("seeded default program", "user_id", userID)
	}

	return s.store.EnsurePublicProfile(ctx, models.PublicProfile{
		UserID:         userID,
		DisplayName:    displayName,
		Bio:            "Training with Gym Direction.",
		Avatar:         "/profile.jpg",
		ProgramSummary: program.Days,
	})
}

// CreateSession validates and stores a session, then resyncs records.
// The returned session carries its assigned ID even when the resync fails.
func (s *Service) CreateSession(ctx context.Context, userID int, sess models.Session) (models.Session, error) {
	if err := Validate(sess); err != nil {
		return models.Session{}, err
	}
	sess.UserID = userID
	if err := s.store.InsertSession(ctx, &sess); err != nil {
		return models.Session{}, fmt.Errorf("creating session: %w", err)
	}
	return sess, s.resync(ctx, userID)
}

// UpdateSession replaces a stored session, then resyncs records.
func (s *Service) UpdateSession(ctx context.Context, userID int, sess models.Session) error {
	if err := Validate(sess); err != nil {
		return err
	}
	sess.UserID = userID
	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return fmt.Errorf("updating session %s: %w", sess.ID, err)
	}
	return s.resync(ctx, userID)
}

// DeleteSession removes a session, then resyncs records.
func (s *Service) DeleteSession(ctx context.Context, userID int, id uuid.UUID) error {
	if err := s.store.DeleteSession(ctx, id, userID); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return s.resync(ctx, userID)
}

// ImportSessions stores several sessions and resyncs once at the end.
// Invalid sessions are skipped and counted. Returns the number stored.
func (s *Service) ImportSessions(ctx context.Context, userID int, sessions []models.Session) (inserted, skipped int, err error) {
	for _, sess := range sessions {
		if err := Validate(sess); err != nil {
			s.log.Warn("skipping imported session", "user_id", userID, "date", sess.Date, "error", err)
			skipped++
			continue
		}
		sess.UserID = userID
		if err := s.store.InsertSession(ctx, &sess); err != nil {
			insertErr := fmt.Errorf("importing session %s: %w", sess.Date, err)
			if inserted == 0 {
				return 0, skipped, insertErr
			}
			// Sessions already stored still count as a history change.
			return inserted, skipped, errors.Join(insertErr, s.resync(ctx, userID))
		}
		inserted++
	}
	if inserted == 0 {
		return 0, skipped, nil
	}
	return inserted, skipped, s.resync(ctx, userID)
}

func (s *Service) resync(ctx context.Context, userID int) error {
	if _, err := s.sync.Recompute(ctx, userID); err != nil {
		return fmt.Errorf("syncing records: %w", err)
	}
	return nil
}

// Session returns one of the user's sessions.
func (s *Service) Session(ctx context.Context, userID int, id uuid.UUID) (models.Session, error) {
	return s.store.GetSession(ctx, id, userID)
}

// RecentSessions returns up to limit sessions, most recent first.
// A limit outside 1..WindowSize is clamped to WindowSize.
func (s *Service) RecentSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	if limit <= 0 || limit > s.window {
		limit = s.window
	}
	return s.store.RecentSessions(ctx, userID, limit)
}

// Calendar returns the dates in the given month on which sessions were logged.
func (s *Service) Calendar(ctx context.Context, userID int, month time.Time) ([]string, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.store.SessionDates(ctx, userID, start, start.AddDate(0, 1, 0))
}

// PRs returns the user's stored records.
func (s *Service) PRs(ctx context.Context, userID int) (models.PRCollection, error) {
	return s.store.GetPRCollection(ctx, userID)
}

// SyncExcerpt republishes the public excerpt from stored records.
func (s *Service) SyncExcerpt(ctx context.Context, userID int) error {
	return s.sync.SyncExcerpt(ctx, userID)
}

// Program returns the user's program, falling back to the default.
func (s *Service) Program(ctx context.Context, userID int) (models.Program, error) {
	p, err := s.store.GetProgram(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return models.DefaultProgram(), nil
	}
	return p, err
}

// SaveProgram validates and stores the user's program.
func (s *Service) SaveProgram(ctx context.Context, userID int, p models.Program) error {
	if err := ValidateProgram(p); err != nil {
		return err
	}
	return s.store.SaveProgram(ctx, userID, p)
}

// Profile returns the user's own profile regardless of visibility.
func (s *Service) Profile(ctx context.Context, userID int) (models.PublicProfile, error) {
	return s.store.GetPublicProfile(ctx, userID)
}

// UpdateProfile sets visibility and the editable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID int, public bool, displayName, bio string) error {
	return s.store.UpdateProfile(ctx, userID, public, displayName, bio)
}

// PublicProfile returns a profile for an unauthenticated reader. Profiles
// that are not public yield ErrNotVisible.
func (s *Service) PublicProfile(ctx context.Context, userID int) (models.PublicProfile, error) {
	p, err := s.store.GetPublicProfile(ctx, userID)
	if err != nil {
		return models.PublicProfile{}, err
	}
	if !p.Public {
		return models.PublicProfile{}, ErrNotVisible
	}
	return p, nil
}
