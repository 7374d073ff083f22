// Package memory is a process-local store with the same behavior as the
// PostgreSQL store. It backs the -memory development mode and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/claude/gymdirection/internal/models"
	"github.com/claude/gymdirection/internal/storage"
	"github.com/google/uuid"
)

// Store holds all data in maps guarded by one mutex.
type Store struct {
	mu sync.Mutex

	now func() time.Time

	users    map[string]models.User
	nextUser int
	sessions map[uuid.UUID]models.Session
	programs map[int]models.Program
	prs      map[int]models.PRCollection
	profiles map[int]models.PublicProfile
	imports  []storage.ImportLog
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:      time.Now,
		users:    make(map[string]models.User),
		nextUser: 1,
		sessions: make(map[uuid.UUID]models.Session),
		programs: make(map[int]models.Program),
		prs:      make(map[int]models.PRCollection),
		profiles: make(map[int]models.PublicProfile),
	}
}

// WithClock replaces the time source. Timestamps must be strictly
// increasing for same-date session ordering to be deterministic.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) GetOrCreateUser(_ context.Context, login, displayName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[login]
	if !ok {
		u = models.User{ID: s.nextUser, Login: login}
		s.nextUser++
	}
	if displayName != "" {
		u.DisplayName = displayName
	}
	s.users[login] = u
	return u.ID, nil
}

func (s *Store) GetUser(_ context.Context, userID int) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == userID {
			return u, nil
		}
	}
	return models.User{}, models.ErrNotFound
}

func (s *Store) InsertSession(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = uuid.New()
	sess.CreatedAt = s.now()
	s.sessions[sess.ID] = cloneSession(*sess)
	return nil
}

func (s *Store) UpdateSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[sess.ID]
	if !ok || cur.UserID != sess.UserID {
		return models.ErrNotFound
	}
	sess.CreatedAt = cur.CreatedAt
	s.sessions[sess.ID] = cloneSession(sess)
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id uuid.UUID, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sessions[id]
	if !ok || cur.UserID != userID {
		return models.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID, userID int) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok || sess.UserID != userID {
		return models.Session{}, models.ErrNotFound
	}
	return cloneSession(sess), nil
}

// RecentSessions orders like the PostgreSQL store: date, then logging
// time, newest first.
func (s *Store) RecentSessions(_ context.Context, userID, limit int) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Session
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			out = append(out, cloneSession(sess))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SessionDates(_ context.Context, userID int, start, end time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	from, to := start.Format(models.DateLayout), end.Format(models.DateLayout)
	seen := make(map[string]bool)
	var dates []string
	for _, sess := range s.sessions {
		if sess.UserID != userID || sess.Date < from || sess.Date >= to || seen[sess.Date] {
			continue
		}
		seen[sess.Date] = true
		dates = append(dates, sess.Date)
	}
	sort.Strings(dates)
	return dates, nil
}

func (s *Store) GetProgram(_ context.Context, userID int) (models.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[userID]
	if !ok {
		return models.Program{}, models.ErrNotFound
	}
	p.Days = cloneDays(p.Days)
	return p, nil
}

func (s *Store) SaveProgram(_ context.Context, userID int, p models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = s.now()
	p.Days = cloneDays(p.Days)
	s.programs[userID] = p
	if prof, ok := s.profiles[userID]; ok {
		prof.ProgramSummary = cloneDays(p.Days)
		prof.UpdatedAt = p.UpdatedAt
		s.profiles[userID] = prof
	}
	return nil
}

func (s *Store) EnsureProgram(_ context.Context, userID int, p models.Program) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.programs[userID]; ok {
		return false, nil
	}
	p.UpdatedAt = s.now()
	p.Days = cloneDays(p.Days)
	s.programs[userID] = p
	return true, nil
}

func (s *Store) WritePRCollection(_ context.Context, userID int, c models.PRCollection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = append([]models.PRRecord{}, c.Items...)
	c.UpdatedAt = s.now()
	s.prs[userID] = c
	return nil
}

func (s *Store) GetPRCollection(_ context.Context, userID int) (models.PRCollection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.prs[userID]
	if !ok {
		return models.PRCollection{Items: []models.PRRecord{}}, nil
	}
	c.Items = append([]models.PRRecord{}, c.Items...)
	return c, nil
}

func (s *Store) EnsurePublicProfile(_ context.Context, p models.PublicProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.UserID]; ok {
		return nil
	}
	p.Public = false
	p.TopPRs = []models.PRRecord{}
	p.ProgramSummary = cloneDays(p.ProgramSummary)
	p.UpdatedAt = s.now()
	s.profiles[p.UserID] = p
	return nil
}

func (s *Store) GetPublicProfile(_ context.Context, userID int) (models.PublicProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.PublicProfile{}, models.ErrNotFound
	}
	p.TopPRs = append([]models.PRRecord{}, p.TopPRs...)
	p.ProgramSummary = cloneDays(p.ProgramSummary)
	return p, nil
}

func (s *Store) WritePublicExcerpt(_ context.Context, userID int, top []models.PRRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.ErrNotFound
	}
	p.TopPRs = append([]models.PRRecord{}, top...)
	p.UpdatedAt = s.now()
	s.profiles[userID] = p
	return nil
}

func (s *Store) UpdateProfile(_ context.Context, userID int, public bool, displayName, bio string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return models.ErrNotFound
	}
	p.Public, p.DisplayName, p.Bio = public, displayName, bio
	p.UpdatedAt = s.now()
	s.profiles[userID] = p
	return nil
}

func (s *Store) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = int64(len(s.imports) + 1)
	l.CreatedAt = s.now()
	s.imports = append(s.imports, l)
	return l.ID, nil
}

func (s *Store) QueryImportLogs(_ context.Context, userID, limit int) ([]storage.ImportLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []storage.ImportLog
	for i := len(s.imports) - 1; i >= 0 && len(out) < limit; i-- {
		if s.imports[i].UserID == userID {
			out = append(out, s.imports[i])
		}
	}
	return out, nil
}

// GetDataStats mirrors the PostgreSQL aggregate over all of a user's sessions.
func (s *Store) GetDataStats(_ context.Context, userID int) (*storage.DataStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &storage.DataStats{SessionsByTitle: []storage.ProgramStat{}}
	names := make(map[string]bool)
	titles := make(map[string]int64)
	for _, sess := range s.sessions {
		if sess.UserID != userID {
			continue
		}
		stats.TotalSessions++
		d := sess.Date
		if stats.EarliestSession == nil || d < *stats.EarliestSession {
			stats.EarliestSession = &d
		}
		if stats.LatestSession == nil || d > *stats.LatestSession {
			stats.LatestSession = &d
		}
		titles[sess.ProgramTitle]++
		for _, ex := range sess.Exercises {
			names[ex.Name] = true
			stats.TotalSets += int64(len(ex.Sets))
		}
	}
	stats.TotalExercises = int64(len(names))
	for title, n := range titles {
		stats.SessionsByTitle = append(stats.SessionsByTitle, storage.ProgramStat{Title: title, Count: n})
	}
	sort.Slice(stats.SessionsByTitle, func(i, j int) bool {
		a, b := stats.SessionsByTitle[i], stats.SessionsByTitle[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Title < b.Title
	})
	return stats, nil
}

func cloneSession(s models.Session) models.Session {
	exercises := make([]models.ExerciseEntry, len(s.Exercises))
	for i, ex := range s.Exercises {
		exercises[i] = models.ExerciseEntry{Name: ex.Name, Sets: append([]models.TrainingSet(nil), ex.Sets...)}
	}
	s.Exercises = exercises
	return s
}

func cloneDays(days []models.ProgramDay) []models.ProgramDay {
	if days == nil {
		return nil
	}
	out := make([]models.ProgramDay, len(days))
	for i, d := range days {
		d.Exercises = append([]models.ProgramExercise(nil), d.Exercises...)
		out[i] = d
	}
	return out
}
