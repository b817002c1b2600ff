package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/mcoot/trackquiz/internal/dependencies/clock"
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/storage"
)

// sweepInterval bounds how often writes scan for expired states and sessions
const sweepInterval = time.Minute

// Storage is an in-memory implementation of the storage interfaces.
// Expiring records are checked against the injected clock on read and
// removed by a sweep that runs on writes at most once per sweepInterval.
type Storage struct {
	mu    sync.RWMutex
	clock clock.Clock

	users         map[int64]*model.User
	usernameIndex map[string]int64
	entries       []*model.LeaderboardEntry
	nextUserID    int64
	nextEntryID   int64

	states    map[string]time.Time
	sessions  map[string]sessionRecord
	nextSweep time.Time
}

type sessionRecord struct {
	session   session.Session
	expiresAt time.Time
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		clock:         clk,
		users:         make(map[int64]*model.User),
		usernameIndex: make(map[string]int64),
		states:        make(map[string]time.Time),
		sessions:      make(map[string]sessionRecord),
	}
}

// Ensure Storage implements the interfaces
var (
	_ storage.Storage    = (*Storage)(nil)
	_ storage.StateStore = (*Storage)(nil)
	_ session.Store      = (*Storage)(nil)
)

// User operations

func (s *Storage) GetOrCreateUser(ctx context.Context, u *model.User) (*model.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.usernameIndex[u.Username]; ok {
		existing := *s.users[id]
		return &existing, false, nil
	}

	s.nextUserID++
	created := *u
	created.ID = s.nextUserID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = s.clock.Now()
	}
	s.users[created.ID] = &created
	s.usernameIndex[created.Username] = created.ID

	result := created
	return &result, true, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	result := *u
	return &result, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usernameIndex[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	result := *s.users[id]
	return &result, nil
}

// Leaderboard operations

func (s *Storage) CreateEntry(ctx context.Context, entry *model.LeaderboardEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[entry.UserID]; !ok {
		return model.ErrUserNotFound
	}

	s.nextEntryID++
	entry.ID = s.nextEntryID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.clock.Now()
	}
	stored := *entry
	s.entries = append(s.entries, &stored)
	return nil
}

func (s *Storage) TopScores(ctx context.Context, limit int) ([]model.ScoreRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sorted := slices.Clone(s.entries)
	slices.SortStableFunc(sorted, func(a, b *model.LeaderboardEntry) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	rows := make([]model.ScoreRow, 0, min(limit, len(sorted)))
	for _, e := range sorted {
		if len(rows) == limit {
			break
		}
		u := s.users[e.UserID]
		rows = append(rows, model.ScoreRow{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Score:       e.Score,
		})
	}
	return rows, nil
}

func (s *Storage) TopTotals(ctx context.Context, limit int) ([]model.TotalRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[int64]int)
	for _, e := range s.entries {
		totals[e.UserID] += e.Score
	}

	userIDs := make([]int64, 0, len(totals))
	for id := range totals {
		userIDs = append(userIDs, id)
	}
	slices.SortFunc(userIDs, func(a, b int64) int {
		if c := cmp.Compare(totals[b], totals[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	rows := make([]model.TotalRow, 0, min(limit, len(userIDs)))
	for _, id := range userIDs {
		if len(rows) == limit {
			break
		}
		u := s.users[id]
		rows = append(rows, model.TotalRow{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			TotalScore:  totals[id],
		})
	}
	return rows, nil
}

func (s *Storage) UserStats(ctx context.Context, userID int64) (model.UserStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.UserStats
	for _, e := range s.entries {
		if e.UserID != userID {
			continue
		}
		if stats.TimesPlayed == 0 || e.Score > stats.HighestScore {
			stats.HighestScore = e.Score
		}
		stats.TotalScore += e.Score
		stats.TimesPlayed++
	}
	return stats, nil
}

// State operations

func (s *Storage) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.sweepExpired(now)
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *Storage) ConsumeState(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return s.clock.Now().Before(expiresAt), nil
}

// Session operations

func (s *Storage) GetSession(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok || !s.clock.Now().Before(rec.expiresAt) {
		return nil, session.ErrSessionNotFound
	}
	sess := cloneSession(&rec.session)
	sess.ID = id
	return sess, nil
}

func (s *Storage) SaveSession(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	s.sweepExpired(now)
	s.sessions[sess.ID] = sessionRecord{
		session:   *cloneSession(sess),
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (s *Storage) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// sweepExpired drops expired states and sessions. Callers hold the write lock.
func (s *Storage) sweepExpired(now time.Time) {
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepInterval)

	for state, expiresAt := range s.states {
		if !now.Before(expiresAt) {
			delete(s.states, state)
		}
	}
	for id, rec := range s.sessions {
		if !now.Before(rec.expiresAt) {
			delete(s.sessions, id)
		}
	}
}

func cloneSession(sess *session.Session) *session.Session {
	c := *sess
	if sess.UserID != nil {
		id := *sess.UserID
		c.UserID = &id
	}
	if sess.Score != nil {
		score := *sess.Score
		c.Score = &score
	}
	return &c
}

// EntryCount returns the number of recorded leaderboard entries
func (s *Storage) EntryCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// SessionCount returns the number of live session records
func (s *Storage) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.clock.Now()
	count := 0
	for _, rec := range s.sessions {
		if now.Before(rec.expiresAt) {
			count++
		}
	}
	return count
}
