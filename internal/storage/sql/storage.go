// Package sqlstore implements user and leaderboard storage on SQLite or
// PostgreSQL through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/mcoot/trackquiz/internal/dependencies/clock"
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/storage"
)

// Storage is a relational implementation of storage.Storage.
// Queries are written with "?" placeholders and rebound for the driver.
type Storage struct {
	db    *sqlx.DB
	clock clock.Clock
}

// New creates a Storage over an open, migrated database
func New(db *sqlx.DB, clk clock.Clock) *Storage {
	return &Storage{db: db, clock: clk}
}

// Close closes the database connection pool
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

const userColumns = `id, username, display_name, password, created_at`

// User operations

func (s *Storage) GetOrCreateUser(ctx context.Context, u *model.User) (*model.User, bool, error) {
	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO users (username, display_name, password, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (username) DO NOTHING`),
		u.Username, u.DisplayName, u.Password, createdAt)
	if err != nil {
		return nil, false, fmt.Errorf("insert user %s: %w", u.Username, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert user %s: %w", u.Username, err)
	}

	user, err := s.GetUserByUsername(ctx, u.Username)
	if err != nil {
		return nil, false, err
	}
	return user, affected == 1, nil
}

func (s *Storage) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.GetContext(ctx, &user, s.db.Rebind(
		`SELECT `+userColumns+` FROM users WHERE username = ?`), username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username %s: %w", username, err)
	}
	return &user, nil
}

// Leaderboard operations

func (s *Storage) CreateEntry(ctx context.Context, entry *model.LeaderboardEntry) error {
	if _, err := s.GetUser(ctx, entry.UserID); err != nil {
		return err
	}

	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(
		`INSERT INTO leaderboard_entries (user_id, score, created_at)
		 VALUES (?, ?, ?)
		 RETURNING id`),
		entry.UserID, entry.Score, createdAt).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert leaderboard entry for user %d: %w", entry.UserID, err)
	}

	entry.ID = id
	entry.CreatedAt = createdAt
	return nil
}

func (s *Storage) TopScores(ctx context.Context, limit int) ([]model.ScoreRow, error) {
	rows := []model.ScoreRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT u.username, u.display_name, e.score
		 FROM leaderboard_entries e
		 JOIN users u ON u.id = e.user_id
		 ORDER BY e.score DESC, e.id ASC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select top scores: %w", err)
	}
	return rows, nil
}

func (s *Storage) TopTotals(ctx context.Context, limit int) ([]model.TotalRow, error) {
	rows := []model.TotalRow{}
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT u.username, u.display_name, SUM(e.score) AS total_score
		 FROM leaderboard_entries e
		 JOIN users u ON u.id = e.user_id
		 GROUP BY u.id, u.username, u.display_name
		 ORDER BY total_score DESC, u.id ASC
		 LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("select top totals: %w", err)
	}
	return rows, nil
}

func (s *Storage) UserStats(ctx context.Context, userID int64) (model.UserStats, error) {
	var stats model.UserStats
	err := s.db.GetContext(ctx, &stats, s.db.Rebind(
		`SELECT COALESCE(MAX(score), 0) AS highest_score,
		        COALESCE(SUM(score), 0) AS total_score,
		        COUNT(*) AS times_played
		 FROM leaderboard_entries
		 WHERE user_id = ?`), userID)
	if err != nil {
		return model.UserStats{}, fmt.Errorf("select stats for user %d: %w", userID, err)
	}
	return stats, nil
}
