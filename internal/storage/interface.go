package storage

import (
	"context"
	"time"

	"github.com/mcoot/trackquiz/internal/model"
)

// Storage defines the interface for users and leaderboard persistence
type Storage interface {
	// User operations

	// GetOrCreateUser returns the user with u.Username, inserting u when no
	// such user exists. The bool reports whether a user was created.
	GetOrCreateUser(ctx context.Context, u *model.User) (*model.User, bool, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// Leaderboard operations

	// CreateEntry records a score. Returns model.ErrUserNotFound if the user does not exist.
	CreateEntry(ctx context.Context, entry *model.LeaderboardEntry) error
	TopScores(ctx context.Context, limit int) ([]model.ScoreRow, error)
	TopTotals(ctx context.Context, limit int) ([]model.TotalRow, error)
	UserStats(ctx context.Context, userID int64) (model.UserStats, error)
}

// StateStore holds short-lived OAuth state tokens
type StateStore interface {
	SaveState(ctx context.Context, state string, ttl time.Duration) error

	// ConsumeState atomically checks for and deletes a state token. It
	// returns false when the token is unknown, expired or already consumed.
	ConsumeState(ctx context.Context, state string) (bool, error)
}
