package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/trackquiz/internal/metrics"
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/storage"
)

// TopN is the number of rows on each leaderboard
const TopN = 20

// ErrMissingScore is returned when a submission carries no usable score
var ErrMissingScore = errors.New("score not provided")

// GuestResolver resolves the shared guest identity
type GuestResolver interface {
	ResolveGuest(ctx context.Context) (*model.User, error)
}

// Service records scores and builds leaderboards
type Service struct {
	storage storage.Storage
	guests  GuestResolver
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new leaderboard service
func New(storage storage.Storage, guests GuestResolver, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{storage: storage, guests: guests, metrics: m, logger: logger}
}

// ActiveUser returns the user with userID, or the guest user when userID is nil
func (s *Service) ActiveUser(ctx context.Context, userID *int64) (*model.User, error) {
	if userID == nil {
		return s.guests.ResolveGuest(ctx)
	}
	user, err := s.storage.GetUser(ctx, *userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %d: %w", *userID, err)
	}
	return user, nil
}

// Submit records a score for the acting user
func (s *Service) Submit(ctx context.Context, userID *int64, score int) (*model.User, *model.LeaderboardEntry, error) {
	user, err := s.ActiveUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	entry := &model.LeaderboardEntry{UserID: user.ID, Score: score}
	if err := s.storage.CreateEntry(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("record score for user %d: %w", user.ID, err)
	}

	s.metrics.IncrementScoresSubmitted()
	s.logger.Info("score submitted",
		"user_id", user.ID,
		"entry_id", entry.ID,
		"score", score,
	)
	return user, entry, nil
}

// Top returns the highest individual scores
func (s *Service) Top(ctx context.Context) ([]model.ScoreRow, error) {
	return s.storage.TopScores(ctx, TopN)
}

// Totals returns users ranked by the sum of their scores
func (s *Service) Totals(ctx context.Context) ([]model.TotalRow, error) {
	return s.storage.TopTotals(ctx, TopN)
}

// Stats summarises one user's scores
func (s *Service) Stats(ctx context.Context, userID int64) (model.UserStats, error) {
	return s.storage.UserStats(ctx, userID)
}
