package quiz

import (
	"context"
	"log/slog"

	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/services/spotify"
)

// DefaultFallbackPlaylistID is Spotify's Global Top 50 playlist
const DefaultFallbackPlaylistID = "37i9dQZEVXbMDoHDwVN2tF"

// TrackSource fetches tracks from the Web API
type TrackSource interface {
	FetchTopTracks(ctx context.Context, accessToken string, limit int, timeRange string) ([]model.Track, error)
	FetchPlaylistTracks(ctx context.Context, accessToken, playlistID string, limit int) ([]model.Track, error)
}

// AppTokenSource obtains an application access token
type AppTokenSource interface {
	GetAppAccessToken(ctx context.Context) (string, error)
}

// Config holds configuration for the quiz service
type Config struct {
	FallbackPlaylistID string
	TrackLimit         int
}

// DefaultConfig returns default quiz configuration
func DefaultConfig() Config {
	return Config{
		FallbackPlaylistID: DefaultFallbackPlaylistID,
		TrackLimit:         spotify.DefaultLimit,
	}
}

// Service picks the tracks a quiz is played with
type Service struct {
	tracks    TrackSource
	appTokens AppTokenSource
	cfg       Config
	logger    *slog.Logger
}

// New creates a new quiz service
func New(tracks TrackSource, appTokens AppTokenSource, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.FallbackPlaylistID == "" {
		cfg.FallbackPlaylistID = defaults.FallbackPlaylistID
	}
	if cfg.TrackLimit <= 0 {
		cfg.TrackLimit = defaults.TrackLimit
	}
	return &Service{tracks: tracks, appTokens: appTokens, cfg: cfg, logger: logger}
}

// Tracks returns the user's top tracks when accessToken is set. Otherwise it
// falls back to the configured public playlist using an application token;
// an application token failure is returned as auth.ErrAppAuthFailed.
func (s *Service) Tracks(ctx context.Context, accessToken, timeRange string) ([]model.Track, error) {
	if accessToken != "" {
		return s.tracks.FetchTopTracks(ctx, accessToken, s.cfg.TrackLimit, timeRange)
	}

	appToken, err := s.appTokens.GetAppAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("serving fallback playlist", "playlist_id", s.cfg.FallbackPlaylistID)
	return s.tracks.FetchPlaylistTracks(ctx, appToken, s.cfg.FallbackPlaylistID, s.cfg.TrackLimit)
}
