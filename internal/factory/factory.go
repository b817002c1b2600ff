package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/trackquiz/internal/dependencies/clock"
	"github.com/mcoot/trackquiz/internal/dependencies/random"
	"github.com/mcoot/trackquiz/internal/metrics"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/services/quiz"
	"github.com/mcoot/trackquiz/internal/services/spotify"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/storage"
	"github.com/mcoot/trackquiz/internal/storage/memory"
	redisstorage "github.com/mcoot/trackquiz/internal/storage/redis"
	sqlstore "github.com/mcoot/trackquiz/internal/storage/sql"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeSQL    = "sql"
)

// Session store constants
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage  storage.Storage
	States   storage.StateStore
	Sessions session.Store

	// External dependencies
	Clock   clock.Clock
	Random  random.Random
	Metrics *metrics.Metrics

	// Services
	SpotifyClient      *spotify.Client
	AuthService        *auth.Service
	QuizService        *quiz.Service
	LeaderboardService *leaderboard.Service
	SessionManager     *session.Manager

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger

	// StorageType selects the user and leaderboard backend ("memory" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// Database holds SQL connection settings (required if StorageType is "sql")
	Database *sqlstore.Config

	// SessionStore selects where sessions and OAuth states live ("memory" or "redis")
	// If empty, defaults to "memory"
	SessionStore string
	// Redis holds Redis connection settings (required if SessionStore is "redis")
	Redis *redisstorage.Config

	Auth    auth.Config
	Spotify spotify.Config
	Quiz    quiz.Config
	Session session.Config

	// Metrics is the registry services record to (optional)
	Metrics *metrics.Metrics
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger()
	}

	clk := clock.New()
	rnd := random.New()

	var (
		store    storage.Storage
		states   storage.StateStore
		sessions session.Store
		closers  []io.Closer
		mem      *memory.Storage
	)
	memoryStore := func() *memory.Storage {
		if mem == nil {
			mem = memory.New(clk)
		}
		return mem
	}
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	switch cfg.StorageType {
	case "", StorageTypeMemory:
		store = memoryStore()
	case StorageTypeSQL:
		if cfg.Database == nil {
			return nil, errors.New("Database config required when StorageType is sql")
		}
		db, err := sqlstore.Open(ctx, *cfg.Database)
		if err != nil {
			return nil, err
		}
		sqlStore := sqlstore.New(db, clk)
		closers = append(closers, sqlStore)
		store = sqlStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory' or 'sql'", cfg.StorageType)
	}

	switch cfg.SessionStore {
	case "", SessionStoreMemory:
		states = memoryStore()
		sessions = memoryStore()
	case SessionStoreRedis:
		if cfg.Redis == nil {
			closeAll()
			return nil, errors.New("Redis config required when SessionStore is redis")
		}
		redisStore, err := redisstorage.New(*cfg.Redis)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, redisStore)
		states = redisStore
		sessions = redisStore
	default:
		closeAll()
		return nil, fmt.Errorf("invalid SessionStore %q: must be 'memory' or 'redis'", cfg.SessionStore)
	}

	app := newWithDependencies(store, states, sessions, clk, rnd, cfg, logger)
	app.closers = closers
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	states storage.StateStore,
	sessions session.Store,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	m := cfg.Metrics
	if m == nil {
		m = metrics.New()
	}

	spotifyCfg := cfg.Spotify
	if spotifyCfg.BaseURL == "" {
		spotifyCfg = spotify.DefaultConfig()
	}
	authCfg := cfg.Auth
	if authCfg.AuthURL == "" || authCfg.TokenURL == "" {
		defaults := auth.DefaultConfig()
		authCfg.AuthURL = defaults.AuthURL
		authCfg.TokenURL = defaults.TokenURL
	}

	spotifyClient := spotify.New(spotifyCfg, m, logger.With("component", "spotify"))
	authService := auth.New(authCfg, states, store, spotifyClient, rnd, m, logger.With("component", "auth"))
	quizService := quiz.New(spotifyClient, authService, cfg.Quiz, logger.With("component", "quiz"))
	leaderboardService := leaderboard.New(store, authService, m, logger.With("component", "leaderboard"))
	sessionManager := session.NewManager(sessions, cfg.Session, logger.With("component", "session"))

	return &App{
		Storage:            store,
		States:             states,
		Sessions:           sessions,
		Clock:              clk,
		Random:             rnd,
		Metrics:            m,
		SpotifyClient:      spotifyClient,
		AuthService:        authService,
		QuizService:        quizService,
		LeaderboardService: leaderboardService,
		SessionManager:     sessionManager,
	}
}

// Close releases connections held by the storage backends
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func nopLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
