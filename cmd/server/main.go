package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackquiz/internal/api"
	"github.com/mcoot/trackquiz/internal/config"
	"github.com/mcoot/trackquiz/internal/factory"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/quiz"
	"github.com/mcoot/trackquiz/internal/session"
	redisstorage "github.com/mcoot/trackquiz/internal/storage/redis"
	sqlstore "github.com/mcoot/trackquiz/internal/storage/sql"
	"github.com/mcoot/trackquiz/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := factory.New(ctx, factoryConfig(cfg, logger))
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Sessions:           app.SessionManager,
		QuizService:        app.QuizService,
		LeaderboardService: app.LeaderboardService,
	})

	webRouter := web.NewRouter(web.RouterConfig{
		Logger:             logger,
		Sessions:           app.SessionManager,
		AuthService:        app.AuthService,
		LeaderboardService: app.LeaderboardService,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Port = cfg.Server.Port
	server := api.NewServer(newRootHandler(apiRouter, webRouter, app.Metrics.Handler()), serverConfig, logger)

	logger.Info("server starting",
		slog.String("addr", server.Addr()),
		slog.String("env", cfg.Server.Env),
		slog.String("redirect_url", cfg.RedirectURL()),
		slog.String("storage", cfg.Storage.Type),
		slog.String("session_store", cfg.Session.Store),
	)

	if err := server.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// newRootHandler combines the JSON API, the metrics endpoint and the pages
func newRootHandler(apiRouter, webRouter, metricsHandler http.Handler) http.Handler {
	r := mux.NewRouter()
	r.PathPrefix("/api/").Handler(apiRouter)
	r.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	r.PathPrefix("/").Handler(webRouter)
	return r
}

// factoryConfig maps the loaded configuration onto the application factory
func factoryConfig(cfg config.Config, logger *slog.Logger) factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.ClientID = cfg.Spotify.ClientID
	authCfg.ClientSecret = cfg.Spotify.ClientSecret
	authCfg.RedirectURL = cfg.RedirectURL()
	authCfg.Scopes = cfg.Spotify.Scopes

	quizCfg := quiz.DefaultConfig()
	quizCfg.FallbackPlaylistID = cfg.Spotify.FallbackPlaylistID

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secure = cfg.IsProduction()

	fc := factory.Config{
		Logger:       logger,
		StorageType:  cfg.Storage.Type,
		SessionStore: cfg.Session.Store,
		Auth:         authCfg,
		Quiz:         quizCfg,
		Session:      sessionCfg,
	}

	if cfg.Storage.Type == factory.StorageTypeSQL {
		dbCfg := sqlstore.DefaultConfig()
		dbCfg.Driver = cfg.Database.Driver
		dbCfg.URL = cfg.Database.URL
		fc.Database = &dbCfg
	}

	if cfg.Session.Store == factory.SessionStoreRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Redis.URL
		fc.Redis = &redisCfg
	}

	return fc
}
