package web

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/web/handler"
	"github.com/mcoot/trackquiz/internal/web/middleware"
)

// RouterConfig holds configuration for the web router
type RouterConfig struct {
	Logger             *slog.Logger
	Sessions           *session.Manager
	AuthService        *auth.Service
	LeaderboardService *leaderboard.Service

	// StaticFS overrides the embedded static assets (optional)
	StaticFS fs.FS
}

// NewRouter creates a new web router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Apply global middleware to all routes
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	staticFS := cfg.StaticFS
	if staticFS == nil {
		staticFS = Static()
	}
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Create handlers
	pageHandler := handler.NewPageHandler(cfg.AuthService, cfg.LeaderboardService, cfg.Sessions, cfg.Logger)
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Sessions, cfg.Logger)

	// Everything but static files runs with the visitor's session
	pages := r.NewRoute().Subrouter()
	pages.Use(middleware.Flash())
	pages.Use(session.Middleware(cfg.Sessions, cfg.Logger))

	pages.HandleFunc("/", pageHandler.Index).Methods(http.MethodGet)
	pages.HandleFunc("/welcome", pageHandler.Welcome).Methods(http.MethodGet)
	pages.HandleFunc("/quiz", pageHandler.Quiz).Methods(http.MethodGet)
	pages.HandleFunc("/results", pageHandler.Results).Methods(http.MethodGet)
	pages.HandleFunc("/leaderboard", pageHandler.Leaderboard).Methods(http.MethodGet)
	pages.HandleFunc("/profile", pageHandler.Profile).Methods(http.MethodGet)

	// Auth routes
	pages.HandleFunc("/auth/spotify", authHandler.Login).Methods(http.MethodGet)
	pages.HandleFunc("/callback", authHandler.Callback).Methods(http.MethodGet)
	pages.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodGet)

	return r
}
