package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/trackquiz/internal/api/handler"
	"github.com/mcoot/trackquiz/internal/api/middleware"
	"github.com/mcoot/trackquiz/internal/api/response"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/services/quiz"
	"github.com/mcoot/trackquiz/internal/session"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	Sessions           *session.Manager
	QuizService        *quiz.Service
	LeaderboardService *leaderboard.Service
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	quizHandler := handler.NewQuizHandler(cfg.QuizService, cfg.Logger)
	scoreHandler := handler.NewScoreHandler(cfg.LeaderboardService, cfg.Sessions, cfg.Logger)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService, cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(session.Middleware(cfg.Sessions, cfg.Logger))

	api.HandleFunc("/quiz-data", quizHandler.Data).Methods(http.MethodGet)
	// Method is checked by the handler so other methods get a JSON 400
	api.HandleFunc("/submit-score", scoreHandler.Submit)
	api.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet)
	api.HandleFunc("/total-leaderboard", leaderboardHandler.Totals).Methods(http.MethodGet)

	// Health check endpoint
	api.HandleFunc("/v1/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, "ok")
}
