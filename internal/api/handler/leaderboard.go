package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/trackquiz/internal/api/response"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
)

// LeaderboardHandler serves the leaderboards
type LeaderboardHandler struct {
	leaderboardService *leaderboard.Service
	logger             *slog.Logger
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(leaderboardService *leaderboard.Service, logger *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: leaderboardService, logger: logger}
}

// Top handles GET /api/leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboardService.Top(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LeaderboardResponse{Leaderboard: rows})
}

// Totals handles GET /api/total-leaderboard
func (h *LeaderboardHandler) Totals(w http.ResponseWriter, r *http.Request) {
	rows, err := h.leaderboardService.Totals(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	response.JSON(w, http.StatusOK, response.TotalLeaderboardResponse{TotalLeaderboard: rows})
}
