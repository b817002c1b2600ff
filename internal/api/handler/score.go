package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/trackquiz/internal/api/apierr"
	"github.com/mcoot/trackquiz/internal/api/request"
	"github.com/mcoot/trackquiz/internal/api/response"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/session"
)

// maxScoreBodyBytes caps the submit body; a score payload is a few bytes
const maxScoreBodyBytes = 4 << 10

// ScoreHandler records quiz results
type ScoreHandler struct {
	leaderboardService *leaderboard.Service
	sessions           *session.Manager
	logger             *slog.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(leaderboardService *leaderboard.Service, sessions *session.Manager, logger *slog.Logger) *ScoreHandler {
	return &ScoreHandler{leaderboardService: leaderboardService, sessions: sessions, logger: logger}
}

// Submit handles POST /api/submit-score. The entry is not rolled back if
// the session cannot be saved afterwards.
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.logger.Warn("invalid request method", "method", r.Method)
		apierr.WriteError(w, apierr.ErrInvalidMethod)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxScoreBodyBytes)
	var req request.SubmitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("Invalid request body"))
		return
	}

	score, ok := req.ScoreValue()
	if !ok {
		h.logger.Warn("score not found in request body")
		apierr.WriteError(w, leaderboard.ErrMissingScore)
		return
	}

	sess := session.FromContext(r.Context())
	if _, _, err := h.leaderboardService.Submit(r.Context(), sess.UserID, score); err != nil {
		writeError(w, h.logger, err)
		return
	}

	sess.Score = &score
	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.OK(w, "success")
}
