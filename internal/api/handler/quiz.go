package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/trackquiz/internal/api/response"
	"github.com/mcoot/trackquiz/internal/services/quiz"
	"github.com/mcoot/trackquiz/internal/services/spotify"
	"github.com/mcoot/trackquiz/internal/session"
)

// QuizHandler serves the tracks a quiz is played with
type QuizHandler struct {
	quizService *quiz.Service
	logger      *slog.Logger
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *quiz.Service, logger *slog.Logger) *QuizHandler {
	return &QuizHandler{quizService: quizService, logger: logger}
}

// Data handles GET /api/quiz-data
func (h *QuizHandler) Data(w http.ResponseWriter, r *http.Request) {
	timeRange := r.URL.Query().Get("time_range")
	if timeRange == "" {
		timeRange = spotify.DefaultTimeRange
	}

	sess := session.FromContext(r.Context())
	tracks, err := h.quizService.Tracks(r.Context(), sess.AccessToken, timeRange)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.QuizDataResponse{TopTracks: tracks})
}
