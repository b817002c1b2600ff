package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/web/middleware"
	"github.com/mcoot/trackquiz/internal/web/templates/layout"
	"github.com/mcoot/trackquiz/internal/web/templates/pages"
)

// PageHandler renders the quiz pages
type PageHandler struct {
	authService        *auth.Service
	leaderboardService *leaderboard.Service
	sessions           *session.Manager
	logger             *slog.Logger
}

// NewPageHandler creates a new PageHandler
func NewPageHandler(
	authService *auth.Service,
	leaderboardService *leaderboard.Service,
	sessions *session.Manager,
	logger *slog.Logger,
) *PageHandler {
	return &PageHandler{
		authService:        authService,
		leaderboardService: leaderboardService,
		sessions:           sessions,
		logger:             logger,
	}
}

// Index renders the landing page
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	data := pages.IndexData{PageData: pageData(r, "Home")}
	h.render(w, r, pages.Index(data))
}

// Welcome renders the greeting. A visitor without a Spotify login is
// attached to the shared guest user.
func (h *PageHandler) Welcome(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	if !sess.IsAuthorized() {
		guest, err := h.authService.ResolveGuest(r.Context())
		if err != nil {
			h.serverError(w, r, err)
			return
		}
		sess.UserID = &guest.ID
		sess.DisplayName = guest.DisplayName
		if err := h.sessions.Save(r.Context(), w, sess); err != nil {
			h.serverError(w, r, err)
			return
		}
	}

	data := pages.WelcomeData{PageData: pageData(r, "Welcome")}
	h.render(w, r, pages.Welcome(data))
}

// Quiz renders the quiz page
func (h *PageHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	data := pages.QuizData{PageData: pageData(r, "Quiz")}
	h.render(w, r, pages.Quiz(data))
}

// Results renders the session's last score
func (h *PageHandler) Results(w http.ResponseWriter, r *http.Request) {
	score := 0
	if s := session.FromContext(r.Context()).Score; s != nil {
		score = *s
	}

	data := pages.ResultsData{PageData: pageData(r, "Results"), Score: score}
	h.render(w, r, pages.Results(data))
}

// Leaderboard renders both leaderboards
func (h *PageHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	top, err := h.leaderboardService.Top(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	totals, err := h.leaderboardService.Totals(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := pages.LeaderboardData{
		PageData: pageData(r, "Leaderboard"),
		Top:      top,
		Totals:   totals,
	}
	h.render(w, r, pages.Leaderboard(data))
}

// Profile renders the active user's stats: the session user after a Spotify
// login, the guest user otherwise. Redirects home if neither resolves.
func (h *PageHandler) Profile(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	user, displayName, err := h.profileUser(r.Context(), sess)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			h.logger.Warn("profile user not found", "error", err)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		h.serverError(w, r, err)
		return
	}

	stats, err := h.leaderboardService.Stats(r.Context(), user.ID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	data := pages.ProfileData{
		PageData:      pageData(r, "Profile"),
		ProfileName:   displayName,
		SpotifyUserID: sess.SpotifyUserID,
		Guest:         user.IsGuest(),
		Stats:         stats,
	}
	h.render(w, r, pages.Profile(data))
}

func (h *PageHandler) profileUser(ctx context.Context, sess *session.Session) (*model.User, string, error) {
	if !sess.IsAuthorized() {
		guest, err := h.authService.ResolveGuest(ctx)
		if err != nil {
			return nil, "", err
		}
		return guest, guest.DisplayName, nil
	}

	if sess.UserID == nil {
		return nil, "", model.ErrUserNotFound
	}
	user, err := h.leaderboardService.ActiveUser(ctx, sess.UserID)
	if err != nil {
		return nil, "", err
	}
	displayName := sess.DisplayName
	if displayName == "" {
		displayName = user.DisplayName
	}
	if displayName == "" {
		displayName = user.Username
	}
	return user, displayName, nil
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page templ.Component) {
	render(w, r, h.logger, page)
}

func (h *PageHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	serverError(w, r, h.logger, err)
}

// pageData builds the layout data from the request's session and flash. A
// Spotify user without a display name is shown by their Spotify id.
func pageData(r *http.Request, title string) layout.PageData {
	sess := session.FromContext(r.Context())
	displayName := sess.DisplayName
	if displayName == "" && sess.IsAuthorized() {
		displayName = sess.SpotifyUserID
	}
	return layout.PageData{
		Title:       title,
		DisplayName: displayName,
		LoggedIn:    sess.IsAuthorized(),
		Flash:       middleware.GetFlash(r.Context()),
	}
}

func render(w http.ResponseWriter, r *http.Request, logger *slog.Logger, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logger.Error("failed to render page", "error", err, "path", r.URL.Path)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func serverError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.Error("request failed", "error", err, "path", r.URL.Path)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
