package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/trackquiz/internal/api/apierr"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/web/middleware"
)

// AuthHandler handles the Spotify login flow and logout
type AuthHandler struct {
	authService *auth.Service
	sessions    *session.Manager
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service, sessions *session.Manager, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Login redirects to the Spotify authorization page
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, err := h.authService.BuildAuthorizationURL(r.Context())
	if err != nil {
		serverError(w, r, h.logger, err)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the login started by Login. Failures are reported as
// JSON errors; on success the session is re-issued under a new id and the
// visitor is sent to the welcome page.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	login, err := h.authService.CompleteLogin(r.Context(), query.Get("code"), query.Get("state"))
	if err != nil {
		h.logger.Warn("spotify callback failed", "error", err)
		apierr.WriteError(w, err)
		return
	}

	sess := session.FromContext(r.Context())
	if err := h.sessions.Renew(r.Context(), sess); err != nil {
		serverError(w, r, h.logger, err)
		return
	}

	displayName := login.Profile.DisplayName
	if displayName == "" {
		displayName = login.User.DisplayName
	}

	sess.AccessToken = login.Token.AccessToken
	sess.RefreshToken = login.Token.RefreshToken
	sess.TokenExpiry = login.Token.Expiry
	sess.UserID = &login.User.ID
	sess.SpotifyUserID = login.Profile.ID
	sess.DisplayName = displayName

	if err := h.sessions.Save(r.Context(), w, sess); err != nil {
		serverError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user logged in", "user_id", login.User.ID, "spotify_user_id", login.Profile.ID)
	http.Redirect(w, r, "/welcome", http.StatusFound)
}

// Logout clears the session's credentials and the session itself
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.sessions.Destroy(r.Context(), w, sess); err != nil {
		serverError(w, r, h.logger, err)
		return
	}

	middleware.SetFlash(w, "success", "You have been logged out.")
	http.Redirect(w, r, "/", http.StatusFound)
}
