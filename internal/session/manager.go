package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	// CookieName is the cookie carrying the session id
	CookieName = "session"

	// DefaultTTL matches a two week browser session
	DefaultTTL = 14 * 24 * time.Hour
)

// Config holds session cookie settings
type Config struct {
	TTL time.Duration

	// Secure marks the cookie HTTPS-only
	Secure bool
}

// DefaultConfig returns the default session settings
func DefaultConfig() Config {
	return Config{TTL: DefaultTTL}
}

// Manager moves sessions between the cookie and the Store
type Manager struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

// NewManager creates a new session manager
func NewManager(store Store, cfg Config, logger *slog.Logger) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	return &Manager{store: store, cfg: cfg, logger: logger}
}

// Load returns the session referenced by the request cookie. A request
// without a cookie, or whose record has gone, gets a fresh unsaved session.
func (m *Manager) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return &Session{}, nil
	}

	sess, err := m.store.GetSession(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return &Session{}, nil
		}
		return nil, err
	}
	return sess, nil
}

// Save persists the session, assigning an id on first save, and refreshes
// the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if err := m.store.SaveSession(ctx, sess, m.cfg.TTL); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Renew drops the session's stored record and id so the next Save issues a
// new id. Used when a visitor logs in.
func (m *Manager) Renew(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return nil
	}
	if err := m.store.DeleteSession(ctx, sess.ID); err != nil {
		return err
	}
	sess.ID = ""
	return nil
}

// Destroy clears the session's credentials, deletes its record and expires
// the cookie. The session value is reset so it can be reused as a fresh one.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	sess.ClearAuth()
	if sess.ID != "" {
		if err := m.store.DeleteSession(ctx, sess.ID); err != nil {
			return err
		}
	}
	*sess = Session{}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
