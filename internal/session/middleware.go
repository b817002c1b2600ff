package session

import (
	"context"
	"log/slog"
	"net/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// WithSession returns a context carrying the session
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

// FromContext returns the request's session, or an empty unsaved session if
// the middleware did not run
func FromContext(ctx context.Context) *Session {
	if sess, ok := ctx.Value(sessionContextKey).(*Session); ok && sess != nil {
		return sess
	}
	return &Session{}
}

// Middleware loads the session for every request. A store failure is logged
// and the request continues with a fresh session.
func Middleware(m *Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := m.Load(r)
			if err != nil {
				logger.Error("failed to load session", "error", err, "path", r.URL.Path)
				sess = &Session{}
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}
