// Package session keeps per-visitor state on the server, keyed by an opaque
// id carried in a cookie.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by a Store when no record exists for an id
var ErrSessionNotFound = errors.New("session not found")

// Session is the server-side record for one visitor
type Session struct {
	ID string `json:"-"`

	// Set only by a successful OAuth callback
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenExpiry  time.Time `json:"token_expiry,omitzero"`

	UserID        *int64 `json:"user_id,omitempty"`
	SpotifyUserID string `json:"spotify_user_id,omitempty"`
	DisplayName   string `json:"display_name,omitempty"`

	// Last submitted score; nil until one is submitted
	Score *int `json:"score,omitempty"`
}

// IsAuthorized reports whether the visitor completed the Spotify login
func (s *Session) IsAuthorized() bool {
	return s.AccessToken != ""
}

// ClearAuth removes the credentials and identity written at login
func (s *Session) ClearAuth() {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.TokenExpiry = time.Time{}
	s.UserID = nil
	s.DisplayName = ""
}

// Store persists session records
type Store interface {
	GetSession(ctx context.Context, id string) (*Session, error)
	SaveSession(ctx context.Context, sess *Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, id string) error
}
