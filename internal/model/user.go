package model

import "time"

// GuestUsername is the username of the shared fallback identity used when a
// visitor has not authorized with Spotify.
const GuestUsername = "Guest"

// User is a quiz participant. Username is the Spotify user id, or GuestUsername.
type User struct {
	ID          int64     `db:"id" json:"id"`
	Username    string    `db:"username" json:"username"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Password    string    `db:"password" json:"-"` // always an unusable marker
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// IsGuest reports whether the user is the shared guest identity
func (u *User) IsGuest() bool {
	return u.Username == GuestUsername
}

// Profile is the subset of the Spotify current-user profile we keep
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}
