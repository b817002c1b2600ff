package spotify

import (
	"errors"
	"fmt"
)

// ErrUpstreamFetchFailed is wrapped by every UpstreamError
var ErrUpstreamFetchFailed = errors.New("spotify: upstream fetch failed")

// UpstreamError reports a non-200 response from the Web API
type UpstreamError struct {
	// Op names the call, e.g. "top_tracks"
	Op         string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("spotify: %s failed with status %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamFetchFailed
}

// Message is the client-facing description of the failure
func (e *UpstreamError) Message() string {
	switch e.Op {
	case OpTopTracks:
		return "Failed to fetch top tracks"
	case OpPlaylistTracks:
		return "Failed to fetch playlist tracks"
	case OpCurrentUser:
		return "Failed to fetch user profile"
	default:
		return "Failed to fetch data from Spotify"
	}
}
