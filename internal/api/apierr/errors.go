package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/leaderboard"
	"github.com/mcoot/trackquiz/internal/services/spotify"
)

// ErrInvalidMethod is returned for a request using an unsupported HTTP method
var ErrInvalidMethod = errors.New("invalid request method")

// ErrorResponse is the JSON body of every error response.
// StatusCode is set only for Spotify upstream failures.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code,omitempty"`
}

// httpError combines an HTTP status code with an ErrorResponse
type httpError struct {
	status int
	body   ErrorResponse
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.body.Error
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(he.body)
}

// Status returns the HTTP status an error is written with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var upstream *spotify.UpstreamError
	if errors.As(err, &upstream) {
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		return &httpError{status, ErrorResponse{Error: upstream.Message(), StatusCode: upstream.StatusCode}}
	}

	switch {
	case errors.Is(err, auth.ErrInvalidState):
		return &httpError{http.StatusBadRequest, ErrorResponse{Error: "Invalid state parameter or no code provided"}}
	case errors.Is(err, auth.ErrTokenExchangeFailed):
		return &httpError{http.StatusBadRequest, ErrorResponse{Error: "Failed to exchange token or Spotify denied the request"}}
	case errors.Is(err, auth.ErrProfileFetchFailed):
		return &httpError{http.StatusBadRequest, ErrorResponse{Error: "Failed to fetch user profile from Spotify"}}
	case errors.Is(err, auth.ErrAppAuthFailed):
		return &httpError{http.StatusInternalServerError, ErrorResponse{Error: "Unable to fetch playlist"}}
	case errors.Is(err, leaderboard.ErrMissingScore):
		return &httpError{http.StatusBadRequest, ErrorResponse{Error: "Score not provided"}}
	case errors.Is(err, ErrInvalidMethod):
		return &httpError{http.StatusBadRequest, ErrorResponse{Error: "Invalid request"}}
	default:
		return &httpError{http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, ErrorResponse{Error: message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"}}
}
