package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// Tokens issued by FakeSpotify
const (
	FakeUserAccessToken = "user-access-token"
	FakeRefreshToken    = "user-refresh-token"
	FakeAppAccessToken  = "app-access-token"
)

// FakeTrack describes a track served by FakeSpotify. An empty PreviewURL is
// served as null.
type FakeTrack struct {
	Name       string
	Artists    []string
	PreviewURL string
}

// FakeSpotify is an httptest server standing in for both the Spotify
// accounts service and the Web API. Status fields default to 200.
type FakeSpotify struct {
	Server *httptest.Server

	mu sync.Mutex

	UserID          string
	UserDisplayName string
	TopTracks       []FakeTrack
	PlaylistTracks  []FakeTrack

	TokenStatus             int
	ClientCredentialsStatus int
	ProfileStatus           int
	TopTracksStatus         int
	PlaylistStatus          int

	hits           map[string]int
	lastAuth       map[string]string
	lastTimeRange  string
	lastPlaylistID string
	lastLimit      string
	lastForm       map[string]string
}

// NewFakeSpotify starts a FakeSpotify that is closed when the test ends
func NewFakeSpotify(t testing.TB) *FakeSpotify {
	t.Helper()

	f := &FakeSpotify{
		UserID:          "spotify-user-1",
		UserDisplayName: "Alice",
		hits:            make(map[string]int),
		lastAuth:        make(map[string]string),
		lastForm:        make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", f.handleToken)
	mux.HandleFunc("GET /v1/me", f.handleMe)
	mux.HandleFunc("GET /v1/me/top/tracks", f.handleTopTracks)
	mux.HandleFunc("GET /v1/playlists/{id}/tracks", f.handlePlaylistTracks)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server root
func (f *FakeSpotify) URL() string { return f.Server.URL }

// AuthURL returns the authorize endpoint
func (f *FakeSpotify) AuthURL() string { return f.Server.URL + "/authorize" }

// TokenURL returns the token endpoint
func (f *FakeSpotify) TokenURL() string { return f.Server.URL + "/api/token" }

// APIURL returns the Web API root
func (f *FakeSpotify) APIURL() string { return f.Server.URL + "/v1" }

// Hits returns how many times an endpoint was called. Keys are
// "token:<grant_type>", "me", "top_tracks" and "playlist_tracks".
func (f *FakeSpotify) Hits(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[key]
}

// LastAuthorization returns the Authorization header of the last call to key
func (f *FakeSpotify) LastAuthorization(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth[key]
}

// LastTimeRange returns the time_range of the last top tracks call
func (f *FakeSpotify) LastTimeRange() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastTimeRange
}

// LastPlaylistID returns the id of the last playlist fetched
func (f *FakeSpotify) LastPlaylistID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPlaylistID
}

// LastLimit returns the limit of the last track listing call
func (f *FakeSpotify) LastLimit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLimit
}

// LastTokenForm returns a form field from the last token request
func (f *FakeSpotify) LastTokenForm(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastForm[field]
}

// Set runs fn with the fake locked so fields can be changed mid-test
func (f *FakeSpotify) Set(fn func(f *FakeSpotify)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *FakeSpotify) record(key string, r *http.Request) {
	f.hits[key]++
	f.lastAuth[key] = r.Header.Get("Authorization")
}

func (f *FakeSpotify) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	grant := r.PostForm.Get("grant_type")
	f.record("token:"+grant, r)
	f.lastForm = make(map[string]string)
	for k := range r.PostForm {
		f.lastForm[k] = r.PostForm.Get(k)
	}

	switch grant {
	case "authorization_code":
		if status := statusOr200(f.TokenStatus); status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "invalid_grant", "error_description": "Invalid authorization code"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token":  FakeUserAccessToken,
			"token_type":    "Bearer",
			"refresh_token": FakeRefreshToken,
			"expires_in":    3600,
			"scope":         r.PostForm.Get("scope"),
		})
	case "client_credentials":
		if status := statusOr200(f.ClientCredentialsStatus); status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "invalid_client"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": FakeAppAccessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
	}
}

func (f *FakeSpotify) handleMe(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("me", r)

	if status := statusOr200(f.ProfileStatus); status != http.StatusOK {
		writeJSON(w, status, apiError(status))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":           f.UserID,
		"display_name": f.UserDisplayName,
	})
}

func (f *FakeSpotify) handleTopTracks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("top_tracks", r)
	f.lastTimeRange = r.URL.Query().Get("time_range")
	f.lastLimit = r.URL.Query().Get("limit")

	if status := statusOr200(f.TopTracksStatus); status != http.StatusOK {
		writeJSON(w, status, apiError(status))
		return
	}

	items := make([]any, 0, len(f.TopTracks))
	for _, t := range f.TopTracks {
		items = append(items, trackJSON(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (f *FakeSpotify) handlePlaylistTracks(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("playlist_tracks", r)
	f.lastPlaylistID = r.PathValue("id")
	f.lastLimit = r.URL.Query().Get("limit")

	if status := statusOr200(f.PlaylistStatus); status != http.StatusOK {
		writeJSON(w, status, apiError(status))
		return
	}

	items := make([]any, 0, len(f.PlaylistTracks)+1)
	for _, t := range f.PlaylistTracks {
		items = append(items, map[string]any{"track": trackJSON(t)})
	}
	// local files and removed tracks come back with a null track
	items = append(items, map[string]any{"track": nil})
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func trackJSON(t FakeTrack) map[string]any {
	artists := make([]map[string]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, map[string]string{"name": a})
	}
	var preview any
	if t.PreviewURL != "" {
		preview = t.PreviewURL
	}
	return map[string]any{
		"name":        t.Name,
		"artists":     artists,
		"preview_url": preview,
	}
}

func apiError(status int) map[string]any {
	return map[string]any{"error": map[string]any{
		"status":  status,
		"message": strings.ToLower(http.StatusText(status)),
	}}
}

func statusOr200(status int) int {
	if status == 0 {
		return http.StatusOK
	}
	return status
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
