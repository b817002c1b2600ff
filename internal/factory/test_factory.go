package factory

import (
	"time"

	"github.com/mcoot/trackquiz/internal/dependencies/mocks"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/spotify"
	"github.com/mcoot/trackquiz/internal/storage/memory"
)

// SpotifyEndpoints points the app at a fake Spotify
type SpotifyEndpoints struct {
	AuthURL  string
	TokenURL string
	APIURL   string
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Memory is the backing store for users, entries, states and sessions
	Memory *memory.Storage

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(endpoints SpotifyEndpoints) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	store := memory.New(mockClock)

	authCfg := auth.DefaultConfig()
	authCfg.ClientID = "test-client-id"
	authCfg.ClientSecret = "test-client-secret"
	authCfg.RedirectURL = "http://localhost:8000/callback"
	authCfg.AuthURL = endpoints.AuthURL
	authCfg.TokenURL = endpoints.TokenURL

	spotifyCfg := spotify.DefaultConfig()
	spotifyCfg.BaseURL = endpoints.APIURL

	cfg := Config{Auth: authCfg, Spotify: spotifyCfg}
	app := newWithDependencies(store, store, store, mockClock, mockRandom, cfg, nopLogger())

	return &TestApp{
		App:        app,
		Memory:     store,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
