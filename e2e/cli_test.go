package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trackquiz/internal/api"
	"github.com/mcoot/trackquiz/internal/factory"
	"github.com/mcoot/trackquiz/internal/services/auth"
	"github.com/mcoot/trackquiz/internal/services/spotify"
	"github.com/mcoot/trackquiz/internal/testutil"
	"github.com/mcoot/trackquiz/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	sessionFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(t.TempDir(), "quizctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/quizctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		sessionFile: filepath.Join(t.TempDir(), "session"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runWithSession("", args...)
}

func (r *cliRunner) runWithSession(session string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--session-file", r.sessionFile,
		"--output", "json",
	}, args...)
	if session != "" {
		fullArgs = append([]string{"--session", session}, fullArgs...)
	}

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "QUIZCTL_SESSION=")
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the full application on a real port
type testServer struct {
	url  string
	fake *testutil.FakeSpotify
	app  *factory.App
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	fake := testutil.NewFakeSpotify(t)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	serverURL := "http://" + listener.Addr().String()

	authCfg := auth.DefaultConfig()
	authCfg.ClientID = "e2e-client"
	authCfg.ClientSecret = "e2e-secret"
	authCfg.RedirectURL = serverURL + "/callback"
	authCfg.AuthURL = fake.AuthURL()
	authCfg.TokenURL = fake.TokenURL()

	spotifyCfg := spotify.DefaultConfig()
	spotifyCfg.BaseURL = fake.APIURL()

	ctx, cancel := context.WithCancel(context.Background())
	app, err := factory.New(ctx, factory.Config{
		Logger:  logger,
		Auth:    authCfg,
		Spotify: spotifyCfg,
	})
	require.NoError(t, err)

	root := mux.NewRouter()
	root.PathPrefix("/api/").Handler(api.NewRouter(api.RouterConfig{
		Logger:             logger,
		Sessions:           app.SessionManager,
		QuizService:        app.QuizService,
		LeaderboardService: app.LeaderboardService,
	}))
	root.PathPrefix("/").Handler(web.NewRouter(web.RouterConfig{
		Logger:             logger,
		Sessions:           app.SessionManager,
		AuthService:        app.AuthService,
		LeaderboardService: app.LeaderboardService,
	}))

	server := api.NewServer(root, api.DefaultServerConfig(), logger)
	done := make(chan error, 1)
	go func() { done <- server.Serve(ctx, listener) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Logf("server error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Log("server did not stop in time")
		}
		_ = app.Close()
	})

	waitForServer(t, serverURL+"/api/v1/health")
	return &testServer{url: serverURL, fake: fake, app: app}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// browserLogin walks the OAuth redirect flow the way a browser would and
// returns the resulting session cookie value
func browserLogin(t *testing.T, ts *testServer) string {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar:     jar,
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Get(ts.url + "/auth/spotify")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	authorize, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(authorize.String(), ts.fake.AuthURL()))
	state := authorize.Query().Get("state")
	require.NotEmpty(t, state)

	callback := ts.url + "/callback?" + url.Values{"code": {"e2e-code"}, "state": {state}}.Encode()
	resp, err = client.Get(callback)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/welcome", resp.Header.Get("Location"))

	base, err := url.Parse(ts.url)
	require.NoError(t, err)
	for _, c := range jar.Cookies(base) {
		if c.Name == "session" {
			return c.Value
		}
	}
	t.Fatal("no session cookie after login")
	return ""
}

type statusResponse struct {
	Status string `json:"status"`
}

type leaderboardResponse struct {
	Leaderboard []struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Score       int    `json:"score"`
	} `json:"leaderboard"`
}

type totalsResponse struct {
	TotalLeaderboard []struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		TotalScore  int    `json:"total_score"`
	} `json:"total_leaderboard"`
}

type quizResponse struct {
	TopTracks []struct {
		Name       string  `json:"name"`
		Artist     string  `json:"artist"`
		PreviewURL *string `json:"preview_url"`
	} `json:"top_tracks"`
}

func TestCLIHealth(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	out, err := cli.run("health")
	require.NoError(t, err, out)

	var resp statusResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLIGuestScoresAndLeaderboards(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	out, err := cli.run("leaderboard")
	require.NoError(t, err, out)
	var empty leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &empty))
	assert.Empty(t, empty.Leaderboard)

	for _, score := range []string{"10", "20"} {
		out, err = cli.run("submit", score)
		require.NoError(t, err, out)
		var resp statusResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "success", resp.Status)
	}

	out, err = cli.run("leaderboard")
	require.NoError(t, err, out)
	var top leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	require.Len(t, top.Leaderboard, 2)
	assert.Equal(t, 20, top.Leaderboard[0].Score)
	assert.Equal(t, 10, top.Leaderboard[1].Score)
	assert.Equal(t, "Guest", top.Leaderboard[0].DisplayName)

	out, err = cli.run("totals")
	require.NoError(t, err, out)
	var totals totalsResponse
	require.NoError(t, json.Unmarshal([]byte(out), &totals))
	require.Len(t, totals.TotalLeaderboard, 1)
	assert.Equal(t, 30, totals.TotalLeaderboard[0].TotalScore)
}

func TestCLISubmitAsLoggedInUser(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	session := browserLogin(t, ts)

	out, err := cli.runWithSession(session, "submit", "17")
	require.NoError(t, err, out)

	out, err = cli.run("leaderboard")
	require.NoError(t, err, out)
	var top leaderboardResponse
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	require.Len(t, top.Leaderboard, 1)
	assert.Equal(t, "spotify-user-1", top.Leaderboard[0].Username)
	assert.Equal(t, "Alice", top.Leaderboard[0].DisplayName)
	assert.Equal(t, 17, top.Leaderboard[0].Score)
}

func TestCLITracksForLoggedInUser(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	ts.fake.Set(func(f *testutil.FakeSpotify) {
		f.TopTracks = []testutil.FakeTrack{{Name: "Mine", Artists: []string{"Me"}}}
	})
	session := browserLogin(t, ts)

	out, err := cli.runWithSession(session, "tracks", "--time-range", "long_term")
	require.NoError(t, err, out)

	var resp quizResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.TopTracks, 1)
	assert.Equal(t, "Mine", resp.TopTracks[0].Name)
	assert.Nil(t, resp.TopTracks[0].PreviewURL)
	assert.Equal(t, "long_term", ts.fake.LastTimeRange())
	assert.Equal(t, "Bearer "+testutil.FakeUserAccessToken, ts.fake.LastAuthorization("top_tracks"))
}

func TestCLIErrorExitCode(t *testing.T) {
	ts := startTestServer(t)
	cli := newCLIRunner(t, ts.url)

	ts.fake.Set(func(f *testutil.FakeSpotify) { f.ClientCredentialsStatus = http.StatusUnauthorized })

	out, err := cli.run("tracks")
	require.Error(t, err)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, out, "Unable to fetch playlist")
}
