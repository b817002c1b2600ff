package factory

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/testutil"
)

type IntegrationSuite struct {
	suite.Suite
	fake *testutil.FakeSpotify
	app  *TestApp
	ctx  context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.fake = testutil.NewFakeSpotify(s.T())
	s.app = NewTestApp(SpotifyEndpoints{
		AuthURL:  s.fake.AuthURL(),
		TokenURL: s.fake.TokenURL(),
		APIURL:   s.fake.APIURL(),
	})
	s.ctx = context.Background()
}

// login runs the authorization flow through the services and returns the
// logged-in user
func (s *IntegrationSuite) login() *model.User {
	s.app.MockRandom.Queue("state-1")
	authURL, err := s.app.AuthService.BuildAuthorizationURL(s.ctx)
	s.Require().NoError(err)

	u, err := url.Parse(authURL)
	s.Require().NoError(err)
	s.Equal("state-1", u.Query().Get("state"))

	login, err := s.app.AuthService.CompleteLogin(s.ctx, "code-1", "state-1")
	s.Require().NoError(err)
	return login.User
}

// Test: login, play with top tracks, submit, and read every leaderboard view
func (s *IntegrationSuite) TestCompleteQuizFlow() {
	s.fake.Set(func(f *testutil.FakeSpotify) {
		f.TopTracks = []testutil.FakeTrack{
			{Name: "One", Artists: []string{"A"}},
			{Name: "Two", Artists: []string{"B"}, PreviewURL: "https://p.scdn.co/2"},
		}
	})

	// Step 1: log in
	user := s.login()
	s.Equal("spotify-user-1", user.Username)
	s.Equal("Alice", user.DisplayName)

	// Step 2: fetch quiz tracks with the user's token
	tracks, err := s.app.QuizService.Tracks(s.ctx, testutil.FakeUserAccessToken, "")
	s.Require().NoError(err)
	s.Len(tracks, 2)
	s.Equal("medium_term", s.fake.LastTimeRange())

	// Step 3: submit two scores as the user and one as a guest
	_, _, err = s.app.LeaderboardService.Submit(s.ctx, &user.ID, 6)
	s.Require().NoError(err)
	_, _, err = s.app.LeaderboardService.Submit(s.ctx, &user.ID, 9)
	s.Require().NoError(err)
	guest, _, err := s.app.LeaderboardService.Submit(s.ctx, nil, 8)
	s.Require().NoError(err)
	s.True(guest.IsGuest())

	// Step 4: leaderboards
	top, err := s.app.LeaderboardService.Top(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal([]int{9, 8, 6}, []int{top[0].Score, top[1].Score, top[2].Score})

	totals, err := s.app.LeaderboardService.Totals(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.TotalRow{
		{Username: "spotify-user-1", DisplayName: "Alice", TotalScore: 15},
		{Username: model.GuestUsername, DisplayName: "Guest", TotalScore: 8},
	}, totals)

	// Step 5: profile statistics
	stats, err := s.app.LeaderboardService.Stats(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(model.UserStats{HighestScore: 9, TotalScore: 15, TimesPlayed: 2}, stats)
}

// Test: a second login for the same Spotify account reuses the user
func (s *IntegrationSuite) TestRepeatLoginReusesUser() {
	first := s.login()
	second := s.login()
	s.Equal(first.ID, second.ID)
	s.Equal(2, s.fake.Hits("token:authorization_code"))
}

// Test: anonymous quiz falls back to the playlist with an app token
func (s *IntegrationSuite) TestAnonymousQuizUsesFallbackPlaylist() {
	s.fake.Set(func(f *testutil.FakeSpotify) {
		f.PlaylistTracks = []testutil.FakeTrack{
			{Name: "Previewable", Artists: []string{"A"}, PreviewURL: "https://p.scdn.co/1"},
			{Name: "Silent", Artists: []string{"B"}},
		}
	})

	tracks, err := s.app.QuizService.Tracks(s.ctx, "", "")
	s.Require().NoError(err)
	s.Require().Len(tracks, 1)
	s.Equal("Previewable", tracks[0].Name)
	s.Equal("37i9dQZEVXbMDoHDwVN2tF", s.fake.LastPlaylistID())
	s.Equal("Bearer "+testutil.FakeAppAccessToken, s.fake.LastAuthorization("playlist_tracks"))
}
