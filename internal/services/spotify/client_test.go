package spotify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackquiz/internal/metrics"
	quiztest "github.com/mcoot/trackquiz/internal/testutil"
)

type ClientSuite struct {
	suite.Suite
	fake    *quiztest.FakeSpotify
	metrics *metrics.Metrics
	client  *Client
	ctx     context.Context
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.fake = quiztest.NewFakeSpotify(s.T())
	s.metrics = metrics.New()

	cfg := DefaultConfig()
	cfg.BaseURL = s.fake.APIURL()
	s.client = New(cfg, s.metrics, quiztest.NopLogger())
	s.ctx = context.Background()
}

func (s *ClientSuite) TestFetchTopTracks() {
	s.fake.TopTracks = []quiztest.FakeTrack{
		{Name: "Song A", Artists: []string{"X", "Y"}, PreviewURL: "https://p.scdn.co/a"},
		{Name: "Song B", Artists: []string{"Z"}},
	}

	tracks, err := s.client.FetchTopTracks(s.ctx, "user-token", 50, "short_term")
	s.Require().NoError(err)
	s.Require().Len(tracks, 2)

	s.Equal("Song A", tracks[0].Name)
	s.Equal("X, Y", tracks[0].Artist)
	s.Require().NotNil(tracks[0].PreviewURL)
	s.Equal("https://p.scdn.co/a", *tracks[0].PreviewURL)

	s.Equal("Z", tracks[1].Artist)
	s.Nil(tracks[1].PreviewURL, "top tracks are not filtered on preview")

	s.Equal("short_term", s.fake.LastTimeRange())
	s.Equal("50", s.fake.LastLimit())
	s.Equal("Bearer user-token", s.fake.LastAuthorization("top_tracks"))
}

func (s *ClientSuite) TestFetchTopTracksDefaults() {
	_, err := s.client.FetchTopTracks(s.ctx, "user-token", 0, "")
	s.Require().NoError(err)
	s.Equal(DefaultTimeRange, s.fake.LastTimeRange())
	s.Equal("50", s.fake.LastLimit())
}

func (s *ClientSuite) TestFetchTopTracksUpstreamError() {
	s.fake.TopTracksStatus = http.StatusUnauthorized

	_, err := s.client.FetchTopTracks(s.ctx, "expired", 50, "medium_term")
	s.Require().Error(err)
	s.ErrorIs(err, ErrUpstreamFetchFailed)

	var upstream *UpstreamError
	s.Require().True(errors.As(err, &upstream))
	s.Equal(OpTopTracks, upstream.Op)
	s.Equal(http.StatusUnauthorized, upstream.StatusCode)
	s.Equal("Failed to fetch top tracks", upstream.Message())

	s.Equal(1.0, testutil.ToFloat64(s.metrics.UpstreamRequests.WithLabelValues(OpTopTracks, "401")))
}

func (s *ClientSuite) TestFetchPlaylistTracksFiltersMissingPreviews() {
	s.fake.PlaylistTracks = []quiztest.FakeTrack{
		{Name: "Has Preview", Artists: []string{"A"}, PreviewURL: "https://p.scdn.co/1"},
		{Name: "No Preview", Artists: []string{"B"}},
		{Name: "Also Has Preview", Artists: []string{"C", "D"}, PreviewURL: "https://p.scdn.co/2"},
	}

	tracks, err := s.client.FetchPlaylistTracks(s.ctx, "app-token", "playlist-1", 50)
	s.Require().NoError(err)
	s.Require().Len(tracks, 2)
	s.Equal("Has Preview", tracks[0].Name)
	s.Equal("Also Has Preview", tracks[1].Name)
	s.Equal("C, D", tracks[1].Artist)
	for _, tr := range tracks {
		s.NotNil(tr.PreviewURL)
	}

	s.Equal("playlist-1", s.fake.LastPlaylistID())
	s.Equal("Bearer app-token", s.fake.LastAuthorization("playlist_tracks"))
}

func (s *ClientSuite) TestFetchPlaylistTracksUpstreamError() {
	s.fake.PlaylistStatus = http.StatusNotFound

	_, err := s.client.FetchPlaylistTracks(s.ctx, "app-token", "missing", 50)

	var upstream *UpstreamError
	s.Require().True(errors.As(err, &upstream))
	s.Equal(OpPlaylistTracks, upstream.Op)
	s.Equal(http.StatusNotFound, upstream.StatusCode)
}

func (s *ClientSuite) TestFetchCurrentUser() {
	profile, err := s.client.FetchCurrentUser(s.ctx, "user-token")
	s.Require().NoError(err)
	s.Equal("spotify-user-1", profile.ID)
	s.Equal("Alice", profile.DisplayName)
}

func (s *ClientSuite) TestFetchCurrentUserError() {
	s.fake.ProfileStatus = http.StatusForbidden

	_, err := s.client.FetchCurrentUser(s.ctx, "user-token")
	s.ErrorIs(err, ErrUpstreamFetchFailed)
}

func (s *ClientSuite) TestTimeoutBoundsSlowUpstream() {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()

	cfg := DefaultConfig()
	cfg.BaseURL = slow.URL
	cfg.Timeout = 50 * time.Millisecond
	client := New(cfg, nil, quiztest.NopLogger())

	_, err := client.FetchTopTracks(s.ctx, "token", 50, "")
	s.Require().Error(err)
	s.NotErrorIs(err, ErrUpstreamFetchFailed)
}

func (s *ClientSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := s.client.FetchCurrentUser(ctx, "token")
	s.ErrorIs(err, context.Canceled)
}
