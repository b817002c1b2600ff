package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/trackquiz/internal/session"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	s.storage = NewWithClient(client, DefaultConfig())
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

// State tests

func (s *StorageSuite) TestSaveStateSetsTTL() {
	s.Require().NoError(s.storage.SaveState(s.ctx, "abc", 300*time.Second))

	s.True(s.mini.Exists(stateKey("abc")))
	s.Equal(300*time.Second, s.mini.TTL(stateKey("abc")))
}

func (s *StorageSuite) TestConsumeStateOnce() {
	s.Require().NoError(s.storage.SaveState(s.ctx, "abc", 300*time.Second))

	ok, err := s.storage.ConsumeState(s.ctx, "abc")
	s.Require().NoError(err)
	s.True(ok)
	s.False(s.mini.Exists(stateKey("abc")))

	ok, err = s.storage.ConsumeState(s.ctx, "abc")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestConsumeStateExpired() {
	s.Require().NoError(s.storage.SaveState(s.ctx, "abc", 300*time.Second))
	s.mini.FastForward(301 * time.Second)

	ok, err := s.storage.ConsumeState(s.ctx, "abc")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *StorageSuite) TestConsumeStateConcurrent() {
	s.Require().NoError(s.storage.SaveState(s.ctx, "abc", 300*time.Second))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.storage.ConsumeState(s.ctx, "abc")
			s.NoError(err)
			if ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), wins.Load())
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	userID := int64(7)
	score := 12
	expiry := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)
	sess := &session.Session{
		ID:            "sid",
		AccessToken:   "access",
		RefreshToken:  "refresh",
		TokenExpiry:   expiry,
		UserID:        &userID,
		SpotifyUserID: "spotify-1",
		DisplayName:   "Alice",
		Score:         &score,
	}
	s.Require().NoError(s.storage.SaveSession(s.ctx, sess, time.Hour))
	s.Equal(time.Hour, s.mini.TTL(sessionKey("sid")))

	got, err := s.storage.GetSession(s.ctx, "sid")
	s.Require().NoError(err)
	s.Equal("sid", got.ID)
	s.Equal("access", got.AccessToken)
	s.Equal("refresh", got.RefreshToken)
	s.True(expiry.Equal(got.TokenExpiry))
	s.Equal(int64(7), *got.UserID)
	s.Equal("spotify-1", got.SpotifyUserID)
	s.Equal("Alice", got.DisplayName)
	s.Equal(12, *got.Score)
}

func (s *StorageSuite) TestGetSessionNotFound() {
	_, err := s.storage.GetSession(s.ctx, "missing")
	s.ErrorIs(err, session.ErrSessionNotFound)
}

func (s *StorageSuite) TestSessionExpires() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &session.Session{ID: "sid"}, time.Hour))
	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetSession(s.ctx, "sid")
	s.ErrorIs(err, session.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	s.Require().NoError(s.storage.SaveSession(s.ctx, &session.Session{ID: "sid"}, time.Hour))
	s.Require().NoError(s.storage.DeleteSession(s.ctx, "sid"))

	s.False(s.mini.Exists(sessionKey("sid")))
}
