package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/session"
	"github.com/mcoot/trackquiz/internal/storage/memory"
	redisstorage "github.com/mcoot/trackquiz/internal/storage/redis"
	sqlstore "github.com/mcoot/trackquiz/internal/storage/sql"
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(context.Background(), Config{})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	mem, ok := app.Storage.(*memory.Storage)
	require.True(t, ok)
	assert.Same(t, mem, app.States)
	assert.Same(t, mem, app.Sessions)
	assert.NotNil(t, app.Metrics)
	assert.NotNil(t, app.SessionManager)
}

func TestNewSQLStorage(t *testing.T) {
	ctx := context.Background()
	app, err := New(ctx, Config{
		StorageType: StorageTypeSQL,
		Database:    &sqlstore.Config{Driver: sqlstore.DriverSQLite, URL: ":memory:"},
	})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, ok := app.Storage.(*sqlstore.Storage)
	require.True(t, ok)

	_, _, err = app.LeaderboardService.Submit(ctx, nil, 5)
	require.NoError(t, err)
	top, err := app.LeaderboardService.Top(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, model.GuestUsername, top[0].Username)
}

func TestNewRedisSessions(t *testing.T) {
	mr := miniredis.RunT(t)

	app, err := New(context.Background(), Config{
		SessionStore: SessionStoreRedis,
		Redis:        &redisstorage.Config{URL: "redis://" + mr.Addr(), PoolSize: 2},
	})
	require.NoError(t, err)
	defer func() { _ = app.Close() }()

	_, ok := app.Sessions.(*redisstorage.Storage)
	require.True(t, ok)
	assert.Same(t, app.Sessions, app.States)
	_, ok = app.Storage.(*memory.Storage)
	assert.True(t, ok)

	err = app.Sessions.SaveSession(context.Background(), &session.Session{ID: "sid"}, session.DefaultTTL)
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"unknown storage", Config{StorageType: "mongo"}, `invalid StorageType "mongo"`},
		{"sql without database", Config{StorageType: StorageTypeSQL}, "Database config required"},
		{"unknown session store", Config{SessionStore: "memcached"}, `invalid SessionStore "memcached"`},
		{"redis without config", Config{SessionStore: SessionStoreRedis}, "Redis config required"},
		{"unknown sql driver", Config{StorageType: StorageTypeSQL, Database: &sqlstore.Config{Driver: "oracle"}}, "unsupported database driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := New(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Nil(t, app)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
