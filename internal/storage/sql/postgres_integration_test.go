//go:build integration

package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func TestPostgresStorageSuite(t *testing.T) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("trackquiz"),
		tcpostgres.WithUsername("trackquiz"),
		tcpostgres.WithPassword("trackquiz"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	suite.Run(t, &StorageSuite{newDB: func(t *testing.T) *sqlx.DB {
		t.Helper()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := Open(ctx, Config{Driver: DriverPostgres, URL: dsn, MaxOpenConns: 5})
		require.NoError(t, err)
		_, err = db.ExecContext(ctx, `TRUNCATE leaderboard_entries, users RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
		return db
	}})
}
