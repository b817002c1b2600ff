package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envFunc(env map[string]string) func(string) string {
	return func(key string) string { return env[key] }
}

func requiredEnv() map[string]string {
	return map[string]string{
		"SPOTIFY_CLIENT_ID":     "client-id",
		"SPOTIFY_CLIENT_SECRET": "client-secret",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envFunc(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "http://localhost:8000/callback", cfg.RedirectURL())
	assert.Equal(t, []string{"user-top-read", "user-read-private", "user-read-email"}, cfg.Spotify.Scopes)
	assert.Equal(t, "37i9dQZEVXbMDoHDwVN2tF", cfg.Spotify.FallbackPlaylistID)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadMissingCredentials(t *testing.T) {
	_, err := load(envFunc(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClientID")
	assert.Contains(t, err.Error(), "ClientSecret")
}

func TestLoadProductionRedirect(t *testing.T) {
	env := requiredEnv()
	env["APP_ENV"] = "prod"
	env["PROD_BASE_URL"] = "https://quiz.example.com/"

	cfg, err := load(envFunc(env))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://quiz.example.com/callback", cfg.RedirectURL())
}

func TestLoadEnvOverrides(t *testing.T) {
	env := requiredEnv()
	env["PORT"] = "9000"
	env["SPOTIFY_SCOPES"] = "user-top-read, user-read-email"
	env["STORAGE_TYPE"] = "sql"
	env["DATABASE_DRIVER"] = "pgx"
	env["DATABASE_URL"] = "postgres://localhost/quiz"
	env["SESSION_STORE"] = "redis"
	env["REDIS_URL"] = "redis://localhost:6379/0"
	env["LOG_FORMAT"] = "text"

	cfg, err := load(envFunc(env))
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"user-top-read", "user-read-email"}, cfg.Spotify.Scopes)
	assert.Equal(t, "sql", cfg.Storage.Type)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadInvalidPort(t *testing.T) {
	env := requiredEnv()
	env["PORT"] = "eighty"

	_, err := load(envFunc(env))
	assert.ErrorContains(t, err, "parse PORT")
}

func TestLoadRejectsUnknownEnums(t *testing.T) {
	for key, value := range map[string]string{
		"APP_ENV":         "staging",
		"STORAGE_TYPE":    "mongo",
		"DATABASE_DRIVER": "mysql",
		"SESSION_STORE":   "memcached",
		"LOG_FORMAT":      "xml",
	} {
		t.Run(key, func(t *testing.T) {
			env := requiredEnv()
			env[key] = value
			_, err := load(envFunc(env))
			assert.Error(t, err)
		})
	}
}

func TestLoadRedisRequiresURL(t *testing.T) {
	env := requiredEnv()
	env["SESSION_STORE"] = "redis"

	_, err := load(envFunc(env))
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trackquiz.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 7000
env = "prod"
prod_base_url = "https://file.example.com"

[spotify]
client_id = "file-id"
client_secret = "file-secret"
fallback_playlist_id = "file-playlist"

[log]
format = "text"
`), 0o600))

	cfg, err := load(envFunc(map[string]string{
		"CONFIG_FILE":       path,
		"SPOTIFY_CLIENT_ID": "env-id",
	}))
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "https://file.example.com/callback", cfg.RedirectURL())
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "file-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "file-playlist", cfg.Spotify.FallbackPlaylistID)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "memory", cfg.Storage.Type, "unset keys keep defaults")
}

func TestLoadConfigFileMissing(t *testing.T) {
	_, err := load(envFunc(map[string]string{"CONFIG_FILE": "/nonexistent/trackquiz.toml"}))
	assert.ErrorContains(t, err, "parse config file")
}
