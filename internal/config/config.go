package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Config holds all application configuration. Values come from an optional
// TOML file named by CONFIG_FILE, overridden by environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Spotify  SpotifyConfig  `toml:"spotify"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Redis    RedisConfig    `toml:"redis"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port        int    `toml:"port" validate:"min=1,max=65535"`
	Env         string `toml:"env" validate:"oneof=dev prod"`
	DevBaseURL  string `toml:"dev_base_url" validate:"required,url"`
	ProdBaseURL string `toml:"prod_base_url" validate:"required,url"`
}

// SpotifyConfig contains Spotify application credentials
type SpotifyConfig struct {
	ClientID           string   `toml:"client_id" validate:"required"`
	ClientSecret       string   `toml:"client_secret" validate:"required"`
	Scopes             []string `toml:"scopes" validate:"min=1,dive,required"`
	FallbackPlaylistID string   `toml:"fallback_playlist_id" validate:"required"`
}

// StorageConfig selects the user and leaderboard store
type StorageConfig struct {
	Type string `toml:"type" validate:"oneof=memory sql"`
}

// DatabaseConfig contains SQL store settings, used when Storage.Type is "sql"
type DatabaseConfig struct {
	Driver string `toml:"driver" validate:"oneof=sqlite3 pgx"`
	URL    string `toml:"url" validate:"required"`
}

// SessionConfig selects the session and OAuth state store
type SessionConfig struct {
	Store string `toml:"store" validate:"oneof=memory redis"`
}

// RedisConfig contains Redis settings, used when Session.Store is "redis"
type RedisConfig struct {
	URL string `toml:"url"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Format string `toml:"format" validate:"oneof=json text"`
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:        8080,
			Env:         "dev",
			DevBaseURL:  "http://localhost:8000",
			ProdBaseURL: "https://spotiplay.onrender.com",
		},
		Spotify: SpotifyConfig{
			Scopes:             []string{"user-top-read", "user-read-private", "user-read-email"},
			FallbackPlaylistID: "37i9dQZEVXbMDoHDwVN2tF",
		},
		Storage:  StorageConfig{Type: "memory"},
		Database: DatabaseConfig{Driver: "sqlite3", URL: "trackquiz.db"},
		Session:  SessionConfig{Store: "memory"},
		Log:      LogConfig{Format: "json", Level: "info"},
	}
}

// Load reads configuration from CONFIG_FILE (if set) and the environment,
// then validates it
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		cfg.Server.Port = port
	}

	setString(&cfg.Server.Env, getenv("APP_ENV"))
	setString(&cfg.Server.DevBaseURL, getenv("DEV_BASE_URL"))
	setString(&cfg.Server.ProdBaseURL, getenv("PROD_BASE_URL"))

	setString(&cfg.Spotify.ClientID, getenv("SPOTIFY_CLIENT_ID"))
	setString(&cfg.Spotify.ClientSecret, getenv("SPOTIFY_CLIENT_SECRET"))
	if v := getenv("SPOTIFY_SCOPES"); v != "" {
		cfg.Spotify.Scopes = splitList(v)
	}
	setString(&cfg.Spotify.FallbackPlaylistID, getenv("FALLBACK_PLAYLIST_ID"))

	setString(&cfg.Storage.Type, getenv("STORAGE_TYPE"))
	setString(&cfg.Database.Driver, getenv("DATABASE_DRIVER"))
	setString(&cfg.Database.URL, getenv("DATABASE_URL"))
	setString(&cfg.Session.Store, getenv("SESSION_STORE"))
	setString(&cfg.Redis.URL, getenv("REDIS_URL"))
	setString(&cfg.Log.Format, getenv("LOG_FORMAT"))
	setString(&cfg.Log.Level, getenv("LOG_LEVEL"))
	return nil
}

// Validate checks field constraints and cross-field requirements
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Session.Store == "redis" && c.Redis.URL == "" {
		return errors.New("invalid config: REDIS_URL is required when SESSION_STORE is redis")
	}
	return nil
}

// IsProduction reports whether the app runs with the production base URL
func (c Config) IsProduction() bool {
	return c.Server.Env == "prod"
}

// BaseURL returns the public base URL for the current environment
func (c Config) BaseURL() string {
	if c.IsProduction() {
		return strings.TrimRight(c.Server.ProdBaseURL, "/")
	}
	return strings.TrimRight(c.Server.DevBaseURL, "/")
}

// RedirectURL returns the OAuth callback URL registered with Spotify
func (c Config) RedirectURL() string {
	return c.BaseURL() + "/callback"
}

// Addr returns the HTTP listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
