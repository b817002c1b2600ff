// Package spotify is a small read-only client for the Spotify Web API that
// maps responses onto the quiz's simplified track and profile shapes.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/mcoot/trackquiz/internal/metrics"
	"github.com/mcoot/trackquiz/internal/model"
)

// Operation names used in errors, spans and metrics
const (
	OpTopTracks      = "top_tracks"
	OpPlaylistTracks = "playlist_tracks"
	OpCurrentUser    = "current_user"
)

// Query defaults
const (
	DefaultLimit     = 50
	DefaultTimeRange = "medium_term"
)

const tracerName = "github.com/mcoot/trackquiz/internal/services/spotify"

// Config holds Web API client settings
type Config struct {
	// BaseURL is the Web API root, without trailing slash
	BaseURL string

	// Timeout bounds each outbound request
	Timeout time.Duration

	// RequestsPerSecond and Burst bound the outbound request rate.
	// RequestsPerSecond <= 0 disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns settings for the public Spotify Web API
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://api.spotify.com/v1",
		Timeout:           10 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
	}
}

// Client calls the Spotify Web API on behalf of a bearer token
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	tracer     trace.Tracer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New creates a new Web API client. m may be nil.
func New(cfg Config, m *metrics.Metrics, logger *slog.Logger) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		tracer:     otel.Tracer(tracerName),
		metrics:    m,
		logger:     logger,
	}
}

// FetchTopTracks returns the user's top tracks for a time range
// (short_term, medium_term or long_term).
func (c *Client) FetchTopTracks(ctx context.Context, accessToken string, limit int, timeRange string) ([]model.Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("time_range", timeRange)

	var resp topTracksResponse
	if err := c.get(ctx, OpTopTracks, "/me/top/tracks", query, accessToken, &resp); err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		tracks = append(tracks, toTrack(item))
	}
	return tracks, nil
}

// FetchPlaylistTracks returns a playlist's tracks, skipping any that have
// no audio preview.
func (c *Client) FetchPlaylistTracks(ctx context.Context, accessToken, playlistID string, limit int) ([]model.Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var resp playlistTracksResponse
	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	if err := c.get(ctx, OpPlaylistTracks, endpoint, query, accessToken, &resp); err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Track == nil || item.Track.PreviewURL == nil || *item.Track.PreviewURL == "" {
			continue
		}
		tracks = append(tracks, toTrack(*item.Track))
	}
	return tracks, nil
}

// FetchCurrentUser returns the profile of the token's owner
func (c *Client) FetchCurrentUser(ctx context.Context, accessToken string) (*model.Profile, error) {
	var resp currentUserResponse
	if err := c.get(ctx, OpCurrentUser, "/me", nil, accessToken, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("spotify: %s response has no user id", OpCurrentUser)
	}
	return &model.Profile{ID: resp.ID, DisplayName: resp.DisplayName}, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, query url.Values, accessToken string, result any) error {
	ctx, span := c.tracer.Start(ctx, "spotify."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("spotify.endpoint", endpoint)),
	)
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "rate limiter")
		return fmt.Errorf("spotify: %s: %w", op, err)
	}

	apiURL := c.cfg.BaseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("spotify: %s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveUpstream(op, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return fmt.Errorf("spotify: %s: request failed: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.metrics.ObserveUpstream(op, resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("spotify request failed",
			"op", op,
			"status", resp.StatusCode,
		)
		span.SetStatus(codes.Error, resp.Status)
		return &UpstreamError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return fmt.Errorf("spotify: %s: decode response: %w", op, err)
	}
	return nil
}

func toTrack(raw rawTrack) model.Track {
	names := make([]string, 0, len(raw.Artists))
	for _, a := range raw.Artists {
		names = append(names, a.Name)
	}
	return model.Track{
		Name:       raw.Name,
		Artist:     strings.Join(names, ", "),
		PreviewURL: raw.PreviewURL,
	}
}
