package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	spotifyoauth "golang.org/x/oauth2/spotify"

	"github.com/mcoot/trackquiz/internal/dependencies/random"
	"github.com/mcoot/trackquiz/internal/metrics"
	"github.com/mcoot/trackquiz/internal/model"
	"github.com/mcoot/trackquiz/internal/storage"
)

// Errors
var (
	ErrInvalidState        = errors.New("invalid state parameter or no code provided")
	ErrTokenExchangeFailed = errors.New("failed to exchange token or Spotify denied the request")
	ErrProfileFetchFailed  = errors.New("failed to fetch user profile from Spotify")
	ErrAppAuthFailed       = errors.New("failed to obtain application access token")
)

const (
	// StateLength is the length of generated anti-forgery state tokens
	StateLength = 32

	unusablePasswordPrefix = "!"
	unusablePasswordLength = 40
)

// DefaultScopes are requested when none are configured
var DefaultScopes = []string{"user-top-read", "user-read-private", "user-read-email"}

// Config holds configuration for the auth service
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// Spotify accounts service endpoints
	AuthURL  string
	TokenURL string

	StateTTL    time.Duration
	HTTPTimeout time.Duration
}

// DefaultConfig returns default auth configuration. Client credentials and
// the redirect URL must still be set.
func DefaultConfig() Config {
	return Config{
		Scopes:      DefaultScopes,
		AuthURL:     spotifyoauth.Endpoint.AuthURL,
		TokenURL:    spotifyoauth.Endpoint.TokenURL,
		StateTTL:    300 * time.Second,
		HTTPTimeout: 10 * time.Second,
	}
}

// ProfileFetcher fetches the profile of an access token's owner
type ProfileFetcher interface {
	FetchCurrentUser(ctx context.Context, accessToken string) (*model.Profile, error)
}

// Login is the outcome of a completed authorization callback
type Login struct {
	Token   *oauth2.Token
	Profile *model.Profile
	User    *model.User
}

// Service runs the Spotify authorization-code flow and resolves the local
// user behind a login
type Service struct {
	oauth      *oauth2.Config
	appCreds   *clientcredentials.Config
	stateTTL   time.Duration
	httpClient *http.Client

	states   storage.StateStore
	users    storage.Storage
	profiles ProfileFetcher
	random   random.Random
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// New creates a new auth service
func New(
	cfg Config,
	states storage.StateStore,
	users storage.Storage,
	profiles ProfileFetcher,
	rnd random.Random,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	defaults := DefaultConfig()
	if cfg.StateTTL <= 0 {
		cfg.StateTTL = defaults.StateTTL
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaults.HTTPTimeout
	}
	if len(cfg.Scopes) == 0 {
		cfg.Scopes = defaults.Scopes
	}

	// Spotify expects the client credentials in the form body
	endpoint := oauth2.Endpoint{
		AuthURL:   cfg.AuthURL,
		TokenURL:  cfg.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		appCreds: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		stateTTL:   cfg.StateTTL,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		states:     states,
		users:      users,
		profiles:   profiles,
		random:     rnd,
		metrics:    m,
		logger:     logger,
	}
}

// BuildAuthorizationURL issues a fresh state token and returns the Spotify
// authorize URL carrying it
func (s *Service) BuildAuthorizationURL(ctx context.Context) (string, error) {
	state := s.random.Token(StateLength)
	if err := s.states.SaveState(ctx, state, s.stateTTL); err != nil {
		return "", fmt.Errorf("save oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true")), nil
}

// HandleCallback validates and consumes the state, then exchanges the code.
// The state is burned even if the exchange fails.
func (s *Service) HandleCallback(ctx context.Context, code, state string) (*oauth2.Token, error) {
	if code == "" || state == "" {
		return nil, ErrInvalidState
	}

	ok, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("consume oauth state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	return s.ExchangeCodeForToken(ctx, code)
}

// ExchangeCodeForToken trades an authorization code for user tokens
func (s *Service) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := s.oauth.Exchange(s.clientContext(ctx), code)
	if err != nil {
		s.logTokenError("authorization code exchange failed", err)
		return nil, ErrTokenExchangeFailed
	}
	return tok, nil
}

// GetAppAccessToken obtains an application token with the client-credentials grant
func (s *Service) GetAppAccessToken(ctx context.Context) (string, error) {
	tok, err := s.appCreds.Token(s.clientContext(ctx))
	if err != nil {
		s.logTokenError("client credentials grant failed", err)
		return "", ErrAppAuthFailed
	}
	return tok.AccessToken, nil
}

// FetchProfile returns the Spotify profile behind a user access token
func (s *Service) FetchProfile(ctx context.Context, accessToken string) (*model.Profile, error) {
	profile, err := s.profiles.FetchCurrentUser(ctx, accessToken)
	if err != nil {
		s.logger.Error("failed to fetch spotify profile", "error", err)
		return nil, ErrProfileFetchFailed
	}
	return profile, nil
}

// ResolveUser finds or creates the local user for a Spotify profile.
// The profile's display name is stored as given, empty included. An
// existing user keeps its stored display name.
func (s *Service) ResolveUser(ctx context.Context, profile *model.Profile) (*model.User, error) {
	user, created, err := s.users.GetOrCreateUser(ctx, &model.User{
		Username:    profile.ID,
		DisplayName: profile.DisplayName,
		Password:    s.unusablePassword(),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", profile.ID, err)
	}
	if created {
		s.metrics.IncrementUsersCreated("spotify")
		s.logger.Info("user created", "user_id", user.ID, "username", user.Username)
	}
	return user, nil
}

// ResolveGuest finds or creates the shared Guest user
func (s *Service) ResolveGuest(ctx context.Context) (*model.User, error) {
	user, created, err := s.users.GetOrCreateUser(ctx, &model.User{
		Username:    model.GuestUsername,
		DisplayName: model.GuestUsername,
		Password:    s.unusablePassword(),
	})
	if err != nil {
		return nil, fmt.Errorf("resolve guest user: %w", err)
	}
	if created {
		s.metrics.IncrementUsersCreated("guest")
		s.logger.Info("guest user created", "user_id", user.ID)
	}
	return user, nil
}

// CompleteLogin runs the whole callback: state check, code exchange,
// profile fetch and user resolution
func (s *Service) CompleteLogin(ctx context.Context, code, state string) (*Login, error) {
	tok, err := s.HandleCallback(ctx, code, state)
	if err != nil {
		s.metrics.ObserveOAuthCallback(callbackResult(err))
		return nil, err
	}

	profile, err := s.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		s.metrics.ObserveOAuthCallback(callbackResult(err))
		return nil, err
	}

	user, err := s.ResolveUser(ctx, profile)
	if err != nil {
		s.metrics.ObserveOAuthCallback(callbackResult(err))
		return nil, err
	}

	s.metrics.ObserveOAuthCallback("success")
	return &Login{Token: tok, Profile: profile, User: user}, nil
}

func (s *Service) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func (s *Service) unusablePassword() string {
	return unusablePasswordPrefix + s.random.String(unusablePasswordLength, random.Alphanumeric)
}

// logTokenError logs the provider's response body, which is never returned
// to callers
func (s *Service) logTokenError(msg string, err error) {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		s.logger.Error(msg,
			"status", status,
			"error_code", retrieveErr.ErrorCode,
			"body", string(retrieveErr.Body),
		)
		return
	}
	s.logger.Error(msg, "error", err)
}

func callbackResult(err error) string {
	switch {
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrTokenExchangeFailed):
		return "exchange_failed"
	case errors.Is(err, ErrProfileFetchFailed):
		return "profile_failed"
	default:
		return "error"
	}
}
