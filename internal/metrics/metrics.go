package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ScoresSubmitted  prometheus.Counter
	UsersCreated     *prometheus.CounterVec
	OAuthCallbacks   *prometheus.CounterVec
	UpstreamRequests *prometheus.CounterVec
}

// New creates a registry and registers all application metrics on it
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ScoresSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trackquiz_scores_submitted_total",
			Help: "Total number of quiz scores recorded",
		}),
		UsersCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackquiz_users_created_total",
			Help: "Total number of users created, by kind (spotify or guest)",
		}, []string{"kind"}),
		OAuthCallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackquiz_oauth_callbacks_total",
			Help: "Total number of OAuth callbacks handled, by result",
		}, []string{"result"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trackquiz_spotify_requests_total",
			Help: "Total number of Spotify Web API requests, by operation and status code",
		}, []string{"op", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format. A nil
// Metrics serves 404.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// IncrementScoresSubmitted increments the scores submitted counter by 1
func (m *Metrics) IncrementScoresSubmitted() {
	if m == nil {
		return
	}
	m.ScoresSubmitted.Inc()
}

// IncrementUsersCreated counts a newly created user
func (m *Metrics) IncrementUsersCreated(kind string) {
	if m == nil {
		return
	}
	m.UsersCreated.WithLabelValues(kind).Inc()
}

// ObserveOAuthCallback counts a callback outcome ("success", "invalid_state", ...)
func (m *Metrics) ObserveOAuthCallback(result string) {
	if m == nil {
		return
	}
	m.OAuthCallbacks.WithLabelValues(result).Inc()
}

// ObserveUpstream counts a Spotify API response. status 0 means the request
// failed before a response arrived.
func (m *Metrics) ObserveUpstream(op string, status int) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(op, strconv.Itoa(status)).Inc()
}
