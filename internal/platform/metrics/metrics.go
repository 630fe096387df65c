package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the playback service.
type Metrics struct {
	registry             *prometheus.Registry
	requestsTotal        *prometheus.CounterVec
	errorsTotal          prometheus.Counter
	sessionsCreatedTotal prometheus.Counter
	activeSessions       prometheus.Gauge
	eventsTotal          *prometheus.CounterVec
	commandsTotal        *prometheus.CounterVec
	ignoredTotal         *prometheus.CounterVec
	divergenceTotal      prometheus.Counter
	togglesTotal         *prometheus.CounterVec
}

// New creates and registers Prometheus metrics for the service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncplayer_requests_total",
		Help: "Total number of HTTP requests received, by route and status code",
	}, []string{"route", "code"})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "syncplayer_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	sessionsCreatedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "syncplayer_sessions_created_total",
		Help: "Total number of playback sessions created",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "syncplayer_active_sessions",
		Help: "Number of open playback sessions",
	})
	eventsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncplayer_media_events_total",
		Help: "Media lifecycle events applied, by type",
	}, []string{"type"})
	commandsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncplayer_commands_total",
		Help: "User commands handled, by type",
	}, []string{"type"})
	ignoredTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncplayer_ignored_total",
		Help: "Events and commands dropped without error, by reason",
	}, []string{"reason"})
	divergenceTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "syncplayer_source_divergence_total",
		Help: "Time updates from non-primary sources outside the drift tolerance",
	})
	togglesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "syncplayer_playback_toggles_total",
		Help: "Play/pause fan-outs, by resulting state",
	}, []string{"state"})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		sessionsCreatedTotal,
		activeSessions,
		eventsTotal,
		commandsTotal,
		ignoredTotal,
		divergenceTotal,
		togglesTotal,
	)

	return &Metrics{
		registry:             registry,
		requestsTotal:        requestsTotal,
		errorsTotal:          errorsTotal,
		sessionsCreatedTotal: sessionsCreatedTotal,
		activeSessions:       activeSessions,
		eventsTotal:          eventsTotal,
		commandsTotal:        commandsTotal,
		ignoredTotal:         ignoredTotal,
		divergenceTotal:      divergenceTotal,
		togglesTotal:         togglesTotal,
	}
}

// ObserveRequest counts one request and, for status >= 400, one error.
func (m *Metrics) ObserveRequest(route string, status int) {
	m.requestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	if status >= 400 {
		m.errorsTotal.Inc()
	}
}

// IncSessionsCreated increments the sessions created counter.
func (m *Metrics) IncSessionsCreated() {
	m.sessionsCreatedTotal.Inc()
}

// SetActiveSessions sets the active sessions gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncEvent counts an applied media event.
func (m *Metrics) IncEvent(eventType string) {
	m.eventsTotal.WithLabelValues(eventType).Inc()
}

// IncCommand counts a handled user command.
func (m *Metrics) IncCommand(commandType string) {
	m.commandsTotal.WithLabelValues(commandType).Inc()
}

// IncIgnored counts a silently dropped event or command.
func (m *Metrics) IncIgnored(reason string) {
	m.ignoredTotal.WithLabelValues(reason).Inc()
}

// IncDivergence counts a drift beyond tolerance.
func (m *Metrics) IncDivergence() {
	m.divergenceTotal.Inc()
}

// IncToggle counts a play/pause fan-out.
func (m *Metrics) IncToggle(paused bool) {
	state := "playing"
	if paused {
		state = "paused"
	}
	m.togglesTotal.WithLabelValues(state).Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
