package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func scrape(t *testing.T, m *Metrics, update func()) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler(update).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("scrape: expected 200, got %d", rec.Code)
	}
	return rec.Body.String()
}

func TestRequestMiddleware_uses_route_pattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(RequestMiddleware(m))
	r.Get("/sessions/{session_id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	body := scrape(t, m, nil)
	for _, want := range []string{
		`syncplayer_requests_total{code="404",route="/sessions/{session_id}"} 1`,
		`syncplayer_requests_total{code="404",route="unmatched"} 1`,
		`syncplayer_errors_total 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in scrape", want)
		}
	}
	if strings.Contains(body, "abc") {
		t.Error("session id leaked into labels")
	}
}

func TestMetrics_domain_counters(t *testing.T) {
	m := New()
	m.IncIgnored("stale_event")
	m.IncDivergence()
	m.IncToggle(true)
	m.IncToggle(false)
	m.IncEvent("can_play")
	m.IncCommand("seek")

	body := scrape(t, m, func() { m.SetActiveSessions(3) })
	for _, want := range []string{
		`syncplayer_ignored_total{reason="stale_event"} 1`,
		`syncplayer_source_divergence_total 1`,
		`syncplayer_playback_toggles_total{state="paused"} 1`,
		`syncplayer_playback_toggles_total{state="playing"} 1`,
		`syncplayer_media_events_total{type="can_play"} 1`,
		`syncplayer_commands_total{type="seek"} 1`,
		`syncplayer_active_sessions 3`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in scrape", want)
		}
	}
}
