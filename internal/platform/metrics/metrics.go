package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del sitio en un registry propio (no el global),
// así cada test puede crear el suyo sin colisiones.
// Todos los métodos aceptan receiver nil.
type Metrics struct {
	reg *prometheus.Registry

	commits         *prometheus.CounterVec
	regionLoads     *prometheus.CounterVec
	eventEdits      *prometheus.CounterVec
	formSubmissions *prometheus.CounterVec
	relayAttempts   *prometheus.CounterVec
	relayQueued     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_content_commits_total",
			Help: "Region commits by outcome (saved, unchanged, error).",
		}, []string{"outcome"}),
		regionLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_region_loads_total",
			Help: "Region registrations by baseline source (persisted, authored, fetch_failed).",
		}, []string{"source"}),
		eventEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_event_field_edits_total",
			Help: "Event field edits by field and outcome.",
		}, []string{"field", "outcome"}),
		formSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_form_submissions_total",
			Help: "Question/feedback submissions stored in the primary store.",
		}, []string{"type"}),
		relayAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_relay_delivery_attempts_total",
			Help: "Relay delivery attempts by action type and outcome.",
		}, []string{"action", "outcome"}),
		relayQueued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bcasco_relay_enqueued_total",
			Help: "Relay entries enqueued by action type.",
		}, []string{"action"}),
	}

	m.reg.MustRegister(
		m.commits,
		m.regionLoads,
		m.eventEdits,
		m.formSubmissions,
		m.relayAttempts,
		m.relayQueued,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Commit(outcome string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RegionLoad(source string) {
	if m == nil {
		return
	}
	m.regionLoads.WithLabelValues(source).Inc()
}

func (m *Metrics) EventEdit(field, outcome string) {
	if m == nil {
		return
	}
	m.eventEdits.WithLabelValues(field, outcome).Inc()
}

func (m *Metrics) FormSubmitted(kind string) {
	if m == nil {
		return
	}
	m.formSubmissions.WithLabelValues(kind).Inc()
}

func (m *Metrics) RelayAttempt(action, outcome string) {
	if m == nil {
		return
	}
	m.relayAttempts.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) RelayEnqueued(action string) {
	if m == nil {
		return
	}
	m.relayQueued.WithLabelValues(action).Inc()
}

// Handler expone /metrics en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Registry se expone para tests (testutil) y para registrar colectores extra.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}
