package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores del servicio sobre un registry propio
// (así los tests pueden crear varios routers sin colisiones).
type Metrics struct {
	registry *prometheus.Registry

	CaseTransitions *prometheus.CounterVec
	Proposals       *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		CaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advogados",
			Name:      "case_transitions_total",
			Help:      "Case status transitions by target status.",
		}, []string{"status"}),
		Proposals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advogados",
			Name:      "proposals_total",
			Help:      "Proposal operations by outcome.",
		}, []string{"op", "outcome"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advogados",
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "advogados",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status class.",
		}, []string{"method", "code"}),
	}
	reg.MustRegister(
		m.CaseTransitions,
		m.Proposals,
		m.Logins,
		m.HTTPRequests,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Los helpers toleran receptor nil para que los servicios no dependan de métricas.

func (m *Metrics) CaseTransition(status string) {
	if m == nil {
		return
	}
	m.CaseTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) Proposal(op, outcome string) {
	if m == nil {
		return
	}
	m.Proposals.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) Login(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Request(method, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, code).Inc()
}
