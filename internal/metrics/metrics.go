package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the workflow counters exposed on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	Hires                *prometheus.CounterVec
	MilestoneTransitions *prometheus.CounterVec
	InvoicesIssued       prometheus.Counter
}

// New registers the workflow counters on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Hires: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbridge_hires_total",
			Help: "Hire transactions, by outcome.",
		}, []string{"outcome"}),
		MilestoneTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workbridge_milestone_transitions_total",
			Help: "Successful milestone transitions, by target state.",
		}, []string{"to"}),
		InvoicesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "workbridge_invoices_issued_total",
			Help: "Invoices created by the payment gateway.",
		}),
	}
	reg.MustRegister(m.Hires, m.MilestoneTransitions, m.InvoicesIssued)
	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
