package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collaborator labels for the failure counter.
const (
	CollaboratorStore     = "store"
	CollaboratorRender    = "render"
	CollaboratorNarration = "narration"
	CollaboratorDrafts    = "drafts"
)

// Metrics holds the Prometheus instruments shared by the services.
type Metrics struct {
	RecordsFinalized     prometheus.Counter
	RecordsReviewed      prometheus.Counter
	CollaboratorFailures *prometheus.CounterVec
	ActiveSessions       prometheus.Gauge
}

// NewMetrics registers the instruments with reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsFinalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "records_finalized_total",
			Help:      "Discovery records submitted and persisted",
		}),
		RecordsReviewed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "records_reviewed_total",
			Help:      "Submitted records marked reviewed by an admin",
		}),
		CollaboratorFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "discovery",
			Name:      "collaborator_failures_total",
			Help:      "Failed calls to external collaborators",
		}, []string{"collaborator"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "discovery",
			Name:      "active_sessions",
			Help:      "Wizard and review sessions currently held in memory",
		}),
	}
}

func (m *Metrics) failure(collaborator string) {
	m.CollaboratorFailures.WithLabelValues(collaborator).Inc()
}
