package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts workflow run outcomes and applied option changes.
type Metrics struct {
	RunsTotal      *prometheus.CounterVec
	OptionsUpdated prometheus.Counter
	OptionsFailed  prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "stockflow_runs_total",
			Help: "Workflow runs finalized, by terminal status.",
		}, []string{"status"}),
		OptionsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_options_updated_total",
			Help: "Marketplace option quantities successfully updated.",
		}),
		OptionsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockflow_options_failed_total",
			Help: "Marketplace option quantity updates that failed.",
		}),
	}
}

// ObserveRun records one finalized run.
func (m *Metrics) ObserveRun(status string, updated, failed int) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.OptionsUpdated.Add(float64(updated))
	m.OptionsFailed.Add(float64(failed))
}
