package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/onboarding/pkg/domain"
)

const namespace = "onboard"

// Handler outcome labels.
const (
	OutcomeAdvanced = "advanced"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Metrics holds the collectors fed by the engine's lifecycle hooks.
type Metrics struct {
	StepsEntered    *prometheus.CounterVec
	Completions     *prometheus.CounterVec
	HandlerDuration *prometheus.HistogramVec
	HandlerOutcomes *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() (*Metrics, error) {
	reg := prometheus.NewRegistry()
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the collectors on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) (*Metrics, error) {
	m := &Metrics{
		StepsEntered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_entered_total",
			Help:      "Number of times a wizard step became active.",
		}, []string{"wizard", "step"}),
		Completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Number of wizards that reached the terminal state.",
		}, []string{"wizard"}),
		HandlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Duration of step handler calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"wizard", "step"}),
		HandlerOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_outcomes_total",
			Help:      "Step handler results by outcome.",
		}, []string{"wizard", "step", "outcome"}),
		gatherer: g,
	}

	for _, c := range []prometheus.Collector{m.StepsEntered, m.Completions, m.HandlerDuration, m.HandlerOutcomes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.StepsEntered.WithLabelValues(e.Wizard, e.StepName).Inc()
		},
		OnHandlerReturn: func(_ context.Context, e *domain.HandlerEvent) {
			m.HandlerDuration.WithLabelValues(e.Wizard, e.StepName).Observe(e.Duration.Seconds())
			m.HandlerOutcomes.WithLabelValues(e.Wizard, e.StepName, OutcomeOf(e)).Inc()
		},
		OnComplete: func(_ context.Context, e *domain.StepEvent) {
			m.Completions.WithLabelValues(e.Wizard).Inc()
		},
	}
}

// OutcomeOf classifies a finished handler call.
func OutcomeOf(e *domain.HandlerEvent) string {
	switch {
	case e.Err != nil:
		return OutcomeError
	case e.Outcome.Rejected:
		return OutcomeRejected
	default:
		return OutcomeAdvanced
	}
}
