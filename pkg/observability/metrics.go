package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fewston/stile/pkg/domain"
)

// Metrics holds the wizard metric set.
type Metrics struct {
	stepViews          *prometheus.CounterVec
	stepCompletions    *prometheus.CounterVec
	sessionResets      *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
}

// NewMetrics creates and registers the metric set.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepViews: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stile_step_views_total",
				Help: "Total number of wizard step views",
			},
			[]string{"flow", "step"},
		),
		stepCompletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stile_step_completions_total",
				Help: "Total number of wizard step completions",
			},
			[]string{"flow", "step"},
		),
		sessionResets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stile_session_resets_total",
				Help: "Total number of wizard session resets by reason",
			},
			[]string{"flow", "reason"},
		),
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stile_validation_failures_total",
				Help: "Total number of failed step submissions",
			},
			[]string{"flow", "step"},
		),
	}
	reg.MustRegister(m.stepViews, m.stepCompletions, m.sessionResets, m.validationFailures)
	return m
}

// Hooks returns lifecycle hooks feeding the metric set. Combine with any
// logging hooks at the call site if both are wanted.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepView: func(_ context.Context, ev *domain.StepEvent) {
			m.stepViews.WithLabelValues(ev.Flow, string(ev.Step)).Inc()
		},
		OnStepComplete: func(_ context.Context, ev *domain.StepEvent) {
			m.stepCompletions.WithLabelValues(ev.Flow, string(ev.Step)).Inc()
		},
		OnSessionReset: func(_ context.Context, ev *domain.StepEvent) {
			m.sessionResets.WithLabelValues(ev.Flow, ev.Reason).Inc()
		},
		OnValidationFail: func(_ context.Context, ev *domain.StepEvent) {
			m.validationFailures.WithLabelValues(ev.Flow, string(ev.Step)).Inc()
		},
	}
}
