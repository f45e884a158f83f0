package observability_test

import (
	"context"
	"testing"

	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestMetricsHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks := observability.NewMetrics(reg).Hooks()
	ctx := context.Background()

	hooks.OnStepView(ctx, &domain.StepEvent{Flow: "arrange", Step: "type"})
	hooks.OnStepView(ctx, &domain.StepEvent{Flow: "arrange", Step: "type"})
	hooks.OnStepComplete(ctx, &domain.StepEvent{Flow: "arrange", Step: "type"})
	hooks.OnSessionReset(ctx, &domain.StepEvent{Flow: "arrange", Reason: "flow closed"})
	hooks.OnValidationFail(ctx, &domain.StepEvent{Flow: "arrange", Step: "when"})

	assert.Equal(t, 2.0, counterValue(t, reg, "stile_step_views_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "stile_step_completions_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "stile_session_resets_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "stile_validation_failures_total"))
}
