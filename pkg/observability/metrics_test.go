package observability_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/onboarding"
	"github.com/aretw0/onboarding/internal/logging"
	"github.com/aretw0/onboarding/pkg/domain"
	"github.com/aretw0/onboarding/pkg/observability"
)

func twoSteps(reject bool) []domain.Step {
	return []domain.Step{
		{
			Name:     "name",
			Fields:   []domain.Field{{Name: "name", Label: "Name", Kind: domain.KindText}},
			Required: []string{"name"},
			Handler: func(context.Context, domain.Values) (domain.Outcome, error) {
				if reject {
					return domain.Reject("name", "taken"), nil
				}
				return domain.Advance(), nil
			},
		},
		{
			Name:   "done",
			Fields: []domain.Field{{Name: "note", Label: "Note", Kind: domain.KindText, Optional: true}},
		},
	}
}

func TestMetrics_Hooks(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	w := onboarding.NewWizard("demo", twoSteps(false), onboarding.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, w.SetField("name", "ada"))
	require.Equal(t, domain.ProgressAdvanced, w.Advance(ctx))
	require.Equal(t, domain.ProgressCompleted, w.Advance(ctx))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsEntered.WithLabelValues("demo", "name")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StepsEntered.WithLabelValues("demo", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerOutcomes.WithLabelValues("demo", "name", observability.OutcomeAdvanced)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Completions.WithLabelValues("demo")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HandlerDuration))
}

func TestMetrics_Rejected(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)

	w := onboarding.NewWizard("demo", twoSteps(true), onboarding.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, w.SetField("name", "ada"))
	assert.Equal(t, domain.ProgressRejected, w.Advance(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HandlerOutcomes.WithLabelValues("demo", "name", observability.OutcomeRejected)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Completions.WithLabelValues("demo")))
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetricsWith(reg, reg)
	require.NoError(t, err)

	_, err = observability.NewMetricsWith(reg, reg)
	assert.Error(t, err)
}

func TestMetrics_Handler(t *testing.T) {
	m, err := observability.NewMetrics()
	require.NoError(t, err)
	m.Completions.WithLabelValues("signup").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `onboard_completions_total{wizard="signup"} 1`)
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, observability.OutcomeAdvanced, observability.OutcomeOf(&domain.HandlerEvent{Outcome: domain.Advance()}))
	assert.Equal(t, observability.OutcomeRejected, observability.OutcomeOf(&domain.HandlerEvent{Outcome: domain.Reject("f", "m")}))
	assert.Equal(t, observability.OutcomeError, observability.OutcomeOf(&domain.HandlerEvent{Err: errors.New("boom")}))
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(slog.LevelDebug, logging.WithOutput(&buf), logging.WithJSON(true))

	hooks := domain.MergeHooks(observability.LogHooks(logger))
	ctx := context.Background()
	hooks.OnHandlerReturn(ctx, &domain.HandlerEvent{
		EventBase: domain.EventBase{Wizard: "signup", SessionID: "s1"},
		StepName:  "email",
		Duration:  5 * time.Millisecond,
		Err:       errors.New("gateway down"),
	})
	hooks.OnComplete(ctx, &domain.StepEvent{EventBase: domain.EventBase{Wizard: "signup"}, Step: 5})

	out := buf.String()
	assert.Contains(t, out, `"msg":"handler_return"`)
	assert.Contains(t, out, `"outcome":"error"`)
	assert.Contains(t, out, `"err":"gateway down"`)
	assert.Contains(t, out, `"msg":"wizard_complete"`)
}
