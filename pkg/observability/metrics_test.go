package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/storyline"
	"github.com/aretw0/storyline/pkg/adapters/memory"
	"github.com/aretw0/storyline/pkg/domain"
	"github.com/aretw0/storyline/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clock() func() time.Time {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		now = now.Add(250 * time.Millisecond)
		return now
	}
}

func TestMetrics_FedByReporter(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	svc := memory.NewService()
	rep, err := storyline.New(svc, storyline.WithLifecycleHooks(m.Hooks()), storyline.WithClock(clock()))
	require.NoError(t, err)

	ctx := context.Background()
	rep.StartLaunch(ctx, domain.LaunchSpec{Name: "metrics"})
	rep.StartStory(ctx, domain.Story{Name: "S"}, false)
	rep.StartScenario(ctx, "Sc")
	rep.StartStep(ctx, "passes")
	rep.FinishStep(ctx, domain.StatusPassed)
	stepID := rep.StartStep(ctx, "stuck")
	svc.FailItem(stepID, errors.New("boom"))
	rep.FinishStep(ctx, domain.StatusFailed)
	rep.FinishScenario(ctx, domain.StatusFailed)
	rep.FinishStory(ctx)
	rep.FinishLaunch(ctx)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Launches.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Launches.WithLabelValues("finished")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ItemsStarted.WithLabelValues("STEP")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsFinished.WithLabelValues("STEP", "PASSED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemsFinished.WithLabelValues("SCENARIO", "FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ItemFailures.WithLabelValues("STEP", "finish")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ServiceDown))

	assert.Equal(t, 3, testutil.CollectAndCount(m.ItemDuration))

	problems, err := testutil.CollectAndLint(m.ItemsFinished)
	require.NoError(t, err)
	assert.Empty(t, problems)

	expected := `
# HELP storyline_items_started_total Items successfully started, by type.
# TYPE storyline_items_started_total counter
storyline_items_started_total{type="SCENARIO"} 1
storyline_items_started_total{type="STEP"} 2
storyline_items_started_total{type="STORY"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storyline_items_started_total"))
}

func TestMetrics_ServiceDown(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)

	svc := memory.NewService()
	svc.SetDown(true)
	rep, err := storyline.New(svc, storyline.WithLifecycleHooks(m.Hooks()))
	require.NoError(t, err)

	rep.StartLaunch(context.Background(), domain.LaunchSpec{Name: "down"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceDown))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Launches.WithLabelValues("start_failed")))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestComposeHooks(t *testing.T) {
	var calls []string
	a := domain.LifecycleHooks{
		OnItemStart: func(context.Context, *domain.ItemEvent) { calls = append(calls, "a") },
	}
	b := domain.LifecycleHooks{
		OnItemStart:   func(context.Context, *domain.ItemEvent) { calls = append(calls, "b") },
		OnServiceDown: func(context.Context, *domain.LaunchEvent) { calls = append(calls, "down") },
	}

	h := observability.ComposeHooks(a, domain.LifecycleHooks{}, b)
	assert.Nil(t, h.OnLaunchStart, "no hook set, nothing to call")

	h.OnItemStart(context.Background(), &domain.ItemEvent{})
	h.OnServiceDown(context.Background(), &domain.LaunchEvent{})
	assert.Equal(t, []string{"a", "b", "down"}, calls)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rep, err := storyline.New(memory.NewService(), storyline.WithLifecycleHooks(observability.LoggingHooks(logger)))
	require.NoError(t, err)

	ctx := context.Background()
	rep.StartLaunch(ctx, domain.LaunchSpec{Name: "logged"})
	rep.StartStory(ctx, domain.Story{Name: "Logged story"}, false)

	out := buf.String()
	assert.Contains(t, out, "msg=launch_start")
	assert.Contains(t, out, "msg=item_start")
	assert.Contains(t, out, `name="Logged story"`)
}
