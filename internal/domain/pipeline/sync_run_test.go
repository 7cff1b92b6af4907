package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNameIsValid(t *testing.T) {
	for _, s := range AllSteps() {
		assert.True(t, s.IsValid(), "step %s should be valid", s)
	}
	assert.False(t, StepName("export_amazon").IsValid())
	assert.False(t, StepName("").IsValid())
}

func TestRecordStepReplacesPriorResult(t *testing.T) {
	run := NewSyncRun()

	first := StepResult{
		Status:   StepStatusFailed,
		Error:    "stock extract not found",
		Counters: map[string]int{"considered": 0},
	}
	require.NoError(t, run.RecordStep(StepParseMerge, first))
	assert.Equal(t, RunStatusFailed, run.Status)
	assert.Equal(t, "stock extract not found", run.LastError())

	second := StepResult{
		Status:   StepStatusSuccess,
		Counters: map[string]int{"considered": 10, "kept": 7},
	}
	require.NoError(t, run.RecordStep(StepParseMerge, second))

	assert.Len(t, run.Steps, 1, "re-running a step must replace, not accumulate")
	assert.Equal(t, StepStatusSuccess, run.Steps[StepParseMerge].Status)
	assert.Empty(t, run.Steps[StepParseMerge].Error)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.Equal(t, StepParseMerge, run.CurrentStep)
}

func TestRecordStepMergesMetricsLaterWins(t *testing.T) {
	run := NewSyncRun()

	require.NoError(t, run.RecordStep(StepParseMerge, StepResult{
		Status:   StepStatusSuccess,
		Counters: map[string]int{"kept": 5, "considered": 8},
	}))
	require.NoError(t, run.RecordStep(StepPricing, StepResult{
		Status:   StepStatusSuccess,
		Counters: map[string]int{"kept": 4, "priced": 4},
	}))

	assert.Equal(t, 4, run.Metrics["kept"], "later step value wins on key collision")
	assert.Equal(t, 8, run.Metrics["considered"])
	assert.Equal(t, 4, run.Metrics["priced"])
}

func TestRecordStepRejectsUnknownStep(t *testing.T) {
	run := NewSyncRun()
	err := run.RecordStep(StepName("nonsense"), StepResult{Status: StepStatusSuccess})
	assert.Error(t, err)
	assert.Empty(t, run.Steps)
}

func TestRunCompletesWhenAllStepsSucceed(t *testing.T) {
	run := NewSyncRun()
	for _, s := range AllSteps() {
		require.NoError(t, run.RecordStep(s, StepResult{Status: StepStatusSuccess}))
	}
	assert.Equal(t, RunStatusCompleted, run.Status)
}

func TestStepsJSONRoundTrip(t *testing.T) {
	run := NewSyncRun()
	require.NoError(t, run.RecordStep(StepPricing, StepResult{
		Status:     StepStatusSuccess,
		Duration:   1500 * time.Millisecond,
		Counters:   map[string]int{"priced": 42},
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}))

	stepsJSON, err := run.StepsJSON()
	require.NoError(t, err)
	metricsJSON, err := run.MetricsJSON()
	require.NoError(t, err)

	restored := NewSyncRun()
	require.NoError(t, restored.SetStepsFromJSON(stepsJSON))
	require.NoError(t, restored.SetMetricsFromJSON(metricsJSON))

	assert.Equal(t, run.Steps[StepPricing].Counters, restored.Steps[StepPricing].Counters)
	assert.Equal(t, run.Metrics, restored.Metrics)
}
