package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/store"
	"github.com/roach88/streamfeed/internal/stream"
)

func loadScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestRun_Scenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(context.Background(), s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Len(t, result.Rounds, s.rounds())
		})
	}
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"fixed_buffers", "fixed_packet"} {
		t.Run(name, func(t *testing.T) {
			result, err := RunWithGolden(t, loadScenario(t, name))
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_StallCountsBlockedSteps(t *testing.T) {
	s := loadScenario(t, "mixed_stream")

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	for i, r := range result.Rounds {
		assert.Equal(t, s.Stall, r.Steps.Blocked, "round %d", i)
		assert.Positive(t, r.Steps.Emitted, "round %d", i)
	}
}

func TestRun_EmptyPlanOnlyIdles(t *testing.T) {
	result, err := Run(context.Background(), loadScenario(t, "empty"))
	require.NoError(t, err)
	require.Len(t, result.Rounds, 1)

	r := result.Rounds[0]
	assert.Equal(t, "{}", r.Golden)
	assert.Equal(t, StepCounts{Idle: 1}, r.Steps)
	assert.Empty(t, r.Events)
}

func TestRun_ReportsFailedAssertions(t *testing.T) {
	s := loadScenario(t, "fixed_buffers")
	wrong := 5
	s.Assertions = []Assertion{
		{Type: AssertElementCount, Count: &wrong},
		{Type: AssertEmptyResult},
		{Type: AssertLabelsInPacket},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2, "labels_in_packet holds vacuously without labels")
	assert.Contains(t, result.Errors[0], "element_count")
	assert.Contains(t, result.Errors[1], "empty_result")
	assert.Contains(t, result.Errors[1], "round 0")
}

func TestRun_WithStoreRecordsEveryRound(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	s := loadScenario(t, "mixed_stream")
	result, err := Run(ctx, s, WithStore(st))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	runs, err := st.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, s.rounds())
	for i, run := range runs {
		assert.Equal(t, "int8", run.DType)
		assert.Equal(t, result.Rounds[i].Golden, run.Golden)

		counts, err := st.CountEmissions(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, len(result.Rounds[i].Events), counts[stream.KindBuffer]+counts[stream.KindLabel]+counts[stream.KindMessage])
	}
}

func TestRun_RejectsBadPlan(t *testing.T) {
	s := loadScenario(t, "empty")
	s.Plan = map[string]any{"enableBuffers": "sometimes"}

	_, err := Run(context.Background(), s)
	assert.Error(t, err)
}
