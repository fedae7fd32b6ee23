package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/store"
)

func TestReplayMissingDatabaseFlag(t *testing.T) {
	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayEmptyDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No runs found in database.")
}

func TestReplayRecordedRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.yaml", fixedPlan)
	dbPath := filepath.Join(dir, "runs.db")

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--dtype", "int16", "--db", dbPath, path)
	require.NoError(t, err)

	out, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   ReplayResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.AllVerified)
	require.Len(t, resp.Data.Runs, 1)
	assert.Equal(t, 3, resp.Data.Runs[0].Emissions)
	assert.Equal(t, "int16", resp.Data.Runs[0].DType)

	out, err = execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", resp.Data.Runs[0].RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "All 1 run(s) verified")
}

func TestReplayDetectsMismatch(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	_, err = st.CreateRun(t.Context(), dtype.Uint8, []byte(`{}`), `{"expectedValues":[1]}`)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "expectedValues")
	assert.Contains(t, out, "Replay verification FAILED")
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	_, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
