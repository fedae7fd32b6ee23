package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/store"
)

func TestRunCommand_Text(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.yaml", fixedPlan)

	out, err := execute(NewRunCommand(&RootOptions{Format: "text"}), "--dtype", "int16", path)
	require.NoError(t, err)
	assert.Contains(t, out, "dtype int16: 4 elements, 2 buffers, 0 labels, 1 messages, 0 packets\n")
	assert.Contains(t, out, "✓ output matches golden result")
}

func TestRunCommand_RecordsRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "plan.yaml", fixedPlan)
	dbPath := filepath.Join(dir, "runs.db")

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}),
		"--dtype", "int16", "--db", dbPath, "--max-timeout", "1ms", path)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Match)
	assert.NotEmpty(t, resp.Data.RunID)
	assert.Equal(t, uint64(4), resp.Data.Elements)
	assert.Equal(t, map[string]int{"buffer": 2, "label": 0, "message": 1, "packet": 0}, resp.Data.Posts)
	assert.Equal(t, 3, resp.Data.Steps.Emitted)
	assert.JSONEq(t, fixedGolden, string(resp.Data.Golden))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(t.Context(), resp.Data.RunID)
	require.NoError(t, err)
	assert.Equal(t, fixedGolden, run.Golden)
	require.NoError(t, st.Verify(t.Context(), run.ID))
}

func TestRunCommand_BlockedConsumerTimesOut(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.yaml", fixedPlan)

	_, err := execute(NewRunCommand(&RootOptions{Format: "text"}),
		"--capacity", "0", "--timeout", "20ms", "--max-timeout", "1ms", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "drain did not finish")
}

func TestRunCommand_BadPlanJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "plan.json", `{"minBuffers": "two"}`)

	out, err := execute(NewRunCommand(&RootOptions{Format: "json"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodePlanInvalid, resp.Error.Code)
}
