package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// fixedPlan needs no randomness: two int16 buffers of two sevens and one
// empty message.
const fixedPlan = `
enableBuffers: true
enableMessages: true
minBuffers: 2
maxBuffers: 2
minBufferSize: 4
maxBufferSize: 4
minValue: 7
maxValue: 7
minMessages: 1
maxMessages: 1
minMessageSize: 0
maxMessageSize: 0
`

const fixedGolden = `{"expectedMessages":[""],"expectedValues":[7,7,7,7]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
