package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// PlanDoc encodes a plan document as JSON.
func PlanDoc(t testing.TB, plan map[string]any) []byte {
	t.Helper()
	doc, err := json.Marshal(plan)
	require.NoError(t, err)
	return doc
}

// FixedBuffers returns a plan of count buffers of size bytes each, every
// element equal to value. It draws nothing from the random source.
func FixedBuffers(count, size int, value float64) map[string]any {
	return map[string]any{
		"enableBuffers": true,
		"minBuffers":    count,
		"maxBuffers":    count,
		"minBufferSize": size,
		"maxBufferSize": size,
		"minValue":      value,
		"maxValue":      value,
	}
}

// With returns a copy of plan with the given keys set.
func With(plan map[string]any, kv ...any) map[string]any {
	out := make(map[string]any, len(plan)+len(kv)/2)
	for k, v := range plan {
		out[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	return out
}
