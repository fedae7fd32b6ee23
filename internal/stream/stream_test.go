package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/dtype"
)

func TestBuffer_Elements(t *testing.T) {
	assert.Equal(t, 3, NewBuffer(dtype.Uint32, 3).Elements())
	assert.Len(t, NewBuffer(dtype.Uint32, 3).Data, 12)

	// A trailing partial element is not counted.
	assert.Equal(t, 1, Buffer{Type: dtype.Int16, Data: []byte{1, 2, 3}}.Elements())
	assert.Equal(t, 0, Buffer{Type: dtype.Invalid, Data: []byte{1}}.Elements())
}

func TestBuffer_Values(t *testing.T) {
	data, err := dtype.Int16.EncodeAll([]float64{-2, 300})
	require.NoError(t, err)

	values, err := Buffer{Type: dtype.Int16, Data: data}.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, 300}, values)
}

func TestLabelID(t *testing.T) {
	assert.Equal(t, "id0", LabelID(0))
	assert.Equal(t, "id4294967296", LabelID(1<<32))
}
