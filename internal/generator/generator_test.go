package generator

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/plan"
)

func mustConfig(t *testing.T, doc string) *plan.Config {
	t.Helper()
	cfg, err := plan.Parse([]byte(doc))
	require.NoError(t, err)
	return cfg
}

func newGen(t *testing.T, doc string, typ dtype.Type, seed uint64) *Generator {
	t.Helper()
	g, err := New(mustConfig(t, doc), typ, NewRand(&seed))
	require.NoError(t, err)
	return g
}

func TestNew_RejectsInvalidType(t *testing.T) {
	_, err := New(mustConfig(t, `{}`), dtype.Invalid, nil)
	assert.ErrorIs(t, err, dtype.ErrUnsupportedType)
}

func TestRoundUp(t *testing.T) {
	assert.Equal(t, 0, RoundUp(0, 4))
	assert.Equal(t, 4, RoundUp(1, 4))
	assert.Equal(t, 4, RoundUp(4, 4))
	assert.Equal(t, 8, RoundUp(5, 4))
	assert.Equal(t, 5, RoundUp(5, 1))
}

func TestWindow(t *testing.T) {
	lo, hi, ok := Window(3, 17, 4)
	require.True(t, ok)
	assert.Equal(t, 4, lo)
	assert.Equal(t, 16, hi)

	_, _, ok = Window(5, 7, 4)
	assert.False(t, ok, "no multiple of 4 in [5,7]")

	lo, hi, ok = Window(0, 3, 4)
	require.True(t, ok)
	assert.Equal(t, 0, lo)
	assert.Equal(t, 0, hi)
}

func TestPadding(t *testing.T) {
	assert.Equal(t, 0, Padding(12, 4, 1))
	assert.Equal(t, 0, Padding(12, 4, 6))
	assert.Equal(t, 2, Padding(10, 1, 4), "plain shortfall when bufferMultiple is 1")
	assert.Equal(t, 4, Padding(8, 4, 6), "steps of bufferMultiple reach lcm")
	assert.Equal(t, 1, Padding(7, 4, 4), "shortfall when the total is off the bufferMultiple grid")
}

func TestBuffers_MultiplesHold(t *testing.T) {
	doc := `{"enableBuffers": true, "minBuffers": 1, "maxBuffers": 20,
	         "minBufferSize": 3, "maxBufferSize": 200,
	         "bufferMultiple": 4, "totalMultiple": 6}`
	for seed := uint64(0); seed < 50; seed++ {
		g := newGen(t, doc, dtype.Int16, seed)
		chunks, err := g.Buffers()
		require.NoError(t, err)
		require.NotEmpty(t, chunks)

		total := 0
		for i, c := range chunks {
			n := c.Buffer.Elements()
			assert.Zero(t, n%4, "seed %d buffer %d has %d elements", seed, i, n)
			assert.Len(t, c.Values, n)
			total += n
		}
		assert.Zero(t, total%6, "seed %d total %d", seed, total)
	}
}

func TestBuffers_TotalMultiplePadsLastBuffer(t *testing.T) {
	doc := `{"enableBuffers": true, "minBuffers": 3, "maxBuffers": 3,
	         "minBufferSize": 5, "maxBufferSize": 5, "totalMultiple": 7}`
	g := newGen(t, doc, dtype.Uint8, 1)
	chunks, err := g.Buffers()
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 5, chunks[0].Buffer.Elements())
	assert.Equal(t, 5, chunks[1].Buffer.Elements())
	assert.Equal(t, 11, chunks[2].Buffer.Elements(), "15 padded to 21")
}

func TestBuffers_SingleElementBoundary(t *testing.T) {
	doc := `{"enableBuffers": true, "minBuffers": 1, "maxBuffers": 1,
	         "minBufferSize": 4, "maxBufferSize": 4, "minValue": -5, "maxValue": 5}`
	for seed := uint64(0); seed < 20; seed++ {
		g := newGen(t, doc, dtype.Int32, seed)
		chunks, err := g.Buffers()
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		require.Equal(t, 1, chunks[0].Buffer.Elements())

		v := chunks[0].Values[0]
		assert.GreaterOrEqual(t, v, -5.0)
		assert.LessOrEqual(t, v, 5.0)
	}
}

func TestBuffers_Int32Scenario(t *testing.T) {
	doc := `{"enableBuffers": true, "minBuffers": 2, "maxBuffers": 2,
	         "minBufferSize": 8, "maxBufferSize": 8, "bufferMultiple": 4, "totalMultiple": 1}`
	g := newGen(t, doc, dtype.Int32, 7)
	chunks, err := g.Buffers()
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.Equal(t, 2, c.Buffer.Elements())
		assert.Len(t, c.Buffer.Data, 8)
	}
}

func TestBuffers_ValuesMatchEncoding(t *testing.T) {
	for _, typ := range dtype.All {
		t.Run(typ.String(), func(t *testing.T) {
			g := newGen(t, `{"minBuffers": 4, "maxBuffers": 4}`, typ, 3)
			chunks, err := g.Buffers()
			require.NoError(t, err)

			lo, hi := typ.Range()
			for _, c := range chunks {
				decoded, err := c.Buffer.Values()
				require.NoError(t, err)
				assert.Equal(t, c.Values, decoded)
				for _, v := range c.Values {
					assert.GreaterOrEqual(t, v, lo)
					assert.LessOrEqual(t, v, hi)
				}
			}
		})
	}
}

func TestBuffers_Deterministic(t *testing.T) {
	doc := `{"minBuffers": 2, "maxBuffers": 9}`
	a, err := newGen(t, doc, dtype.Uint16, 99).Buffers()
	require.NoError(t, err)
	b, err := newGen(t, doc, dtype.Uint16, 99).Buffers()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLabelIndexes(t *testing.T) {
	g := newGen(t, `{"minLabels": 50, "maxLabels": 50}`, dtype.Uint8, 5)
	indexes := g.LabelIndexes(30)

	require.NotEmpty(t, indexes)
	assert.LessOrEqual(t, len(indexes), 30, "duplicates are dropped")
	for i := 1; i < len(indexes); i++ {
		assert.Less(t, indexes[i-1], indexes[i], "strictly ascending")
	}
	for _, idx := range indexes {
		assert.Less(t, idx, uint64(30))
	}
}

func TestLabelIndexes_EmptyStream(t *testing.T) {
	g := newGen(t, `{}`, dtype.Uint8, 5)
	assert.Empty(t, g.LabelIndexes(0))
}

func TestLabels(t *testing.T) {
	g := newGen(t, `{"minLabels": 5, "maxLabels": 5, "minLabelSize": 3, "maxLabelSize": 6}`, dtype.Uint8, 8)
	labels := g.Labels(1000)

	require.NotEmpty(t, labels)
	for _, l := range labels {
		assert.Equal(t, "id"+strconv.FormatUint(l.Index, 10), l.ID)
		assert.GreaterOrEqual(t, len(l.Data), 3)
		assert.LessOrEqual(t, len(l.Data), 6)
	}
}

func TestLocate(t *testing.T) {
	lengths := []int{3, 0, 4}

	tests := []struct {
		index  uint64
		packet int
		rel    uint64
		ok     bool
	}{
		{0, 0, 0, true},
		{2, 0, 2, true},
		{3, 2, 0, true},
		{6, 2, 3, true},
		{7, 3, 0, false},
	}
	for _, tt := range tests {
		packet, rel, ok := Locate(tt.index, lengths)
		assert.Equal(t, tt.ok, ok, "index %d", tt.index)
		assert.Equal(t, tt.packet, packet, "index %d", tt.index)
		assert.Equal(t, tt.rel, rel, "index %d", tt.index)
	}
}

func TestMessages(t *testing.T) {
	g := newGen(t, `{"minMessages": 4, "maxMessages": 4, "minMessageSize": 0, "maxMessageSize": 12}`, dtype.Uint8, 11)
	msgs := g.Messages()

	require.Len(t, msgs, 4)
	for _, m := range msgs {
		assert.LessOrEqual(t, len(m), 12)
	}
}

func TestString_Alphabet(t *testing.T) {
	g := newGen(t, `{}`, dtype.Uint8, 2)
	s := g.String(500)

	require.Len(t, s, 500)
	for _, r := range s {
		assert.Contains(t, alphanumerics, string(r))
	}
	assert.Empty(t, g.String(0))
}
