package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/stream"
)

func encode(t *testing.T, typ dtype.Type, values ...float64) stream.Buffer {
	t.Helper()
	data, err := typ.EncodeAll(values)
	require.NoError(t, err)
	return stream.Buffer{Type: typ, Data: data}
}

func TestMarshal_RoundTripsEveryKind(t *testing.T) {
	buf := encode(t, dtype.Float32, 1.5, -2)
	data, err := marshalBuffer(buf)
	require.NoError(t, err)
	gotBuf, err := unmarshalBuffer(data)
	require.NoError(t, err)
	assert.Equal(t, buf, gotBuf)

	lbl := stream.Label{ID: "id7", Data: "xyz", Index: 7}
	data, err = marshalLabel(lbl)
	require.NoError(t, err)
	gotLbl, err := unmarshalLabel(data)
	require.NoError(t, err)
	assert.Equal(t, lbl, gotLbl)

	data, err = marshalMessage("hello")
	require.NoError(t, err)
	gotMsg, err := unmarshalMessage(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", gotMsg)

	pkt := stream.Packet{Payload: encode(t, dtype.Uint8, 1, 2, 3), Labels: []stream.Label{{ID: "id1", Data: "a", Index: 1}}}
	data, err = marshalPacket(pkt)
	require.NoError(t, err)
	gotPkt, err := unmarshalPacket(data)
	require.NoError(t, err)
	assert.Equal(t, pkt, gotPkt)
}

func TestUnmarshal_RejectsBadPayloads(t *testing.T) {
	_, err := unmarshalBuffer([]byte{0xc1})
	assert.Error(t, err)

	data, err := marshalPacket(stream.Packet{Payload: stream.Buffer{Type: dtype.Invalid}})
	require.NoError(t, err)
	_, err = unmarshalPacket(data)
	assert.ErrorIs(t, err, dtype.ErrUnsupportedType)
}

func TestRecorder_RecordsAndForwards(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s)

	c := golden.NewCollector()
	r := s.NewRecorder(ctx, run.ID, c, nil)

	r.PostLabel(stream.Label{ID: "id1", Data: "L", Index: 1})
	r.PostBuffer(encode(t, dtype.Int16, 10, 20, 30))
	r.PostMessage("m")
	r.PostPacket(stream.Packet{Payload: encode(t, dtype.Int16, 4)})
	require.NoError(t, r.Err())
	assert.Equal(t, int64(4), r.Recorded())
	assert.Equal(t, uint64(3), r.TotalElements())
	assert.Equal(t, c.MinElements(), r.MinElements())

	emissions, err := s.ReadEmissions(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, emissions, 4)
	assert.Equal(t, stream.KindLabel, emissions[0].Kind)
	assert.Equal(t, stream.KindBuffer, emissions[1].Kind)
	assert.Equal(t, uint64(0), emissions[1].Total)
	assert.Equal(t, uint64(3), emissions[2].Total)

	replayed := golden.NewCollector()
	n, err := s.ReplayInto(ctx, run.ID, replayed)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.NoError(t, golden.Compare(c.Observed(), replayed.Observed()))
}

func TestRecorder_KeepsFirstError(t *testing.T) {
	s := createTestStore(t)
	c := golden.NewCollector()
	r := s.NewRecorder(context.Background(), "no-such-run", c, nil)

	r.PostMessage("lost")
	r.PostMessage("also lost")
	assert.Error(t, r.Err())
	assert.Len(t, c.Events(), 2, "posts are forwarded even when recording fails")
}

func TestVerify(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	b := golden.NewBuilder()
	b.AddValues(1, 2)
	b.AddLabel(golden.LabelRecord{Index: 1, Data: "d", ID: "id1"})
	want, err := b.Result().Marshal()
	require.NoError(t, err)

	run, err := s.CreateRun(ctx, dtype.Int8, []byte(`{}`), string(want))
	require.NoError(t, err)

	r := s.NewRecorder(ctx, run.ID, golden.NewCollector(), nil)
	r.PostLabel(stream.Label{ID: "id1", Data: "d", Index: 1})
	r.PostBuffer(encode(t, dtype.Int8, 1, 2))
	require.NoError(t, r.Err())
	assert.NoError(t, s.Verify(ctx, run.ID))

	bad, err := s.CreateRun(ctx, dtype.Int8, []byte(`{}`), string(want))
	require.NoError(t, err)
	r = s.NewRecorder(ctx, bad.ID, golden.NewCollector(), nil)
	r.PostBuffer(encode(t, dtype.Int8, 1, 3))

	err = s.Verify(ctx, bad.ID)
	var m *golden.Mismatch
	require.ErrorAs(t, err, &m)
	assert.Equal(t, golden.KeyValues, m.Section)

	assert.ErrorIs(t, s.Verify(ctx, "missing"), ErrNotFound)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())

	resumed := NewClockAt(10)
	assert.Equal(t, int64(11), resumed.Next())
}
