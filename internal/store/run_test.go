package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/streamfeed/internal/stream"
)

func TestCreateRun_AssignsIDAndSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first := createTestRun(t, s)
	second := createTestRun(t, s)

	id, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)

	got, err := s.ReadRun(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)
	assert.Equal(t, "int16", got.DType)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListRuns(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	a := createTestRun(t, s)
	b := createTestRun(t, s)
	runs, err = s.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Run{a, b}, runs)
}

func TestWriteEmission_IdempotentAndOrdered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s)

	for _, e := range []Emission{
		{RunID: run.ID, Seq: 2, Kind: stream.KindMessage, Total: 0, Payload: []byte{2}},
		{RunID: run.ID, Seq: 1, Kind: stream.KindLabel, Total: 0, Payload: []byte{1}},
		{RunID: run.ID, Seq: 1, Kind: stream.KindBuffer, Total: 9, Payload: []byte{9}},
	} {
		require.NoError(t, s.WriteEmission(ctx, e))
	}

	got, err := s.ReadEmissions(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, stream.KindLabel, got[0].Kind, "first write for a seq wins")
	assert.Equal(t, []byte{1}, got[0].Payload)
	assert.Equal(t, stream.KindMessage, got[1].Kind)

	counts, err := s.CountEmissions(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, map[stream.Kind]int{stream.KindLabel: 1, stream.KindMessage: 1}, counts)
}

func TestWriteEmission_Constraints(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.WriteEmission(ctx, Emission{RunID: "missing", Seq: 1, Kind: stream.KindBuffer, Payload: []byte{}})
	assert.Error(t, err, "foreign key to runs")

	run := createTestRun(t, s)
	err = s.WriteEmission(ctx, Emission{RunID: run.ID, Seq: 1, Kind: "bogus", Payload: []byte{}})
	assert.Error(t, err, "kind check constraint")
}

func TestDeleteRun_Cascades(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	run := createTestRun(t, s)
	require.NoError(t, s.WriteEmission(ctx, Emission{RunID: run.ID, Seq: 1, Kind: stream.KindMessage, Payload: []byte{0}}))

	require.NoError(t, s.DeleteRun(ctx, run.ID))
	emissions, err := s.ReadEmissions(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, emissions)

	err = s.DeleteRun(ctx, run.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}
