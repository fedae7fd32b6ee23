package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/stream"
)

// Recorder is a stream.Output that appends every post to a run's emission
// log before forwarding it to the wrapped output.
//
// Output methods cannot fail, so the first storage error is kept and
// reported by Err. Posts are still forwarded after a failure.
type Recorder struct {
	store *Store
	ctx   context.Context
	runID string
	next  stream.Output
	clock *Clock
	log   *zap.Logger

	mu  sync.Mutex
	err error
}

var _ stream.Output = (*Recorder)(nil)

// NewRecorder records posts for runID into s and forwards them to next.
func (s *Store) NewRecorder(ctx context.Context, runID string, next stream.Output, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{
		store: s,
		ctx:   ctx,
		runID: runID,
		next:  next,
		clock: NewClock(),
		log:   log.With(zap.String("run_id", runID)),
	}
}

// MinElements implements stream.Output.
func (r *Recorder) MinElements() int {
	return r.next.MinElements()
}

// TotalElements implements stream.Output.
func (r *Recorder) TotalElements() uint64 {
	return r.next.TotalElements()
}

// PostBuffer implements stream.Output.
func (r *Recorder) PostBuffer(b stream.Buffer) {
	payload, err := marshalBuffer(b)
	r.record(stream.KindBuffer, payload, err)
	r.next.PostBuffer(b)
}

// PostLabel implements stream.Output.
func (r *Recorder) PostLabel(l stream.Label) {
	payload, err := marshalLabel(l)
	r.record(stream.KindLabel, payload, err)
	r.next.PostLabel(l)
}

// PostMessage implements stream.Output.
func (r *Recorder) PostMessage(m stream.Message) {
	payload, err := marshalMessage(m)
	r.record(stream.KindMessage, payload, err)
	r.next.PostMessage(m)
}

// PostPacket implements stream.Output.
func (r *Recorder) PostPacket(p stream.Packet) {
	payload, err := marshalPacket(p)
	r.record(stream.KindPacket, payload, err)
	r.next.PostPacket(p)
}

func (r *Recorder) record(kind stream.Kind, payload []byte, err error) {
	if err == nil {
		err = r.store.WriteEmission(r.ctx, Emission{
			RunID:   r.runID,
			Seq:     r.clock.Next(),
			Kind:    kind,
			Total:   r.next.TotalElements(),
			Payload: payload,
		})
	}
	if err == nil {
		return
	}

	r.log.Error("record emission failed", zap.String("kind", string(kind)), zap.Error(err))
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

// Err returns the first recording failure, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Recorded returns how many emissions have been stamped.
func (r *Recorder) Recorded() int64 {
	return r.clock.Current()
}
