package feeder

import (
	"fmt"
	mrand "math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/generator"
	"github.com/roach88/streamfeed/internal/queue"
	"github.com/roach88/streamfeed/internal/stream"
)

// Feeder queues generated or fed entities and drains them onto an output.
type Feeder struct {
	typ dtype.Type
	log *zap.Logger
	met *feederMetrics

	outMu sync.RWMutex
	out   stream.Output

	// planMu serializes plan builds, which share rng, against each other
	// and against Close.
	planMu sync.Mutex
	rng    *mrand.Rand
	closed atomic.Bool

	buffers  *queue.FIFO[stream.Buffer]
	labels   *queue.FIFO[stream.Label]
	messages *queue.FIFO[stream.Message]
	packets  *queue.FIFO[stream.Packet]
}

// Option configures a Feeder.
type Option func(*options)

type options struct {
	log  *zap.Logger
	reg  prometheus.Registerer
	seed *uint64
	out  stream.Output
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithRegisterer registers the feeder's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithSeed fixes the random source used by plans that carry no seed of their
// own. Successive plans still differ, but the sequence is reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithOutput attaches out at construction.
func WithOutput(out stream.Output) Option {
	return func(o *options) {
		o.out = out
	}
}

// New creates a feeder producing elements of type typ.
func New(typ dtype.Type, opts ...Option) (*Feeder, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %s", dtype.ErrUnsupportedType, typ)
	}

	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	met, err := newFeederMetrics(o.reg)
	if err != nil {
		return nil, fmt.Errorf("register feeder metrics: %w", err)
	}

	f := &Feeder{
		typ:      typ,
		log:      o.log.With(zap.String("dtype", typ.String())),
		met:      met,
		out:      o.out,
		buffers:  queue.New[stream.Buffer](),
		labels:   queue.New[stream.Label](),
		messages: queue.New[stream.Message](),
		packets:  queue.New[stream.Packet](),
	}
	if o.seed != nil {
		f.rng = generator.NewRand(o.seed)
	}
	return f, nil
}

// Type returns the element type the feeder generates.
func (f *Feeder) Type() dtype.Type {
	return f.typ
}

// Attach sets the output Work drains into. Passing nil detaches.
func (f *Feeder) Attach(out stream.Output) {
	f.outMu.Lock()
	defer f.outMu.Unlock()
	f.out = out
}

func (f *Feeder) output() stream.Output {
	f.outMu.RLock()
	defer f.outMu.RUnlock()
	return f.out
}

// FeedBuffer queues a buffer. Feeds after Close are dropped.
func (f *Feeder) FeedBuffer(b stream.Buffer) {
	f.fedOne(stream.KindBuffer, f.buffers.Push(b))
}

// FeedLabel queues a label. Its index is absolute: it is emitted once the
// output's emitted count plus the next buffer's length passes it.
func (f *Feeder) FeedLabel(l stream.Label) {
	f.fedOne(stream.KindLabel, f.labels.Push(l))
}

// FeedMessage queues a message.
func (f *Feeder) FeedMessage(m stream.Message) {
	f.fedOne(stream.KindMessage, f.messages.Push(m))
}

// FeedPacket queues a packet.
func (f *Feeder) FeedPacket(p stream.Packet) {
	f.fedOne(stream.KindPacket, f.packets.Push(p))
}

func (f *Feeder) fedOne(kind stream.Kind, queued bool) {
	if !queued {
		f.log.Warn("feed after close dropped", zap.String("kind", string(kind)))
		return
	}
	f.fed(kind, 1)
}

func (f *Feeder) fed(kind stream.Kind, n int) {
	if n == 0 {
		return
	}
	f.met.recordFed(kind, n)
	f.met.recordDepth(f.Pending())
}

// Pending counts queued entities per kind.
type Pending struct {
	Buffers  int `json:"buffers"`
	Labels   int `json:"labels"`
	Messages int `json:"messages"`
	Packets  int `json:"packets"`
}

// Total returns the number of queued entities of every kind.
func (p Pending) Total() int {
	return p.Buffers + p.Labels + p.Messages + p.Packets
}

// Pending reports the current queue depths.
func (f *Feeder) Pending() Pending {
	return Pending{
		Buffers:  f.buffers.Len(),
		Labels:   f.labels.Len(),
		Messages: f.messages.Len(),
		Packets:  f.packets.Len(),
	}
}

// Close rejects further feeds and plan builds and wakes a pending idle
// backoff. Entities already queued can still be drained. Later idle backoffs
// wait out their full timeout.
func (f *Feeder) Close() {
	f.planMu.Lock()
	defer f.planMu.Unlock()

	f.closed.Store(true)
	f.buffers.Close()
	f.labels.Close()
	f.messages.Close()
	f.packets.Close()
}
