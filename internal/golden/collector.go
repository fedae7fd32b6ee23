package golden

import (
	"fmt"
	"sync"

	"github.com/roach88/streamfeed/internal/stream"
)

// DefaultCapacity is the element capacity a Collector reports unless told
// otherwise.
const DefaultCapacity = 1 << 16

// Event records one post to a Collector.
type Event struct {
	Kind stream.Kind
	// Total is the collector's cumulative element count when the post arrived.
	Total uint64
	// Index is the absolute (window-relative) label index for label posts.
	Index uint64
	// Elements is the payload length for buffer and packet posts.
	Elements int
}

// Collector is an in-memory stream.Output that records everything posted
// and rebuilds the observed Result. It is safe for concurrent use.
type Collector struct {
	mu       sync.Mutex
	capacity int
	total    uint64
	base     uint64
	events   []Event
	observed Builder
	err      error
}

var _ stream.Output = (*Collector)(nil)

// NewCollector creates a collector reporting DefaultCapacity.
func NewCollector() *Collector {
	return &Collector{capacity: DefaultCapacity}
}

// SetCapacity changes the value MinElements reports. Zero marks the output
// full.
func (c *Collector) SetCapacity(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capacity = max(n, 0)
}

// MinElements implements stream.Output.
func (c *Collector) MinElements() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capacity
}

// TotalElements implements stream.Output.
func (c *Collector) TotalElements() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// PostBuffer implements stream.Output.
func (c *Collector) PostBuffer(b stream.Buffer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, Event{Kind: stream.KindBuffer, Total: c.total, Elements: b.Elements()})
	values, err := b.Values()
	if err != nil {
		c.fail(err)
		return
	}
	c.observed.AddValues(values...)
	c.total += uint64(b.Elements())
}

// PostLabel implements stream.Output. The label index is relative to the
// current total.
func (c *Collector) PostLabel(l stream.Label) {
	c.mu.Lock()
	defer c.mu.Unlock()

	abs := c.total + l.Index - c.base
	c.events = append(c.events, Event{Kind: stream.KindLabel, Total: c.total, Index: abs})
	c.observed.AddLabel(LabelRecord{Index: abs, Data: text(l.Data), ID: l.ID})
}

// PostMessage implements stream.Output.
func (c *Collector) PostMessage(m stream.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, Event{Kind: stream.KindMessage, Total: c.total})
	c.observed.AddMessage(text(m))
}

// PostPacket implements stream.Output.
func (c *Collector) PostPacket(p stream.Packet) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.events = append(c.events, Event{Kind: stream.KindPacket, Total: c.total, Elements: p.Payload.Elements()})
	values, err := p.Payload.Values()
	if err != nil {
		c.fail(err)
		return
	}
	i := c.observed.AddPacket(values)
	for _, l := range p.Labels {
		_ = c.observed.AddPacketLabel(i, LabelRecord{Index: l.Index, Data: text(l.Data), ID: l.ID})
	}
}

func (c *Collector) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

// Err returns the first decode failure seen, if any.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Reset discards recordings and starts a new observation window at the
// current total. Label indexes in the new window are relative to its start.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.base = c.total
	c.events = nil
	c.observed = Builder{}
	c.err = nil
}

// Events returns a copy of the posts recorded in the current window.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

// Observed returns what was posted in the current window as a Result.
func (c *Collector) Observed() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.observed.r
	r.Values = append([]float64(nil), r.Values...)
	r.Labels = append([]LabelRecord(nil), r.Labels...)
	r.Messages = append([]string(nil), r.Messages...)
	r.Packets = append([]PacketRecord(nil), r.Packets...)
	return &r
}

// text renders an opaque payload as the string a golden result records.
func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
