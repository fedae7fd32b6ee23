// Package stream defines the four entity kinds a feeder emits and the output
// contract it emits them to.
package stream

import (
	"fmt"

	"github.com/roach88/streamfeed/internal/dtype"
)

// Kind identifies an entity kind.
type Kind string

const (
	KindBuffer  Kind = "buffer"
	KindLabel   Kind = "label"
	KindMessage Kind = "message"
	KindPacket  Kind = "packet"
)

// Kinds lists every entity kind.
var Kinds = []Kind{KindBuffer, KindLabel, KindMessage, KindPacket}

// Buffer is a contiguous run of encoded elements of one type.
type Buffer struct {
	Type dtype.Type `msgpack:"type"`
	Data []byte     `msgpack:"data"`
}

// NewBuffer allocates a zeroed buffer of n elements.
func NewBuffer(t dtype.Type, n int) Buffer {
	return Buffer{Type: t, Data: make([]byte, n*t.Size())}
}

// Elements returns the number of whole elements in the buffer.
func (b Buffer) Elements() int {
	size := b.Type.Size()
	if size == 0 {
		return 0
	}
	return len(b.Data) / size
}

// Values decodes every element.
func (b Buffer) Values() ([]float64, error) {
	return b.Type.DecodeAll(b.Data)
}

// Label annotates a stream position. Index is absolute while queued in a
// feeder, relative to the output's emitted count once posted, and relative to
// the payload start when carried by a Packet.
type Label struct {
	ID    string `msgpack:"id"`
	Data  any    `msgpack:"data"`
	Index uint64 `msgpack:"index"`
}

// LabelID derives the symbolic identifier for an index.
func LabelID(index uint64) string {
	return fmt.Sprintf("id%d", index)
}

// Packet is a framed payload with payload-relative labels.
type Packet struct {
	Payload Buffer  `msgpack:"payload"`
	Labels  []Label `msgpack:"labels,omitempty"`
}

// Message is an opaque out-of-band payload.
type Message = any

// Output is the channel a feeder drains into.
type Output interface {
	// MinElements reports how many elements the output can currently accept.
	// Zero means the output is full.
	MinElements() int

	// TotalElements reports the cumulative element count emitted so far.
	TotalElements() uint64

	PostBuffer(b Buffer)
	PostLabel(l Label)
	PostMessage(m Message)
	PostPacket(p Packet)
}
