package store

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/stream"
)

// bufferRecord is the stored form of a stream.Buffer. The element type is
// kept by name so the payload does not depend on enum ordinals.
type bufferRecord struct {
	Type string `msgpack:"type"`
	Data []byte `msgpack:"data"`
}

type labelRecord struct {
	ID    string `msgpack:"id"`
	Data  any    `msgpack:"data"`
	Index uint64 `msgpack:"index"`
}

type packetRecord struct {
	Payload bufferRecord  `msgpack:"payload"`
	Labels  []labelRecord `msgpack:"labels,omitempty"`
}

type messageRecord struct {
	Value any `msgpack:"value"`
}

func toBufferRecord(b stream.Buffer) bufferRecord {
	return bufferRecord{Type: b.Type.String(), Data: b.Data}
}

func (r bufferRecord) buffer() (stream.Buffer, error) {
	t, err := dtype.Parse(r.Type)
	if err != nil {
		return stream.Buffer{}, err
	}
	return stream.Buffer{Type: t, Data: r.Data}, nil
}

func toLabelRecord(l stream.Label) labelRecord {
	return labelRecord{ID: l.ID, Data: l.Data, Index: l.Index}
}

func (r labelRecord) label() stream.Label {
	return stream.Label{ID: r.ID, Data: r.Data, Index: r.Index}
}

// marshalBuffer encodes a buffer payload.
func marshalBuffer(b stream.Buffer) ([]byte, error) {
	data, err := msgpack.Marshal(toBufferRecord(b))
	if err != nil {
		return nil, fmt.Errorf("marshal buffer: %w", err)
	}
	return data, nil
}

// marshalLabel encodes a label payload.
func marshalLabel(l stream.Label) ([]byte, error) {
	data, err := msgpack.Marshal(toLabelRecord(l))
	if err != nil {
		return nil, fmt.Errorf("marshal label: %w", err)
	}
	return data, nil
}

// marshalMessage encodes a message payload. Messages are opaque, so any value
// msgpack can encode is accepted.
func marshalMessage(m stream.Message) ([]byte, error) {
	data, err := msgpack.Marshal(messageRecord{Value: m})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

// marshalPacket encodes a packet payload.
func marshalPacket(p stream.Packet) ([]byte, error) {
	rec := packetRecord{Payload: toBufferRecord(p.Payload)}
	for _, l := range p.Labels {
		rec.Labels = append(rec.Labels, toLabelRecord(l))
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal packet: %w", err)
	}
	return data, nil
}

func unmarshalBuffer(data []byte) (stream.Buffer, error) {
	var rec bufferRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return stream.Buffer{}, fmt.Errorf("unmarshal buffer: %w", err)
	}
	b, err := rec.buffer()
	if err != nil {
		return stream.Buffer{}, fmt.Errorf("unmarshal buffer: %w", err)
	}
	return b, nil
}

func unmarshalLabel(data []byte) (stream.Label, error) {
	var rec labelRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return stream.Label{}, fmt.Errorf("unmarshal label: %w", err)
	}
	return rec.label(), nil
}

func unmarshalMessage(data []byte) (stream.Message, error) {
	var rec messageRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return rec.Value, nil
}

func unmarshalPacket(data []byte) (stream.Packet, error) {
	var rec packetRecord
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return stream.Packet{}, fmt.Errorf("unmarshal packet: %w", err)
	}
	payload, err := rec.Payload.buffer()
	if err != nil {
		return stream.Packet{}, fmt.Errorf("unmarshal packet: %w", err)
	}
	p := stream.Packet{Payload: payload}
	for _, l := range rec.Labels {
		p.Labels = append(p.Labels, l.label())
	}
	return p, nil
}
