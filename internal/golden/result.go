// Package golden builds the expected-output description of a test plan and
// checks what a consumer observed against it.
//
// A Result mirrors everything a feeder was given, in generation order:
//
//	{
//	  "expectedValues":   [ ...buffer elements, buffer mode only... ],
//	  "expectedLabels":   [ {"index": 3, "data": "x9", "id": "id3"} ],
//	  "expectedMessages": [ "a1B2" ],
//	  "expectedPackets":  [ {"expectedValues": [...], "expectedLabels": [...]} ]
//	}
//
// Only non-empty sections are present. Label indexes are relative to the
// start of the plan's stream in buffer mode and to the packet payload start
// in packet mode.
package golden

import (
	"encoding/json"
	"fmt"
)

// Section keys of a serialized Result.
const (
	KeyValues   = "expectedValues"
	KeyLabels   = "expectedLabels"
	KeyMessages = "expectedMessages"
	KeyPackets  = "expectedPackets"
)

// LabelRecord describes one expected label.
type LabelRecord struct {
	Index uint64 `json:"index"`
	Data  string `json:"data"`
	ID    string `json:"id"`
}

// PacketRecord describes one expected packet.
type PacketRecord struct {
	Values []float64     `json:"expectedValues"`
	Labels []LabelRecord `json:"expectedLabels,omitempty"`
}

// Result is the golden description of a plan.
type Result struct {
	Values   []float64      `json:"expectedValues,omitempty"`
	Labels   []LabelRecord  `json:"expectedLabels,omitempty"`
	Messages []string       `json:"expectedMessages,omitempty"`
	Packets  []PacketRecord `json:"expectedPackets,omitempty"`
}

// Empty reports whether no section is populated.
func (r *Result) Empty() bool {
	return len(r.Values) == 0 && len(r.Labels) == 0 && len(r.Messages) == 0 && len(r.Packets) == 0
}

// Document converts r to a generic map holding only non-empty sections.
func (r *Result) Document() map[string]any {
	doc := make(map[string]any)
	if len(r.Values) > 0 {
		doc[KeyValues] = r.Values
	}
	if len(r.Labels) > 0 {
		doc[KeyLabels] = labelList(r.Labels)
	}
	if len(r.Messages) > 0 {
		doc[KeyMessages] = r.Messages
	}
	if len(r.Packets) > 0 {
		packets := make([]any, len(r.Packets))
		for i, p := range r.Packets {
			pkt := map[string]any{KeyValues: nonNil(p.Values)}
			if len(p.Labels) > 0 {
				pkt[KeyLabels] = labelList(p.Labels)
			}
			packets[i] = pkt
		}
		doc[KeyPackets] = packets
	}
	return doc
}

func labelList(labels []LabelRecord) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = map[string]any{"index": l.Index, "data": l.Data, "id": l.ID}
	}
	return out
}

func nonNil(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

// Marshal renders r as canonical JSON.
func (r *Result) Marshal() ([]byte, error) {
	return MarshalCanonical(r.Document())
}

// Unmarshal parses a serialized Result.
func Unmarshal(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse golden result: %w", err)
	}
	return &r, nil
}

// Builder accumulates a Result in generation order.
type Builder struct {
	r Result
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddValues appends buffer-mode values.
func (b *Builder) AddValues(values ...float64) {
	b.r.Values = append(b.r.Values, values...)
}

// AddLabel appends a buffer-mode label.
func (b *Builder) AddLabel(l LabelRecord) {
	b.r.Labels = append(b.r.Labels, l)
}

// AddMessage appends a message.
func (b *Builder) AddMessage(m string) {
	b.r.Messages = append(b.r.Messages, m)
}

// AddPacket appends a packet with its payload values and returns its ordinal.
func (b *Builder) AddPacket(values []float64) int {
	b.r.Packets = append(b.r.Packets, PacketRecord{Values: append([]float64{}, values...)})
	return len(b.r.Packets) - 1
}

// AddPacketLabel appends a payload-relative label to packet i.
func (b *Builder) AddPacketLabel(i int, l LabelRecord) error {
	if i < 0 || i >= len(b.r.Packets) {
		return fmt.Errorf("packet %d out of range [0, %d)", i, len(b.r.Packets))
	}
	b.r.Packets[i].Labels = append(b.r.Packets[i].Labels, l)
	return nil
}

// Result returns the accumulated result. The builder must not be used
// afterward.
func (b *Builder) Result() *Result {
	r := b.r
	return &r
}
