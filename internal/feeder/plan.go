package feeder

import (
	mrand "math/rand/v2"

	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/generator"
	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/plan"
	"github.com/roach88/streamfeed/internal/stream"
)

// batch is a fully generated plan waiting to be queued.
type batch struct {
	buffers  []stream.Buffer
	labels   []stream.Label
	messages []stream.Message
	packets  []stream.Packet
	result   *golden.Result
}

// FeedTestPlan builds a plan from a JSON or YAML document, queues everything
// it generated and returns the canonical golden result. A document that
// fails to resolve leaves the queues untouched. After Close it returns
// ErrClosed.
func (f *Feeder) FeedTestPlan(doc []byte) (string, error) {
	res, err := f.BuildPlan(doc)
	if err != nil {
		return "", err
	}
	data, err := res.Marshal()
	if err != nil {
		return "", &Error{Code: ErrCodeBuildFailed, Message: "serialize golden result", Err: err}
	}
	return string(data), nil
}

// BuildPlan is FeedTestPlan returning the golden result unserialized.
func (f *Feeder) BuildPlan(doc []byte) (*golden.Result, error) {
	cfg, err := plan.Parse(doc)
	if err != nil {
		return nil, err
	}

	f.planMu.Lock()
	defer f.planMu.Unlock()

	if f.closed.Load() {
		f.log.Warn("plan rejected after close")
		return nil, ErrClosed
	}
	b, err := f.prepare(cfg)
	if err != nil {
		return nil, err
	}
	f.enqueue(b)
	return b.result, nil
}

// prepare generates every entity of cfg. Must be called with planMu held.
func (f *Feeder) prepare(cfg *plan.Config) (*batch, error) {
	var rng *mrand.Rand
	if cfg.Seed == nil {
		rng = f.rng
	}
	gen, err := generator.New(cfg, f.typ, rng)
	if err != nil {
		return nil, &Error{Code: ErrCodeBuildFailed, Message: "create generator", Err: err}
	}

	b := &batch{}
	gb := golden.NewBuilder()

	var total uint64
	var lengths []int
	if cfg.StreamEnabled() {
		chunks, err := gen.Buffers()
		if err != nil {
			return nil, &Error{Code: ErrCodeBuildFailed, Message: "generate buffers", Err: err}
		}
		for _, c := range chunks {
			n := c.Buffer.Elements()
			total += uint64(n)
			if cfg.EnablePackets {
				gb.AddPacket(c.Values)
				b.packets = append(b.packets, stream.Packet{Payload: c.Buffer})
				lengths = append(lengths, n)
				continue
			}
			gb.AddValues(c.Values...)
			b.buffers = append(b.buffers, c.Buffer)
		}
	}

	if cfg.EnableLabels && total > 0 {
		var offset uint64
		if out := f.output(); out != nil {
			offset = out.TotalElements()
		}
		for _, l := range gen.Labels(total) {
			rec := golden.LabelRecord{Index: l.Index, Data: l.Data, ID: l.ID}
			if !cfg.EnablePackets {
				gb.AddLabel(rec)
				b.labels = append(b.labels, stream.Label{ID: l.ID, Data: l.Data, Index: l.Index + offset})
				continue
			}
			p, rel, ok := generator.Locate(l.Index, lengths)
			if !ok {
				return nil, &Error{Code: ErrCodeBuildFailed, Message: "label index past last packet"}
			}
			rec.Index = rel
			if err := gb.AddPacketLabel(p, rec); err != nil {
				return nil, &Error{Code: ErrCodeBuildFailed, Message: "attach packet label", Err: err}
			}
			b.packets[p].Labels = append(b.packets[p].Labels, stream.Label{ID: l.ID, Data: l.Data, Index: rel})
		}
	}

	if cfg.EnableMessages {
		for _, m := range gen.Messages() {
			gb.AddMessage(m)
			b.messages = append(b.messages, m)
		}
	}

	b.result = gb.Result()
	f.met.plans.Inc()
	f.log.Debug("plan built",
		zap.Int("buffers", len(b.buffers)),
		zap.Int("labels", len(b.labels)),
		zap.Int("messages", len(b.messages)),
		zap.Int("packets", len(b.packets)),
		zap.Uint64("elements", total),
	)
	return b, nil
}

// enqueue queues labels first so none trails the buffer it annotates.
func (f *Feeder) enqueue(b *batch) {
	f.labels.PushAll(b.labels)
	f.buffers.PushAll(b.buffers)
	f.messages.PushAll(b.messages)
	f.packets.PushAll(b.packets)

	f.fed(stream.KindLabel, len(b.labels))
	f.fed(stream.KindBuffer, len(b.buffers))
	f.fed(stream.KindMessage, len(b.messages))
	f.fed(stream.KindPacket, len(b.packets))
}
