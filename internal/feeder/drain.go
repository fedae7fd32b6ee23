package feeder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/stream"
)

// DefaultMaxTimeout bounds the idle backoff when WorkInfo leaves it unset.
const DefaultMaxTimeout = 10 * time.Millisecond

// WorkInfo carries the scheduler's parameters for one Work call.
type WorkInfo struct {
	// MaxTimeout bounds the idle backoff.
	MaxTimeout time.Duration
}

func (w WorkInfo) timeout() time.Duration {
	if w.MaxTimeout <= 0 {
		return DefaultMaxTimeout
	}
	return w.MaxTimeout
}

// Outcome is how a Work call ended.
type Outcome int

const (
	// OutcomeBlocked means the output reported no capacity and nothing was
	// emitted.
	OutcomeBlocked Outcome = iota

	// OutcomeEmitted means at least one entity was posted.
	OutcomeEmitted

	// OutcomeIdle means every queue was empty and the call backed off.
	OutcomeIdle
)

func (o Outcome) String() string {
	switch o {
	case OutcomeBlocked:
		return "blocked"
	case OutcomeEmitted:
		return "emitted"
	case OutcomeIdle:
		return "idle"
	default:
		return "unknown"
	}
}

// Step reports what one Work call did.
type Step struct {
	Outcome Outcome
	// Kind is the buffer, message or packet posted, or KindLabel when only
	// labels went out. Empty unless Outcome is OutcomeEmitted.
	Kind stream.Kind
	// Labels is the number of labels posted ahead of Kind.
	Labels int
}

// Work runs one drain step against the attached output.
//
// Labels whose absolute index lies before the end of the next queued buffer
// are posted first, translated to be relative to the output's emitted
// count. Then the first non-empty of the buffer, message and packet queues
// yields exactly one entity. When nothing at all was posted, Work waits for
// new input, info.MaxTimeout or ctx, whichever comes first, and reports
// OutcomeIdle. A cancelled ctx is not an error.
func (f *Feeder) Work(ctx context.Context, info WorkInfo) (Step, error) {
	out := f.output()
	if out == nil {
		return Step{}, ErrNoOutput
	}

	if out.MinElements() == 0 {
		f.met.blocked.Inc()
		return Step{Outcome: OutcomeBlocked}, nil
	}

	step := Step{Labels: f.emitLabels(out)}

	if kind, ok := f.emitOne(out); ok {
		step.Outcome = OutcomeEmitted
		step.Kind = kind
		f.met.recordDepth(f.Pending())
		return step, nil
	}

	if step.Labels > 0 {
		step.Outcome = OutcomeEmitted
		step.Kind = stream.KindLabel
		f.met.recordDepth(f.Pending())
		return step, nil
	}

	f.backoff(ctx, info.timeout())
	step.Outcome = OutcomeIdle
	return step, nil
}

// emitLabels posts every label due before the end of the next buffer.
func (f *Feeder) emitLabels(out stream.Output) int {
	n := 0
	for {
		total := out.TotalElements()
		horizon := total
		if b, ok := f.buffers.Peek(); ok {
			horizon += uint64(b.Elements())
		}

		l, ok := f.labels.PopIf(func(l stream.Label) bool {
			return l.Index < horizon
		})
		if !ok {
			return n
		}

		if l.Index < total {
			f.log.Warn("label behind emitted count",
				zap.String("id", l.ID),
				zap.Uint64("index", l.Index),
				zap.Uint64("total", total),
			)
			l.Index = 0
		} else {
			l.Index -= total
		}
		out.PostLabel(l)
		f.met.recordEmitted(stream.KindLabel)
		n++
	}
}

// emitOne posts the first available buffer, message or packet.
func (f *Feeder) emitOne(out stream.Output) (stream.Kind, bool) {
	if b, ok := f.buffers.TryPop(); ok {
		out.PostBuffer(b)
		f.met.recordEmitted(stream.KindBuffer)
		return stream.KindBuffer, true
	}
	if m, ok := f.messages.TryPop(); ok {
		out.PostMessage(m)
		f.met.recordEmitted(stream.KindMessage)
		return stream.KindMessage, true
	}
	if p, ok := f.packets.TryPop(); ok {
		out.PostPacket(p)
		f.met.recordEmitted(stream.KindPacket)
		return stream.KindPacket, true
	}
	return "", false
}

// backoff waits until d elapses, ctx ends, or any queue signals new input.
func (f *Feeder) backoff(ctx context.Context, d time.Duration) {
	f.met.backoffs.Inc()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-f.buffers.Wait():
	case <-f.labels.Wait():
	case <-f.messages.Wait():
	case <-f.packets.Wait():
	}
}

// Run calls Work until ctx ends, Work fails, or until reports true for a
// step. A blocked output is retried after info.MaxTimeout. A nil until runs
// until ctx ends.
func (f *Feeder) Run(ctx context.Context, info WorkInfo, until func(Step) bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		step, err := f.Work(ctx, info)
		if err != nil {
			return err
		}
		if until != nil && until(step) {
			return nil
		}

		if step.Outcome == OutcomeBlocked {
			timer := time.NewTimer(info.timeout())
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
}

// Exhausted is an until predicate for Run that stops at the first idle step
// once every queue is empty.
func (f *Feeder) Exhausted(step Step) bool {
	return step.Outcome == OutcomeIdle && f.Pending().Total() == 0
}
