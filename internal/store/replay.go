package store

import (
	"context"
	"fmt"

	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/stream"
)

// Post decodes the emission payload and posts it to out.
func (e Emission) Post(out stream.Output) error {
	switch e.Kind {
	case stream.KindBuffer:
		b, err := unmarshalBuffer(e.Payload)
		if err != nil {
			return err
		}
		out.PostBuffer(b)
	case stream.KindLabel:
		l, err := unmarshalLabel(e.Payload)
		if err != nil {
			return err
		}
		out.PostLabel(l)
	case stream.KindMessage:
		m, err := unmarshalMessage(e.Payload)
		if err != nil {
			return err
		}
		out.PostMessage(m)
	case stream.KindPacket:
		p, err := unmarshalPacket(e.Payload)
		if err != nil {
			return err
		}
		out.PostPacket(p)
	default:
		return fmt.Errorf("unknown emission kind %q", e.Kind)
	}
	return nil
}

// ReplayInto re-posts a run's emission log into out in seq order and
// returns the number of entities posted.
func (s *Store) ReplayInto(ctx context.Context, runID string, out stream.Output) (int, error) {
	emissions, err := s.ReadEmissions(ctx, runID)
	if err != nil {
		return 0, fmt.Errorf("replay %s: %w", runID, err)
	}
	for i, e := range emissions {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := e.Post(out); err != nil {
			return i, fmt.Errorf("replay %s seq %d: %w", runID, e.Seq, err)
		}
	}
	return len(emissions), nil
}

// Verify replays a run into a fresh collector and compares what it observes
// with the run's stored golden result. A mismatch is returned as a
// *golden.Mismatch.
func (s *Store) Verify(ctx context.Context, runID string) error {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return err
	}
	expected, err := golden.Unmarshal([]byte(run.Golden))
	if err != nil {
		return fmt.Errorf("verify %s: %w", runID, err)
	}

	c := golden.NewCollector()
	if _, err := s.ReplayInto(ctx, runID, c); err != nil {
		return err
	}
	if err := c.Err(); err != nil {
		return fmt.Errorf("verify %s: %w", runID, err)
	}
	return golden.Compare(expected, c.Observed())
}
