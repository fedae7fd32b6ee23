package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/feeder"
	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/plan"
	"github.com/roach88/streamfeed/internal/store"
	"github.com/roach88/streamfeed/internal/stream"
)

// DefaultTimeout bounds how long one round may take to drain.
const DefaultTimeout = 30 * time.Second

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	log     *zap.Logger
	store   *store.Store
	timeout time.Duration
	work    feeder.WorkInfo
}

// WithLogger sets the logger handed to the feeder.
func WithLogger(l *zap.Logger) Option {
	return func(c *runConfig) {
		c.log = l
	}
}

// WithStore records every round as a run in s and re-verifies it from the
// stored emission log.
func WithStore(s *store.Store) Option {
	return func(c *runConfig) {
		c.store = s
	}
}

// WithTimeout bounds how long one round may take to drain.
func WithTimeout(d time.Duration) Option {
	return func(c *runConfig) {
		c.timeout = d
	}
}

// gate reports the output as full for a fixed number of capacity checks.
type gate struct {
	stream.Output
	stalls atomic.Int64
}

func (g *gate) MinElements() int {
	if g.stalls.Add(-1) >= 0 {
		return 0
	}
	return g.Output.MinElements()
}

// Run executes a scenario and returns the result.
//
// Each round builds the plan, drains it to exhaustion into a collector and
// keeps the expected and observed results. Assertions are evaluated after
// the last round. An error is returned only when the scenario cannot run;
// failed assertions are reported in the Result.
func Run(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		log:     zap.NewNop(),
		timeout: DefaultTimeout,
		work:    feeder.WorkInfo{MaxTimeout: time.Millisecond},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	typ, err := dtype.Parse(scenario.DType)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(scenario.Plan)
	if err != nil {
		return nil, fmt.Errorf("encode plan: %w", err)
	}
	planCfg, err := plan.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("resolve plan: %w", err)
	}

	collector := golden.NewCollector()
	out := &gate{Output: collector}
	f, err := feeder.New(typ,
		feeder.WithOutput(out),
		feeder.WithLogger(cfg.log.With(zap.String("scenario", scenario.Name))),
	)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	result := NewResult()
	for i := range scenario.rounds() {
		round, err := runRound(ctx, cfg, f, collector, out, typ, doc, scenario.Stall)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
		result.Rounds = append(result.Rounds, round)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, planCfg) {
		result.AddError(msg)
	}
	return result, nil
}

func runRound(ctx context.Context, cfg runConfig, f *feeder.Feeder, c *golden.Collector, out *gate, typ dtype.Type, doc []byte, stall int) (Round, error) {
	c.Reset()
	out.stalls.Store(int64(stall))

	// A previous round may have left a recorder attached.
	f.Attach(out)

	var recorder *store.Recorder
	var runID string

	expected, err := f.BuildPlan(doc)
	if err != nil {
		return Round{}, err
	}
	goldenJSON, err := expected.Marshal()
	if err != nil {
		return Round{}, err
	}

	if cfg.store != nil {
		run, err := cfg.store.CreateRun(ctx, typ, doc, string(goldenJSON))
		if err != nil {
			return Round{}, err
		}
		runID = run.ID
		recorder = cfg.store.NewRecorder(ctx, runID, out, cfg.log)
		f.Attach(recorder)
	}

	drainCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	var steps StepCounts
	err = f.Run(drainCtx, cfg.work, func(s feeder.Step) bool {
		steps.Add(s.Outcome)
		return f.Exhausted(s)
	})
	if err != nil {
		return Round{}, fmt.Errorf("drain: %w", err)
	}
	if err := c.Err(); err != nil {
		return Round{}, fmt.Errorf("collect: %w", err)
	}

	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return Round{}, fmt.Errorf("record: %w", err)
		}
		if err := cfg.store.Verify(ctx, runID); err != nil {
			return Round{}, fmt.Errorf("verify stored run: %w", err)
		}
	}

	return Round{
		Golden:   string(goldenJSON),
		Steps:    steps,
		Expected: expected,
		Observed: c.Observed(),
		Events:   c.Events(),
	}, nil
}
