package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/feeder"
	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/harness"
	"github.com/roach88/streamfeed/internal/store"
	"github.com/roach88/streamfeed/internal/stream"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	FeedOptions

	Database   string
	Capacity   int
	Timeout    time.Duration
	MaxTimeout time.Duration
}

// RunResult is the run command's JSON payload.
type RunResult struct {
	RunID    string             `json:"run_id,omitempty"`
	DType    string             `json:"dtype"`
	Golden   json.RawMessage    `json:"golden"`
	Elements uint64             `json:"elements"`
	Posts    map[string]int     `json:"posts"`
	Steps    harness.StepCounts `json:"steps"`
	Match    bool               `json:"match"`
	Mismatch string             `json:"mismatch,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <plan-file>",
		Short: "Build a test plan, drain it and check the golden result",
		Long: `Build a test plan, drain it into an in-memory consumer and compare what
the consumer observed with the golden result.

With --db every emission is recorded in a SQLite database so the run can
be replayed later.

Exit codes:
  0 - Observed output matches the golden result
  1 - Mismatch
  2 - Command error (unreadable plan, database error, timeout)

Examples:
  streamfeed run --dtype int16 ./plan.yaml
  streamfeed run --dtype u8 --seed 7 --db ./runs.db ./plan.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", golden.DefaultCapacity, "consumer capacity in elements (0 blocks forever)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "give up if draining takes longer")
	cmd.Flags().DurationVar(&opts.MaxTimeout, "max-timeout", feeder.DefaultMaxTimeout, "idle backoff per work step")

	return cmd
}

func runFeed(opts *RunOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := readPlan(cmd, path)
	if err != nil {
		return err
	}

	collector := golden.NewCollector()
	collector.SetCapacity(opts.Capacity)

	f, err := opts.newFeeder(cmd, log, collector)
	if err != nil {
		return err
	}
	defer f.Close()

	expected, err := f.BuildPlan(doc)
	if err != nil {
		return planError(out, err)
	}
	goldenJSON, err := expected.Marshal()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to serialize golden result", err)
	}

	result := RunResult{DType: f.Type().String(), Golden: goldenJSON}

	var (
		st       *store.Store
		recorder *store.Recorder
	)
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer st.Close()

		run, err := st.CreateRun(ctx, f.Type(), doc, string(goldenJSON))
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to create run", err)
		}
		result.RunID = run.ID
		log = log.With(zap.String("run_id", run.ID))
		recorder = st.NewRecorder(ctx, run.ID, collector, log)
		f.Attach(recorder)
	}

	log.Debug("draining", zap.Int("pending", f.Pending().Total()))

	drainCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()
	err = f.Run(drainCtx, feeder.WorkInfo{MaxTimeout: opts.MaxTimeout}, func(s feeder.Step) bool {
		result.Steps.Add(s.Outcome)
		return f.Exhausted(s)
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "drain did not finish", err)
	}
	if err := collector.Err(); err != nil {
		return WrapExitError(ExitCommandError, "consumer rejected output", err)
	}
	if recorder != nil {
		if err := recorder.Err(); err != nil {
			return WrapExitError(ExitCommandError, "failed to record emissions", err)
		}
	}

	result.Elements = collector.TotalElements()
	result.Posts = countPosts(collector.Events())
	result.Match = true
	if err := golden.Compare(expected, collector.Observed()); err != nil {
		result.Match = false
		result.Mismatch = err.Error()
	}

	log.Debug("drained",
		zap.Uint64("elements", result.Elements),
		zap.Bool("match", result.Match),
	)

	if !result.Match {
		if opts.Format == "json" {
			if err := out.Failure(CodeMismatch, result.Mismatch, result); err != nil {
				return err
			}
		} else {
			printRunText(cmd, result)
		}
		return NewExitError(ExitFailure, "observed output does not match golden result")
	}

	if opts.Format == "json" {
		return out.Success(result)
	}
	printRunText(cmd, result)
	return nil
}

func countPosts(events []golden.Event) map[string]int {
	posts := make(map[string]int, len(stream.Kinds))
	for _, k := range stream.Kinds {
		posts[string(k)] = 0
	}
	for _, e := range events {
		posts[string(e.Kind)]++
	}
	return posts
}

func printRunText(cmd *cobra.Command, r RunResult) {
	w := cmd.OutOrStdout()
	if r.RunID != "" {
		fmt.Fprintf(w, "run %s\n", r.RunID)
	}
	fmt.Fprintf(w, "dtype %s: %d elements, %d buffers, %d labels, %d messages, %d packets\n",
		r.DType, r.Elements,
		r.Posts[string(stream.KindBuffer)], r.Posts[string(stream.KindLabel)],
		r.Posts[string(stream.KindMessage)], r.Posts[string(stream.KindPacket)])
	fmt.Fprintf(w, "steps: %d emitted, %d blocked, %d idle\n", r.Steps.Emitted, r.Steps.Blocked, r.Steps.Idle)
	if r.Match {
		fmt.Fprintln(w, "✓ output matches golden result")
		return
	}
	fmt.Fprintf(w, "✗ %s\n", r.Mismatch)
}
