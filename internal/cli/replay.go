package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
}

// ReplayRunResult holds the replay result for a single run.
type ReplayRunResult struct {
	RunID     string `json:"run_id"`
	Seq       int64  `json:"seq"`
	DType     string `json:"dtype"`
	Emissions int    `json:"emissions"`
	Verified  bool   `json:"verified"`
	Error     string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs        []ReplayRunResult `json:"runs"`
	TotalRuns   int               `json:"total_runs"`
	AllVerified bool              `json:"all_verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay recorded runs and check them against their golden results",
		Long: `Replay the emission log of recorded runs into a fresh consumer and
compare what it observes with the golden result stored for the run.

Exit codes:
  0 - Every run reproduces its golden result
  1 - At least one run does not
  2 - Command error (database not found, unknown run, etc.)

Examples:
  streamfeed replay --db ./runs.db
  streamfeed replay --db ./runs.db --run 0190f3c4-...
  streamfeed replay --db ./runs.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay specific run only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	out := opts.formatter(cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.RunID != "" {
		run, err := st.ReadRun(ctx, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to read run %s", opts.RunID), err)
		}
		runs = []store.Run{run}
	} else {
		runs, err = st.ListRuns(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list runs", err)
		}
	}

	result := ReplayResult{
		Runs:        make([]ReplayRunResult, 0, len(runs)),
		TotalRuns:   len(runs),
		AllVerified: true,
	}
	for _, run := range runs {
		r, err := replayRun(cmd, st, run)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay run %s", run.ID), err)
		}
		result.Runs = append(result.Runs, r)
		if !r.Verified {
			result.AllVerified = false
		}
	}

	if opts.Format == "json" {
		if !result.AllVerified {
			if err := out.Failure(CodeReplayFailed, "replay does not match golden result", result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "replay does not match golden result")
		}
		return out.Success(result)
	}
	return outputReplayText(cmd, result)
}

// replayRun verifies one run. A golden mismatch is reported in the result;
// only store failures are returned as errors.
func replayRun(cmd *cobra.Command, st *store.Store, run store.Run) (ReplayRunResult, error) {
	ctx := cmd.Context()

	counts, err := st.CountEmissions(ctx, run.ID)
	if err != nil {
		return ReplayRunResult{}, err
	}
	r := ReplayRunResult{RunID: run.ID, Seq: run.Seq, DType: run.DType, Verified: true}
	for _, n := range counts {
		r.Emissions += n
	}

	if err := st.Verify(ctx, run.ID); err != nil {
		var m *golden.Mismatch
		if !errors.As(err, &m) {
			return ReplayRunResult{}, err
		}
		r.Verified = false
		r.Error = err.Error()
	}
	return r, nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	for _, r := range result.Runs {
		if r.Verified {
			fmt.Fprintf(w, "✓ %s (%s, %d emissions)\n", r.RunID, r.DType, r.Emissions)
			continue
		}
		fmt.Fprintf(w, "✗ %s (%s, %d emissions)\n", r.RunID, r.DType, r.Emissions)
		fmt.Fprintf(w, "  %s\n", r.Error)
	}

	fmt.Fprintln(w)
	if !result.AllVerified {
		fmt.Fprintln(w, "Replay verification FAILED")
		return NewExitError(ExitFailure, "replay does not match golden result")
	}
	fmt.Fprintf(w, "All %d run(s) verified\n", result.TotalRuns)
	return nil
}
