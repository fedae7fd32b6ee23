package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/streamfeed/internal/feeder"
)

// PlanOptions holds flags for the plan command.
type PlanOptions struct {
	*RootOptions
	FeedOptions
}

// PlanResult is the plan command's JSON payload.
type PlanResult struct {
	DType   string          `json:"dtype"`
	Golden  json.RawMessage `json:"golden"`
	Pending feeder.Pending  `json:"pending"`
}

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "plan <plan-file>",
		Short: "Build a test plan and print its golden result",
		Long: `Build a test plan without draining it and print the golden result.

The plan file is a JSON or YAML mapping; "-" reads it from stdin.

Examples:
  streamfeed plan --dtype int16 ./plan.yaml
  echo '{"enableMessages": true}' | streamfeed plan -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(opts, args[0], cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runPlan(opts *PlanOptions, path string, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	log := newLogger(cmd.ErrOrStderr(), opts.Verbose)
	defer func() { _ = log.Sync() }()

	doc, err := readPlan(cmd, path)
	if err != nil {
		return err
	}

	f, err := opts.newFeeder(cmd, log, nil)
	if err != nil {
		return err
	}
	defer f.Close()

	goldenJSON, err := f.FeedTestPlan(doc)
	if err != nil {
		return planError(out, err)
	}

	if opts.Format == "json" {
		return out.Success(PlanResult{
			DType:   f.Type().String(),
			Golden:  json.RawMessage(goldenJSON),
			Pending: f.Pending(),
		})
	}

	w := cmd.OutOrStdout()
	p := f.Pending()
	fmt.Fprintf(w, "dtype %s, seed %s: %d buffers, %d labels, %d messages, %d packets\n",
		f.Type(), opts.seedLabel(cmd), p.Buffers, p.Labels, p.Messages, p.Packets)
	fmt.Fprintln(w, goldenJSON)
	return nil
}
