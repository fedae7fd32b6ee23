package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/feeder"
	"github.com/roach88/streamfeed/internal/plan"
	"github.com/roach88/streamfeed/internal/stream"
)

// FeedOptions holds the flags shared by commands that build a feeder.
type FeedOptions struct {
	DType string
	Seed  uint64
}

func (o *FeedOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.DType, "dtype", "float32", "element type (int8|int16|int32|uint8|uint16|uint32|float32)")
	cmd.Flags().Uint64Var(&o.Seed, "seed", 0, "seed for plans that carry none")
}

// newFeeder builds a feeder from the flags. out may be nil.
func (o *FeedOptions) newFeeder(cmd *cobra.Command, log *zap.Logger, out stream.Output) (*feeder.Feeder, error) {
	typ, err := dtype.Parse(o.DType)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid --dtype", err)
	}

	opts := []feeder.Option{feeder.WithLogger(log)}
	if out != nil {
		opts = append(opts, feeder.WithOutput(out))
	}
	if cmd.Flags().Changed("seed") {
		opts = append(opts, feeder.WithSeed(o.Seed))
	}
	return feeder.New(typ, opts...)
}

// readPlan reads a plan document from path, or from stdin when path is "-".
func readPlan(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read plan", err)
	}
	return data, nil
}

// planError converts a plan build failure into a reported command error.
func planError(f *OutputFormatter, err error) error {
	details := map[string]string{"cause": err.Error()}
	var pe *plan.Error
	if errors.As(err, &pe) {
		details["code"] = string(pe.Code)
	}
	if outErr := f.Error(CodePlanInvalid, "plan could not be built", details); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitCommandError, "plan could not be built", err)
}

// seedLabel renders the seed flag for text output.
func (o *FeedOptions) seedLabel(cmd *cobra.Command) string {
	if cmd.Flags().Changed("seed") {
		return fmt.Sprint(o.Seed)
	}
	return "random"
}
