// Package main provides the streamfeed CLI entrypoint.
//
// Usage:
//
//	streamfeed <command> [options]
//
// Exit codes:
//   - 0: success
//   - 1: golden mismatch or failed scenario
//   - 2: command error
package main

import (
	"fmt"
	"os"

	"github.com/roach88/streamfeed/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
