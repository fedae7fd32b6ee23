// Package harness runs YAML feeder scenarios end to end.
//
// A scenario names an element type and a plan document, builds the plan one
// or more times, drains each round into a golden.Collector and evaluates
// assertions over what was observed:
//
//	name: fixed_buffers
//	description: two int16 buffers of two elements each
//	dtype: int16
//	plan:
//	  enableBuffers: true
//	  minBuffers: 2
//	  maxBuffers: 2
//	assertions:
//	  - type: round_trip
//	  - type: element_count
//	    count: 4
//
// Scenarios whose plans are deterministic can be snapshotted with
// RunWithGolden. Snapshots live in testdata/golden and are regenerated with
//
//	go test ./internal/harness -update
package harness
