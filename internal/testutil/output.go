// Package testutil provides deterministic consumers and plan documents for
// driving a feeder in tests.
package testutil

import (
	"sync"

	"github.com/roach88/streamfeed/internal/golden"
)

// ThrottledOutput is a golden.Collector whose reported capacity follows a
// script: the nth MinElements call returns script[n]. Once the script runs
// out the collector's own capacity is reported.
//
// Thread-safety: All methods are safe for concurrent use.
type ThrottledOutput struct {
	*golden.Collector

	mu     sync.Mutex
	script []int
	checks int
}

// NewThrottledOutput creates an output that reports the given capacities
// before falling back to golden.DefaultCapacity.
func NewThrottledOutput(script ...int) *ThrottledOutput {
	return &ThrottledOutput{
		Collector: golden.NewCollector(),
		script:    script,
	}
}

// MinElements returns the next scripted capacity.
func (o *ThrottledOutput) MinElements() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := o.checks
	o.checks++
	if n < len(o.script) {
		return o.script[n]
	}
	return o.Collector.MinElements()
}

// Checks returns how many times capacity was queried.
func (o *ThrottledOutput) Checks() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.checks
}

// Stall appends n zero-capacity reports to the script.
func (o *ThrottledOutput) Stall(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()

	rest := max(o.checks, len(o.script))
	for len(o.script) < rest {
		o.script = append(o.script, golden.DefaultCapacity)
	}
	for range n {
		o.script = append(o.script, 0)
	}
}
