package harness

import (
	"github.com/roach88/streamfeed/internal/feeder"
	"github.com/roach88/streamfeed/internal/golden"
)

// Round is what one plan build produced and what the output observed.
type Round struct {
	// Golden is the canonical golden result returned by the plan build.
	Golden string `json:"golden"`

	// Steps counts Work outcomes while the round drained.
	Steps StepCounts `json:"steps"`

	Expected *golden.Result `json:"-"`
	Observed *golden.Result `json:"-"`
	Events   []golden.Event `json:"-"`
}

// StepCounts tallies Work outcomes.
type StepCounts struct {
	Blocked int `json:"blocked"`
	Emitted int `json:"emitted"`
	Idle    int `json:"idle"`
}

func (c *StepCounts) Add(o feeder.Outcome) {
	switch o {
	case feeder.OutcomeBlocked:
		c.Blocked++
	case feeder.OutcomeEmitted:
		c.Emitted++
	case feeder.OutcomeIdle:
		c.Idle++
	}
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every assertion held.
	Pass bool `json:"pass"`

	Rounds []Round `json:"rounds"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Rounds: []Round{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Elements returns the number of elements emitted over every round.
func (r *Result) Elements() int {
	n := 0
	for _, round := range r.Rounds {
		for _, e := range round.Events {
			n += e.Elements
		}
	}
	return n
}
