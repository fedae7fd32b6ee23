package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/streamfeed/internal/golden"
	"github.com/roach88/streamfeed/internal/plan"
	"github.com/roach88/streamfeed/internal/stream"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Round    int    // Round index, -1 for whole-run assertions
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Round >= 0 {
		fmt.Fprintf(&buf, " (round %d)", e.Round)
	}
	fmt.Fprintf(&buf, "\n  Expected: %s\n  Actual: %s", e.Expected, e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, cfg *plan.Config) []string {
	var errs []string
	for _, a := range assertions {
		if err := evaluate(result, a, cfg); err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion, cfg *plan.Config) error {
	if a.Type == AssertElementCount {
		return assertElementCount(result, *a.Count)
	}

	check, ok := roundChecks[a.Type]
	if !ok {
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
	for i, round := range result.Rounds {
		if err := check(round, cfg); err != nil {
			err.Type = a.Type
			err.Round = i
			return err
		}
	}
	return nil
}

// roundChecks evaluate one round. They leave Type and Round unset.
var roundChecks = map[string]func(Round, *plan.Config) *AssertionError{
	AssertBufferMultiple:  assertBufferMultiple,
	AssertTotalMultiple:   assertTotalMultiple,
	AssertLabelsAscending: assertLabelsAscending,
	AssertLabelsInPacket:  assertLabelsInPacket,
	AssertRoundTrip:       assertRoundTrip,
	AssertEmptyResult:     assertEmptyResult,
}

// assertBufferMultiple checks every buffer or packet payload length.
func assertBufferMultiple(r Round, cfg *plan.Config) *AssertionError {
	for i, e := range r.Events {
		if e.Kind != stream.KindBuffer && e.Kind != stream.KindPacket {
			continue
		}
		if e.Elements%cfg.BufferMultiple != 0 {
			return &AssertionError{
				Expected: fmt.Sprintf("every payload a multiple of %d elements", cfg.BufferMultiple),
				Actual:   fmt.Sprintf("%s at event %d has %d elements", e.Kind, i, e.Elements),
			}
		}
	}
	return nil
}

func assertTotalMultiple(r Round, cfg *plan.Config) *AssertionError {
	total := 0
	for _, e := range r.Events {
		total += e.Elements
	}
	if total%cfg.TotalMultiple != 0 {
		return &AssertionError{
			Expected: fmt.Sprintf("element total a multiple of %d", cfg.TotalMultiple),
			Actual:   fmt.Sprintf("%d elements", total),
		}
	}
	return nil
}

func assertLabelsAscending(r Round, _ *plan.Config) *AssertionError {
	if err := ascending(r.Observed.Labels); err != "" {
		return &AssertionError{Expected: "strictly ascending label indexes", Actual: err}
	}
	for i, p := range r.Observed.Packets {
		if err := ascending(p.Labels); err != "" {
			return &AssertionError{
				Expected: "strictly ascending label indexes",
				Actual:   fmt.Sprintf("packet %d: %s", i, err),
			}
		}
	}
	return nil
}

func ascending(labels []golden.LabelRecord) string {
	for i := 1; i < len(labels); i++ {
		if labels[i].Index <= labels[i-1].Index {
			return fmt.Sprintf("index %d follows %d", labels[i].Index, labels[i-1].Index)
		}
	}
	return ""
}

// assertLabelsInPacket checks every packet label lands inside its payload
// and that no generated label went missing.
func assertLabelsInPacket(r Round, _ *plan.Config) *AssertionError {
	want, got := 0, 0
	for _, p := range r.Expected.Packets {
		want += len(p.Labels)
	}
	for i, p := range r.Observed.Packets {
		for _, l := range p.Labels {
			if l.Index >= uint64(len(p.Values)) {
				return &AssertionError{
					Expected: fmt.Sprintf("packet %d labels below %d", i, len(p.Values)),
					Actual:   fmt.Sprintf("label %s at %d", l.ID, l.Index),
				}
			}
		}
		got += len(p.Labels)
	}
	if len(r.Observed.Labels) > 0 {
		return &AssertionError{
			Expected: "every label attached to a packet",
			Actual:   fmt.Sprintf("%d free-standing labels", len(r.Observed.Labels)),
		}
	}
	if want != got {
		return &AssertionError{
			Expected: fmt.Sprintf("%d packet labels", want),
			Actual:   fmt.Sprintf("%d packet labels", got),
		}
	}
	return nil
}

func assertRoundTrip(r Round, _ *plan.Config) *AssertionError {
	if err := golden.Compare(r.Expected, r.Observed); err != nil {
		return &AssertionError{Expected: "observed output equal to golden result", Actual: err.Error()}
	}
	return nil
}

func assertEmptyResult(r Round, _ *plan.Config) *AssertionError {
	if !r.Expected.Empty() {
		return &AssertionError{Expected: "empty golden result", Actual: r.Golden}
	}
	if len(r.Events) > 0 {
		return &AssertionError{Expected: "no output", Actual: fmt.Sprintf("%d posts", len(r.Events))}
	}
	if r.Steps.Emitted > 0 {
		return &AssertionError{Expected: "only idle steps", Actual: fmt.Sprintf("%d emitting steps", r.Steps.Emitted)}
	}
	return nil
}

func assertElementCount(result *Result, want int) error {
	if got := result.Elements(); got != want {
		return &AssertionError{
			Type:     AssertElementCount,
			Round:    -1,
			Expected: fmt.Sprintf("%d elements", want),
			Actual:   fmt.Sprintf("%d elements", got),
		}
	}
	return nil
}
