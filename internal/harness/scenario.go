package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/streamfeed/internal/dtype"
)

// Scenario defines one feeder run and the properties it must satisfy.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// DType is the element type the feeder generates.
	DType string `yaml:"dtype"`

	// Plan is the plan document handed to the feeder each round.
	Plan map[string]any `yaml:"plan"`

	// Rounds is the number of plan builds. Each round drains completely
	// before the next one starts. Defaults to 1.
	Rounds int `yaml:"rounds,omitempty"`

	// Stall makes the output report itself full for the first Stall work
	// calls of every round.
	Stall int `yaml:"stall,omitempty"`

	// Assertions validate every round.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion is one property checked against a run.
type Assertion struct {
	// Type selects the property:
	// - "buffer_multiple": every buffer is a multiple of the plan's bufferMultiple
	// - "total_multiple": each round's element total is a multiple of totalMultiple
	// - "labels_ascending": labels are strictly ascending within a round
	// - "labels_in_packet": packet labels fall inside their packet's payload
	// - "round_trip": observed output equals the golden result
	// - "empty_result": the golden result is empty and nothing was emitted
	// - "element_count": Count elements were emitted over all rounds
	Type string `yaml:"type"`

	// Count is the expected total (used by element_count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertBufferMultiple  = "buffer_multiple"
	AssertTotalMultiple   = "total_multiple"
	AssertLabelsAscending = "labels_ascending"
	AssertLabelsInPacket  = "labels_in_packet"
	AssertRoundTrip       = "round_trip"
	AssertEmptyResult     = "empty_result"
	AssertElementCount    = "element_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := dtype.Parse(s.DType); err != nil {
		return fmt.Errorf("dtype: %w", err)
	}

	if s.Plan == nil {
		return fmt.Errorf("plan is required (use an empty map to disable every kind)")
	}

	if s.Rounds < 0 {
		return fmt.Errorf("rounds must be non-negative")
	}

	if s.Stall < 0 {
		return fmt.Errorf("stall must be non-negative")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertElementCount:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: element_count requires count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertBufferMultiple, AssertTotalMultiple, AssertLabelsAscending,
		AssertLabelsInPacket, AssertRoundTrip, AssertEmptyResult:
	default:
		return fmt.Errorf("assertions[%d]: unknown type %q", index, a.Type)
	}
	return nil
}

// rounds returns the effective number of plan builds.
func (s *Scenario) rounds() int {
	if s.Rounds == 0 {
		return 1
	}
	return s.Rounds
}
