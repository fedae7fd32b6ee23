package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/streamfeed/internal/golden"
)

// Snapshot captures the golden results of every round of a scenario.
type Snapshot struct {
	ScenarioName string           `json:"scenario_name"`
	Rounds       []*golden.Result `json:"rounds"`
}

// NewSnapshot collects the golden result of every round of result.
func NewSnapshot(name string, result *Result) *Snapshot {
	s := &Snapshot{ScenarioName: name}
	for _, r := range result.Rounds {
		s.Rounds = append(s.Rounds, r.Expected)
	}
	return s
}

// Marshal renders the snapshot as canonical JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	rounds := make([]any, len(s.Rounds))
	for i, r := range s.Rounds {
		rounds[i] = r.Document()
	}
	return golden.MarshalCanonical(map[string]any{
		"scenario_name": s.ScenarioName,
		"rounds":        rounds,
	})
}

// RunWithGolden executes a scenario and compares its golden results against
// testdata/golden/{scenario.Name}.golden. Only scenarios whose plans are
// deterministic make stable snapshots.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
