package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/streamfeed/internal/stream"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// ReadRun returns the run with the given id.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	var run Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, dtype, plan, golden, seq
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.DType, &run.Plan, &run.Golden, &run.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run: %w", err)
	}
	return run, nil
}

// ListRuns returns every run ordered by seq.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, dtype, plan, golden, seq
		FROM runs
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.DType, &run.Plan, &run.Golden, &run.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEmissions returns a run's emissions ordered by seq.
//
// Returns an empty slice (not nil) if the run has none.
func (s *Store) ReadEmissions(ctx context.Context, runID string) ([]Emission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, total, payload
		FROM emissions
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query emissions: %w", err)
	}
	defer rows.Close()

	emissions := []Emission{}
	for rows.Next() {
		var (
			e     Emission
			kind  string
			total int64
		)
		if err := rows.Scan(&e.RunID, &e.Seq, &kind, &total, &e.Payload); err != nil {
			return nil, fmt.Errorf("scan emission: %w", err)
		}
		e.Kind = stream.Kind(kind)
		e.Total = uint64(total)
		emissions = append(emissions, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emissions: %w", err)
	}
	return emissions, nil
}

// CountEmissions returns how many emissions of each kind a run has.
func (s *Store) CountEmissions(ctx context.Context, runID string) (map[stream.Kind]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*)
		FROM emissions
		WHERE run_id = ?
		GROUP BY kind
		ORDER BY kind ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("count emissions: %w", err)
	}
	defer rows.Close()

	counts := make(map[stream.Kind]int)
	for rows.Next() {
		var (
			kind string
			n    int
		)
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan emission count: %w", err)
		}
		counts[stream.Kind(kind)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate emission counts: %w", err)
	}
	return counts, nil
}
