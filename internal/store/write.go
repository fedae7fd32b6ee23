package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/streamfeed/internal/dtype"
	"github.com/roach88/streamfeed/internal/stream"
)

// Run is one recorded plan build.
type Run struct {
	ID     string `json:"id"`
	DType  string `json:"dtype"`
	Plan   string `json:"plan"`
	Golden string `json:"golden"`
	Seq    int64  `json:"seq"`
}

// Emission is one entity posted while a run drained.
type Emission struct {
	RunID string      `json:"run_id"`
	Seq   int64       `json:"seq"`
	Kind  stream.Kind `json:"kind"`
	// Total is the output's emitted element count before the post.
	Total   uint64 `json:"total"`
	Payload []byte `json:"-"`
}

// CreateRun inserts a run with a fresh UUIDv7 id. Its seq is one past the
// highest stored run seq.
func (s *Store) CreateRun(ctx context.Context, typ dtype.Type, plan []byte, golden string) (Run, error) {
	run := Run{
		ID:     uuid.Must(uuid.NewV7()).String(),
		DType:  typ.String(),
		Plan:   string(plan),
		Golden: golden,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&last); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	run.Seq = last.Int64 + 1

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, dtype, plan, golden, seq)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.DType, run.Plan, run.Golden, run.Seq)
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// WriteEmission appends one emission. Duplicate (run_id, seq) pairs are
// silently ignored for idempotency.
func (s *Store) WriteEmission(ctx context.Context, e Emission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emissions (run_id, seq, kind, total, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`, e.RunID, e.Seq, string(e.Kind), int64(e.Total), e.Payload)
	if err != nil {
		return fmt.Errorf("write emission: %w", err)
	}
	return nil
}

// DeleteRun removes a run and its emissions.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run %s: %w", id, ErrNotFound)
	}
	return nil
}
