package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/streamfeed/internal/dtype"
)

// createTestStore creates a new temporary store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a run with a fixed plan and golden result.
func createTestRun(t *testing.T, s *Store) Run {
	t.Helper()
	run, err := s.CreateRun(context.Background(), dtype.Int16, []byte(`{"enableMessages": true}`), `{"expectedMessages":["a"]}`)
	if err != nil {
		t.Fatalf("CreateRun() failed: %v", err)
	}
	return run
}
