// Package store keeps a SQLite history of feeder runs.
//
// A run records the element type, the plan document and the canonical golden
// result of one plan build. While the run drains, a Recorder appends every
// entity posted to the output as a msgpack payload in the emissions table.
// ReplayInto re-posts a stored log into any output, which lets a run be
// re-verified against its golden result without regenerating it.
//
// # Ordering
//
// Runs and emissions carry logical seq numbers. Reads order by seq, never
// by wall time, so replays are deterministic.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
