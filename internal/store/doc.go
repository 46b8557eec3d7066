// Package store provides SQLite-backed run history for fvaqc.
//
// Each QC run records:
//   - Runs: one row per jurisdiction run with mode, final status and the
//     report and scratch locations
//   - Grids: the properties and before/after digests of every grid loaded
//   - QC results: every comparison, tagged with the stage that produced it
//   - Repairs: every repair outcome, with the tier reached and any residual
//     artifact
//
// # Ordering
//
// Results and repairs carry seq, the pipeline's logical clock. Queries
// order by seq, never by wall time, so history reads are deterministic.
// LastSeq lets a new process resume the clock where the last one stopped.
//
// # Idempotency
//
// Writes use ON CONFLICT DO NOTHING on (run_id, seq) or (run_id, level), so
// re-recording the same event is harmless.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
