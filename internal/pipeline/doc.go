// Package pipeline drives QC for one jurisdiction at a time.
//
// A run walks a fixed sequence of stages:
//
//	resolve -> load -> align -> extent -> cell -> save -> final QC -> report -> persist
//
// In check mode the extent, cell and save stages are skipped and the final
// QC describes the rasters as found.
//
// # Errors
//
// Stage failures are reported as *StageError with a Kind. GRID_NOT_FOUND,
// EXTENT_UNRESOLVED and ENGINE_FAILURE end the jurisdiction's run with
// status needs_review. MISSING_INPUT and REPAIR_EXHAUSTED are recorded on
// the RunResult as issues and the run continues. RunAll moves on to the
// next jurisdiction after a fatal error.
//
// # Ordering
//
// Every recorded result and repair is stamped from a logical Clock. When a
// history store is attached the clock resumes from the store's last seq, so
// ordering holds across processes.
//
// # Scratch
//
// Each run owns a scratch arena named after its run id. The arena is closed
// on every exit path and the configured cleanup policy decides whether it
// survives.
package pipeline
