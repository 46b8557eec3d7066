package pipeline

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes stage failures.
type ErrorKind string

const (
	// KindMissingInput indicates an optional input was absent. The
	// comparisons that needed it are skipped.
	KindMissingInput ErrorKind = "MISSING_INPUT"

	// KindGridNotFound indicates a required level had no raster.
	KindGridNotFound ErrorKind = "GRID_NOT_FOUND"

	// KindRepairExhausted indicates a cell-value pair still failed after
	// the last repair tier.
	KindRepairExhausted ErrorKind = "REPAIR_EXHAUSTED"

	// KindExtentUnresolved indicates the extent repair ran out of attempts.
	KindExtentUnresolved ErrorKind = "EXTENT_UNRESOLVED"

	// KindEngineFailure covers I/O errors, misaligned grids and anything
	// else the raster layer could not do.
	KindEngineFailure ErrorKind = "ENGINE_FAILURE"
)

// Fatal reports whether a failure of this kind ends the jurisdiction's run.
// Non-fatal failures are recorded as an Issue and the run continues.
func (k ErrorKind) Fatal() bool {
	switch k {
	case KindMissingInput, KindRepairExhausted:
		return false
	}
	return true
}

// StageError is a failure attributed to one pipeline stage.
type StageError struct {
	Kind         ErrorKind
	Stage        string
	Jurisdiction string
	Err          error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s stage failed for %s: %v", e.Kind, e.Stage, e.Jurisdiction, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first StageError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// Issue is a non-fatal stage failure recorded on a run.
type Issue struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
}
