package repair

import (
	"errors"
	"fmt"
)

// ExtentUnresolvedError is returned when a footprint violation survives
// every extent repair attempt.
type ExtentUnresolvedError struct {
	Label string
	// Area is the violation area left after the last attempt.
	Area  float64
	Cause error
}

func (e *ExtentUnresolvedError) Error() string {
	return fmt.Sprintf("extent unresolved for %s: %.2f sq units remain: %v", e.Label, e.Area, e.Cause)
}

func (e *ExtentUnresolvedError) Unwrap() error { return e.Cause }

// IsExtentUnresolved reports whether err is an ExtentUnresolvedError.
// Uses errors.As to handle wrapped errors.
func IsExtentUnresolved(err error) bool {
	var ee *ExtentUnresolvedError
	return errors.As(err, &ee)
}
