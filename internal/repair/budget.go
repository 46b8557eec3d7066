package repair

import "fmt"

// AttemptBudget bounds how many times a repair may be applied to one pair.
//
// Check is called before every attempt. A budget of 2 allows the initial
// repair plus one retry.
type AttemptBudget struct {
	limit   int
	current int
}

// NewAttemptBudget returns a budget allowing limit attempts.
func NewAttemptBudget(limit int) *AttemptBudget {
	return &AttemptBudget{limit: limit}
}

// Check counts one attempt and fails once the budget is spent.
func (b *AttemptBudget) Check(label string) error {
	b.current++
	if b.current > b.limit {
		return &AttemptsExceededError{Label: label, Attempts: b.current - 1, Limit: b.limit}
	}
	return nil
}

// Current returns the number of attempts counted so far.
func (b *AttemptBudget) Current() int {
	return b.current
}

// Limit returns the attempt limit.
func (b *AttemptBudget) Limit() int {
	return b.limit
}

// AttemptsExceededError is returned when a repair runs out of attempts.
type AttemptsExceededError struct {
	Label    string
	Attempts int
	Limit    int
}

func (e *AttemptsExceededError) Error() string {
	return fmt.Sprintf("%s: repair still failing after %d attempts (limit %d)", e.Label, e.Attempts, e.Limit)
}
