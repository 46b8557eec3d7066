package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/repair"
)

// valueTolerance absorbs float noise when comparing cell values.
const valueTolerance = 1e-9

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %s passed=%t\n", ev.Seq, ev.Type, ev.Kind, ev.Label, ev.Passed)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks every assertion and returns the failure
// messages in order. An empty slice means all passed.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluate(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertStatus:
		if result.Status != a.Expect {
			return &AssertionError{Type: a.Type, Expected: a.Expect, Actual: result.Status, Trace: result.Trace}
		}
	case AssertErrorKind:
		if string(result.ErrorKind) != a.Expect {
			actual := string(result.ErrorKind)
			if actual == "" {
				actual = "no fatal error"
			}
			return &AssertionError{Type: a.Type, Expected: a.Expect, Actual: actual}
		}
	case AssertCheck:
		return assertCheck(result, a)
	case AssertRepair:
		return assertRepair(result, a)
	case AssertIssue:
		return assertIssue(result, a)
	case AssertCell:
		return assertCell(result, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

func assertCheck(result *Result, a Assertion) error {
	var found *compare.Result
	if result.Run != nil {
		for _, r := range result.Run.Final {
			if r.Label == a.Pair && string(r.Kind) == a.Kind {
				found = r
				break
			}
		}
	}
	expected := a.Expect
	if expected == "" {
		expected = fmt.Sprintf("passed=%t", *a.Passed)
	}
	expected = fmt.Sprintf("%s %s: %s", a.Kind, a.Pair, expected)
	if found == nil {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "no final result", Trace: result.Trace}
	}
	if a.Expect != "" && found.Status() != a.Expect {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: found.Status(), Trace: result.Trace}
	}
	if a.Passed != nil && found.Passed != *a.Passed {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("passed=%t", found.Passed), Trace: result.Trace}
	}
	return nil
}

func assertRepair(result *Result, a Assertion) error {
	var found *repair.Outcome
	if result.Run != nil {
		for i := range result.Run.Repairs {
			o := &result.Run.Repairs[i]
			if o.Label == a.Pair && string(o.Kind) == a.Kind {
				found = o
				break
			}
		}
	}
	expected := fmt.Sprintf("%s repair for %s", a.Kind, a.Pair)
	if a.Tier != "" {
		expected += " tier=" + a.Tier
	}
	if a.Resolved != nil {
		expected += fmt.Sprintf(" resolved=%t", *a.Resolved)
	}
	if found == nil {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "no repair outcome", Trace: result.Trace}
	}
	actual := fmt.Sprintf("tier=%s resolved=%t", found.Tier, found.Resolved)
	if a.Tier != "" && found.Tier.String() != a.Tier {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}
	if a.Resolved != nil && found.Resolved != *a.Resolved {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual, Trace: result.Trace}
	}
	return nil
}

func assertIssue(result *Result, a Assertion) error {
	n := 0
	if result.Run != nil {
		for _, is := range result.Run.Issues {
			if string(is.Kind) == a.Expect {
				n++
			}
		}
	}
	if n != *a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%d %s issue(s)", *a.Count, a.Expect),
			Actual:   fmt.Sprintf("%d", n),
		}
	}
	return nil
}

func assertCell(result *Result, a Assertion) error {
	level, err := grid.ParseLevel(a.Level)
	if err != nil {
		return err
	}
	expected := "nodata"
	if a.Value != nil {
		expected = fmt.Sprintf("%g", *a.Value)
	}
	expected = fmt.Sprintf("%s (%d,%d) = %s", level, a.Row, a.Col, expected)

	g, ok := result.Grids[level]
	if !ok {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: "grid not found"}
	}
	if !g.InBounds(a.Row, a.Col) {
		return &AssertionError{Type: a.Type, Expected: expected, Actual: fmt.Sprintf("out of bounds for %dx%d grid", g.Rows, g.Cols)}
	}
	v, has := g.At(a.Row, a.Col)
	actual := "nodata"
	if has {
		actual = fmt.Sprintf("%g", v)
	}
	switch {
	case a.NoData && has:
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	case a.Value != nil && (!has || math.Abs(v-*a.Value) > valueTolerance):
		return &AssertionError{Type: a.Type, Expected: expected, Actual: actual}
	}
	return nil
}
