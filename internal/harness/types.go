package harness

import (
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/pipeline"
)

// TraceEvent is one recorded QC result or repair outcome, in seq order.
type TraceEvent struct {
	Seq          int64   `json:"seq"`
	Type         string  `json:"type"` // "result" or "repair"
	Stage        string  `json:"stage,omitempty"`
	Kind         string  `json:"kind"`
	Label        string  `json:"label"`
	Passed       bool    `json:"passed"`
	Skipped      bool    `json:"skipped,omitempty"`
	Magnitude    float64 `json:"magnitude,omitempty"`
	Violations   int     `json:"violations,omitempty"`
	Location     string  `json:"location,omitempty"`
	Tier         string  `json:"tier,omitempty"`
	Attempts     int     `json:"attempts,omitempty"`
	CellsChanged int     `json:"cells_changed,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every assertion held.
	Pass bool `json:"pass"`

	// Status is the run status recorded in history.
	Status string `json:"status"`

	// ErrorKind is set when the run ended with a fatal stage error.
	ErrorKind pipeline.ErrorKind `json:"error_kind,omitempty"`

	// Trace holds every recorded result and repair in seq order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Run is the pipeline's result.
	Run *pipeline.RunResult `json:"-"`

	// Grids holds each level's raster as stored after the run.
	Grids map[grid.Level]*grid.Grid `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Grids:  map[grid.Level]*grid.Grid{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
