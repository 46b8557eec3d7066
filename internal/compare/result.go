package compare

import (
	"fmt"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/vector"
)

// Kind names a check.
type Kind string

const (
	KindExtent    Kind = "extent"
	KindCellValue Kind = "cell_value"
)

// Pair is an ordered (lower, higher) pair of levels.
type Pair struct {
	Lower  grid.Level `json:"lower"`
	Higher grid.Level `json:"higher"`
}

// Label names the pair as QC reports print it: "01FVA vs 00FVA".
func (p Pair) Label() string {
	return grid.PairLabel(p.Lower, p.Higher)
}

// AdjacentPairs returns (levels[i-1], levels[i]) for each i.
func AdjacentPairs(levels []grid.Level) []Pair {
	var out []Pair
	for i := 1; i < len(levels); i++ {
		out = append(out, Pair{Lower: levels[i-1], Higher: levels[i]})
	}
	return out
}

// Result is the outcome of one check.
type Result struct {
	Kind Kind `json:"kind"`
	Pair
	Label   string `json:"label"`
	Passed  bool   `json:"passed"`
	Skipped bool   `json:"skipped,omitempty"`
	// Magnitude is the violation area for extent checks and the minimum
	// difference for cell-value checks.
	Magnitude  float64 `json:"magnitude"`
	Violations int     `json:"violations"`
	// Location points at the artifact describing the violations. It is set
	// by whoever persists the artifact.
	Location string `json:"location,omitempty"`
	// StepDeviations counts shared cells whose difference strays from the
	// expected freeboard step by more than StepBand. Advisory only.
	StepDeviations int `json:"step_deviations,omitempty"`

	Islands   []vector.Island    `json:"-"`
	Points    []vector.CellPoint `json:"-"`
	Diff      *grid.Grid         `json:"-"`
	Violating *grid.Mask         `json:"-"`
}

// Status renders the result as the QC table prints it.
func (r *Result) Status() string {
	if r.Passed {
		return "Pass"
	}
	if r.Location == "" {
		return "Fail!"
	}
	return fmt.Sprintf("Fail! See %s for details.", r.Location)
}
