package repair

import (
	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
)

// Tier records how far a cell-value repair had to escalate.
type Tier int

const (
	// TierNone means the pair already passed.
	TierNone Tier = iota
	// TierFill rewrites violating cells from FVA0 plus the level offset.
	TierFill
	// TierMedian substitutes focal medians for cells Tier 1 could not fix.
	TierMedian
)

func (t Tier) String() string {
	switch t {
	case TierNone:
		return "none"
	case TierFill:
		return "tier1"
	case TierMedian:
		return "tier2"
	}
	return "unknown"
}

// MarshalText encodes the tier by name.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Outcome summarises the repair of one pair.
type Outcome struct {
	Kind compare.Kind `json:"kind"`
	compare.Pair
	Label string `json:"label"`
	// Tier is the highest cell-value tier applied. Unused for extent repairs.
	Tier Tier `json:"tier"`
	// Attempts counts extent repair attempts.
	Attempts     int    `json:"attempts,omitempty"`
	CellsChanged int    `json:"cells_changed"`
	Resolved     bool   `json:"resolved"`
	ResidualPath string `json:"residual_path,omitempty"`

	Initial *compare.Result `json:"-"`
	Final   *compare.Result `json:"-"`
}

// Failed reports whether the pair still violates after repair.
func (o Outcome) Failed() bool {
	return !o.Resolved
}

// Sink stores residual difference rasters for pairs that could not be
// repaired and returns where each was written.
type Sink interface {
	SaveResidual(name string, g *grid.Grid) (string, error)
}
