package repair

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/vector"
)

// DefaultExtentAttempts allows the initial repair plus one retry.
const DefaultExtentAttempts = 2

// ExtentRepairer closes footprint gaps in a higher grid.
type ExtentRepairer struct {
	Comparator *compare.Comparator
	Increment  float64
	Attempts   int
	Logger     *slog.Logger
}

func (x *ExtentRepairer) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return x.Logger
}

// Repair checks the pair and, while it fails, burns the violating islands
// into higher at lower + step, rounded to a tenth. higher is modified in
// place and may grow to cover lower.
//
// The returned error is an ExtentUnresolvedError when the attempt budget
// runs out, or a wrapped grid error when the grids cannot be mosaicked.
func (x *ExtentRepairer) Repair(p compare.Pair, lower, higher *grid.Grid) (Outcome, error) {
	res := x.Comparator.Extent(p, lower, higher)
	out := Outcome{Kind: compare.KindExtent, Pair: p, Label: p.Label(), Initial: res, Final: res}
	if res.Passed {
		out.Resolved = true
		return out, nil
	}

	attempts := x.Attempts
	if attempts <= 0 {
		attempts = DefaultExtentAttempts
	}
	budget := NewAttemptBudget(attempts)
	step := float64(p.Higher.Offset()-p.Lower.Offset()) * x.Increment

	for !res.Passed {
		if err := budget.Check(p.Label()); err != nil {
			out.Attempts = budget.Limit()
			return out, &ExtentUnresolvedError{Label: p.Label(), Area: res.Magnitude, Cause: err}
		}

		m := vector.RasterizeIslands(res.Islands, lower)
		patch := grid.Like(lower)
		patch.Level = higher.Level
		for _, c := range m.Cells() {
			if v, ok := lower.At(c.Row, c.Col); ok {
				patch.Set(c.Row, c.Col, grid.RoundTenth(v+step))
			}
		}
		n, err := grid.Mosaic(higher, patch)
		if err != nil {
			return out, fmt.Errorf("extent repair %s: %w", p.Label(), err)
		}
		out.CellsChanged += n
		out.Attempts = budget.Current()

		x.logger().Info("extent repair applied",
			"pair", p.Label(),
			"attempt", budget.Current(),
			"islands", len(res.Islands),
			"cells", n,
		)
		res = x.Comparator.Extent(p, lower, higher)
		out.Final = res
	}
	out.Resolved = true
	return out, nil
}
