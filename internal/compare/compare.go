package compare

import (
	"io"
	"log/slog"
	"math"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/vector"
)

// DefaultTolerance absorbs floating-point noise in value differences.
const DefaultTolerance = 1e-6

// StepBand is how far a difference may stray from the expected freeboard
// step before it counts as a step deviation.
const StepBand = 0.05

// Comparator runs extent and cell-value checks.
type Comparator struct {
	Logger    *slog.Logger
	Tolerance float64
	// Increment is the freeboard step between adjacent levels, used for
	// step-deviation counts.
	Increment float64
}

// NewComparator returns a comparator with the given tolerance and increment.
// A nil logger discards output.
func NewComparator(logger *slog.Logger, tolerance, increment float64) *Comparator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Comparator{Logger: logger, Tolerance: tolerance, Increment: increment}
}

func (c *Comparator) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

func (c *Comparator) skipped(kind Kind, p Pair, lower, higher *grid.Grid) *Result {
	missing := p.Lower
	if lower != nil {
		missing = p.Higher
	}
	c.logger().Warn("comparison skipped, grid missing",
		"check", string(kind),
		"pair", p.Label(),
		"missing", missing.String(),
	)
	return &Result{Kind: kind, Pair: p, Label: p.Label(), Passed: true, Skipped: true}
}

// Extent checks that the higher grid's footprint covers the lower's.
func (c *Comparator) Extent(p Pair, lower, higher *grid.Grid) *Result {
	if lower == nil || higher == nil {
		return c.skipped(KindExtent, p, lower, higher)
	}

	m := grid.MaskLike(lower)
	for r := 0; r < lower.Rows; r++ {
		for col := 0; col < lower.Cols; col++ {
			if !lower.HasData(r, col) {
				continue
			}
			x, y := lower.CellCenter(r, col)
			if _, ok := higher.ValueAt(x, y); !ok {
				m.Set(r, col)
			}
		}
	}

	islands := vector.Islands(m)
	res := &Result{
		Kind:       KindExtent,
		Pair:       p,
		Label:      p.Label(),
		Passed:     len(islands) == 0,
		Magnitude:  vector.TotalArea(islands),
		Violations: len(islands),
		Islands:    islands,
		Violating:  m,
	}
	c.logger().Debug("extent check",
		"pair", res.Label,
		"passed", res.Passed,
		"islands", res.Violations,
		"area", res.Magnitude,
	)
	return res
}

// CellValue checks that higher - lower >= -tolerance on every shared cell.
func (c *Comparator) CellValue(p Pair, lower, higher *grid.Grid) *Result {
	if lower == nil || higher == nil {
		return c.skipped(KindCellValue, p, lower, higher)
	}

	diff := grid.Like(lower)
	diff.Name = "diff_" + p.Higher.Token() + "_" + p.Lower.Token()
	shared := 0
	for r := 0; r < lower.Rows; r++ {
		for col := 0; col < lower.Cols; col++ {
			lv, ok := lower.At(r, col)
			if !ok {
				continue
			}
			x, y := lower.CellCenter(r, col)
			hv, ok := higher.ValueAt(x, y)
			if !ok {
				continue
			}
			diff.Set(r, col, hv-lv)
			shared++
		}
	}

	res := &Result{Kind: KindCellValue, Pair: p, Label: p.Label(), Diff: diff}
	minDiff, ok := diff.Min()
	if !ok {
		res.Passed = true
		res.Violating = grid.MaskLike(lower)
		c.logger().Debug("cell-value check: no shared cells", "pair", res.Label)
		return res
	}

	res.Magnitude = minDiff
	res.Passed = minDiff >= -c.Tolerance
	res.Violating = c.violating(diff)
	res.Violations = res.Violating.Count()
	res.Points = vector.Points(res.Violating, diff, lower, higher)
	res.StepDeviations = c.stepDeviations(p, diff)

	c.logger().Debug("cell-value check",
		"pair", res.Label,
		"passed", res.Passed,
		"min_diff", res.Magnitude,
		"violations", res.Violations,
		"shared", shared,
	)
	return res
}

// Violating marks cells of diff below -tolerance.
func (c *Comparator) violating(diff *grid.Grid) *grid.Mask {
	m := grid.MaskLike(diff)
	for r := 0; r < diff.Rows; r++ {
		for col := 0; col < diff.Cols; col++ {
			if d, ok := diff.At(r, col); ok && d < -c.Tolerance {
				m.Set(r, col)
			}
		}
	}
	return m
}

func (c *Comparator) stepDeviations(p Pair, diff *grid.Grid) int {
	if !p.Lower.IsFreeboard() || !p.Higher.IsFreeboard() || c.Increment == 0 {
		return 0
	}
	want := float64(p.Higher.Offset()-p.Lower.Offset()) * c.Increment
	n := 0
	for _, d := range diff.Values {
		if d == diff.NoData || math.IsNaN(d) {
			continue
		}
		if math.Abs(d-want) > StepBand+c.Tolerance {
			n++
		}
	}
	return n
}
