package repair

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
)

// CellValueRepairer enforces value monotonicity across an FVA stack.
type CellValueRepairer struct {
	Comparator *compare.Comparator
	Increment  float64
	// Window is the focal median edge in cells for Tier 2.
	Window int
	Logger *slog.Logger
	// Sink receives residual difference rasters for pairs that stay failed.
	// A nil sink drops them.
	Sink Sink
}

func (x *CellValueRepairer) logger() *slog.Logger {
	if x.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return x.Logger
}

// Repair processes pairs (stack[i-1], stack[i]) for i = 1..len(stack)-1 in
// order, modifying grids in place. stack must be in level order with FVA0
// first. Returns one outcome per pair. The error is non-nil only for
// engine failures; unresolved pairs are reported through their outcome.
func (x *CellValueRepairer) Repair(stack []*grid.Grid) ([]Outcome, error) {
	var outcomes []Outcome
	for i := 1; i < len(stack); i++ {
		o, err := x.repairPair(stack, i)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func (x *CellValueRepairer) repairPair(stack []*grid.Grid, i int) (Outcome, error) {
	lower, higher := stack[i-1], stack[i]
	p := compare.Pair{Lower: lower.Level, Higher: higher.Level}
	log := x.logger().With("pair", p.Label())

	res := x.Comparator.CellValue(p, lower, higher)
	out := Outcome{Kind: compare.KindCellValue, Pair: p, Label: p.Label(), Initial: res, Final: res}
	if res.Passed {
		out.Resolved = true
		return out, nil
	}

	n, err := x.fill(stack, i, res.Violating, lower)
	if err != nil {
		return out, err
	}
	out.Tier = TierFill
	out.CellsChanged += n
	res = x.Comparator.CellValue(p, lower, higher)
	out.Final = res
	log.Info("cell-value tier 1 applied", "cells", n, "passed", res.Passed, "min_diff", res.Magnitude)
	if res.Passed {
		out.Resolved = true
		return out, nil
	}

	n, err = x.median(stack, i, res.Violating, lower)
	if err != nil {
		return out, err
	}
	out.Tier = TierMedian
	out.CellsChanged += n
	res = x.Comparator.CellValue(p, lower, higher)
	out.Final = res
	log.Info("cell-value tier 2 applied", "cells", n, "passed", res.Passed, "min_diff", res.Magnitude)
	if res.Passed {
		out.Resolved = true
		return out, nil
	}

	name := fmt.Sprintf("diff_%s_%s_final", p.Higher.Token(), p.Lower.Token())
	if x.Sink != nil {
		path, err := x.Sink.SaveResidual(name, res.Diff)
		if err != nil {
			return out, fmt.Errorf("save residual %s: %w", name, err)
		}
		out.ResidualPath = path
		res.Location = path
	}
	log.Warn("cell-value repair exhausted", "min_diff", res.Magnitude, "violations", res.Violations, "residual", out.ResidualPath)
	return out, nil
}

// fill is Tier 1. Violating cells are on ref's lattice.
func (x *CellValueRepairer) fill(stack []*grid.Grid, i int, violating *grid.Mask, ref *grid.Grid) (int, error) {
	base := stack[0]
	changed := 0
	for k := 1; k <= i; k++ {
		level := stack[k]
		step := float64(level.Level.Offset()-base.Level.Offset()) * x.Increment
		patch := grid.Like(ref)
		patch.Level = level.Level
		for _, c := range violating.Cells() {
			cx, cy := ref.CellCenter(c.Row, c.Col)
			bv, ok := base.ValueAt(cx, cy)
			if !ok {
				continue
			}
			patch.Set(c.Row, c.Col, grid.RoundTenth(bv+step))
		}
		n, err := grid.Mosaic(level, patch)
		if err != nil {
			return changed, fmt.Errorf("tier 1 %s: %w", level.Level, err)
		}
		changed += n
	}
	return changed, nil
}

// median is Tier 2. Medians for each level are taken from that level's
// raster before any substitution is written back.
func (x *CellValueRepairer) median(stack []*grid.Grid, i int, violating *grid.Mask, ref *grid.Grid) (int, error) {
	window := x.Window
	if window <= 0 {
		window = DefaultWindow
	}
	changed := 0
	for k := 1; k <= i; k++ {
		level := stack[k]
		exclude := grid.MaskLike(level)
		var targets []grid.Cell
		for _, c := range violating.Cells() {
			cx, cy := ref.CellCenter(c.Row, c.Col)
			r, col, ok := level.CellAt(cx, cy)
			if !ok {
				continue
			}
			exclude.Set(r, col)
			targets = append(targets, grid.Cell{Row: r, Col: col})
		}

		patch := grid.Like(level)
		for _, c := range targets {
			if v, ok := FocalMedian(level, c.Row, c.Col, window, exclude); ok {
				patch.Set(c.Row, c.Col, grid.RoundTenth(v))
			}
		}
		n, err := grid.Mosaic(level, patch)
		if err != nil {
			return changed, fmt.Errorf("tier 2 %s: %w", level.Level, err)
		}
		changed += n
	}
	return changed, nil
}
