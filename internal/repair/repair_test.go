package repair

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
)

var (
	nd      = math.NaN()
	lattice = grid.Transform{OriginX: 0, OriginY: 30, CellSize: 3}
	fva01   = compare.Pair{Lower: grid.FVA0, Higher: grid.FVA1}
)

func build(t *testing.T, level grid.Level, rows [][]float64) *grid.Grid {
	t.Helper()
	g, err := grid.New(level, level.Token(), len(rows), len(rows[0]), lattice)
	require.NoError(t, err)
	for r, row := range rows {
		for c, v := range row {
			if !math.IsNaN(v) {
				g.Set(r, c, v)
			}
		}
	}
	return g
}

func fill(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = v
		}
	}
	return out
}

func value(t *testing.T, g *grid.Grid, r, c int) float64 {
	t.Helper()
	v, ok := g.At(r, c)
	require.True(t, ok, "cell (%d,%d) of %s holds no data", r, c, g.Level)
	return v
}

func comparator() *compare.Comparator {
	return compare.NewComparator(nil, compare.DefaultTolerance, 1)
}

type memorySink struct {
	saved map[string]*grid.Grid
}

func (s *memorySink) SaveResidual(name string, g *grid.Grid) (string, error) {
	if s.saved == nil {
		s.saved = map[string]*grid.Grid{}
	}
	s.saved[name] = g.Clone()
	return "residuals/" + name + ".asc", nil
}

func TestAttemptBudget(t *testing.T) {
	b := NewAttemptBudget(2)
	require.NoError(t, b.Check("p"))
	require.NoError(t, b.Check("p"))
	err := b.Check("p")
	var exceeded *AttemptsExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 2, exceeded.Attempts)
	assert.Equal(t, 3, b.Current())
	assert.Equal(t, 2, b.Limit())
}

func TestExtentRepairSingleCell(t *testing.T) {
	lower := build(t, grid.FVA0, fill(3, 3, 10))
	higherRows := fill(3, 3, 11)
	higherRows[2][2] = nd
	higher := build(t, grid.FVA1, higherRows)

	x := &ExtentRepairer{Comparator: comparator(), Increment: 1}
	out, err := x.Repair(fva01, lower, higher)
	require.NoError(t, err)

	assert.True(t, out.Resolved)
	assert.False(t, out.Initial.Passed)
	assert.True(t, out.Final.Passed)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1, out.CellsChanged)
	assert.Equal(t, 11.0, value(t, higher, 2, 2))
}

func TestExtentRepairGrowsHigher(t *testing.T) {
	lower := build(t, grid.FVA0, [][]float64{{10.04, 10.04}})
	higher, err := grid.New(grid.FVA1, "01FVA", 1, 1, lattice)
	require.NoError(t, err)
	higher.Set(0, 0, 11)

	x := &ExtentRepairer{Comparator: comparator(), Increment: 1}
	out, err := x.Repair(fva01, lower, higher)
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, 2, higher.Cols)
	assert.Equal(t, 11.0, value(t, higher, 0, 1), "patch value is rounded to a tenth")
	assert.Equal(t, 11.0, value(t, higher, 0, 0))
}

func TestExtentRepairPassingPairIsUntouched(t *testing.T) {
	lower := build(t, grid.FVA0, fill(2, 2, 10))
	higher := build(t, grid.FVA1, fill(2, 2, 11))
	before := grid.Digest(higher)

	out, err := (&ExtentRepairer{Comparator: comparator(), Increment: 1}).Repair(fva01, lower, higher)
	require.NoError(t, err)
	assert.True(t, out.Resolved)
	assert.Equal(t, 0, out.Attempts)
	assert.Equal(t, before, grid.Digest(higher))
}

func TestExtentRepairMisaligned(t *testing.T) {
	lower := build(t, grid.FVA0, [][]float64{{10, 10}})
	higher, err := grid.New(grid.FVA1, "01FVA", 1, 1, grid.Transform{OriginX: 1, OriginY: 30, CellSize: 3})
	require.NoError(t, err)

	_, err = (&ExtentRepairer{Comparator: comparator(), Increment: 1}).Repair(fva01, lower, higher)
	require.Error(t, err)
	assert.ErrorIs(t, err, grid.ErrMisaligned)
	assert.False(t, IsExtentUnresolved(err))
}

func TestExtentUnresolvedError(t *testing.T) {
	err := &ExtentUnresolvedError{Label: "01FVA vs 00FVA", Area: 9, Cause: &AttemptsExceededError{Label: "01FVA vs 00FVA", Attempts: 2, Limit: 2}}
	assert.True(t, IsExtentUnresolved(err))
	var exceeded *AttemptsExceededError
	assert.ErrorAs(t, err, &exceeded, "cause is reachable through Unwrap")
	assert.Contains(t, err.Error(), "01FVA vs 00FVA")
}

func TestCellRepairTier1(t *testing.T) {
	fva0 := build(t, grid.FVA0, fill(3, 3, 10))
	rows := fill(3, 3, 10)
	rows[1][1] = 9.5
	fva1 := build(t, grid.FVA1, rows)

	x := &CellValueRepairer{Comparator: comparator(), Increment: 1}
	outs, err := x.Repair([]*grid.Grid{fva0, fva1})
	require.NoError(t, err)
	require.Len(t, outs, 1)

	o := outs[0]
	assert.Equal(t, TierFill, o.Tier)
	assert.True(t, o.Resolved)
	assert.InDelta(t, -0.5, o.Initial.Magnitude, 1e-9)
	assert.InDelta(t, 0.0, o.Final.Magnitude, 1e-9)
	assert.Equal(t, 11.0, value(t, fva1, 1, 1))
	assert.Equal(t, 10.0, value(t, fva0, 1, 1), "FVA0 is never modified")
}

func TestCellRepairTier1MinimumAfterFix(t *testing.T) {
	fva0 := build(t, grid.FVA0, fill(3, 3, 10))
	rows := fill(3, 3, 11)
	rows[1][1] = 9.5
	fva1 := build(t, grid.FVA1, rows)

	outs, err := (&CellValueRepairer{Comparator: comparator(), Increment: 1}).Repair([]*grid.Grid{fva0, fva1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, outs[0].Final.Magnitude, 1e-9)
}

func TestCellRepairTier1RewritesLowerLevels(t *testing.T) {
	fva0 := build(t, grid.FVA0, fill(1, 1, 10))
	fva1 := build(t, grid.FVA1, fill(1, 1, 11))
	fva2 := build(t, grid.FVA2, fill(1, 1, 10.5))

	outs, err := (&CellValueRepairer{Comparator: comparator(), Increment: 1}).Repair([]*grid.Grid{fva0, fva1, fva2})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Equal(t, TierNone, outs[0].Tier)
	assert.Equal(t, TierFill, outs[1].Tier)
	assert.True(t, outs[1].Resolved)
	assert.Equal(t, 11.0, value(t, fva1, 0, 0))
	assert.Equal(t, 12.0, value(t, fva2, 0, 0))
}

func TestCellRepairTier2(t *testing.T) {
	rows0 := fill(3, 3, 10)
	rows0[1][1] = nd
	fva0 := build(t, grid.FVA0, rows0)
	fva1 := build(t, grid.FVA1, fill(3, 3, 11))
	rows2 := fill(3, 3, 12)
	rows2[1][1] = 10.5
	fva2 := build(t, grid.FVA2, rows2)

	x := &CellValueRepairer{Comparator: comparator(), Increment: 1, Window: 3}
	outs, err := x.Repair([]*grid.Grid{fva0, fva1, fva2})
	require.NoError(t, err)
	require.Len(t, outs, 2)

	o := outs[1]
	assert.Equal(t, TierMedian, o.Tier, "FVA0 has no data at the violating cell so tier 1 cannot help")
	assert.True(t, o.Resolved)
	assert.Equal(t, 1, o.CellsChanged)
	assert.Equal(t, 12.0, value(t, fva2, 1, 1))
	assert.Equal(t, 11.0, value(t, fva1, 1, 1))
}

func TestCellRepairExhausted(t *testing.T) {
	// FVA0 is empty and the violating cell has no data neighbours,
	// so neither tier has anything to work with.
	fva0 := build(t, grid.FVA0, [][]float64{{nd, nd}})
	fva1 := build(t, grid.FVA1, [][]float64{{11, nd}})
	fva2 := build(t, grid.FVA2, [][]float64{{9, nd}})

	sink := &memorySink{}
	x := &CellValueRepairer{Comparator: comparator(), Increment: 1, Window: 3, Sink: sink}
	outs, err := x.Repair([]*grid.Grid{fva0, fva1, fva2})
	require.NoError(t, err)
	require.Len(t, outs, 2)

	o := outs[1]
	assert.True(t, o.Failed())
	assert.Equal(t, TierMedian, o.Tier)
	assert.Equal(t, "residuals/diff_02FVA_01FVA_final.asc", o.ResidualPath)
	assert.Equal(t, "Fail! See residuals/diff_02FVA_01FVA_final.asc for details.", o.Final.Status())
	require.Contains(t, sink.saved, "diff_02FVA_01FVA_final")
	assert.InDelta(t, -2.0, value(t, sink.saved["diff_02FVA_01FVA_final"], 0, 0), 1e-9)
}

func TestCellRepairRoundsWrites(t *testing.T) {
	fva0 := build(t, grid.FVA0, fill(1, 1, 10.04))
	fva1 := build(t, grid.FVA1, fill(1, 1, 9))

	_, err := (&CellValueRepairer{Comparator: comparator(), Increment: 1}).Repair([]*grid.Grid{fva0, fva1})
	require.NoError(t, err)
	got := value(t, fva1, 0, 0)
	assert.Equal(t, got, grid.RoundTenth(got))
	assert.Equal(t, 11.0, got)
}

func TestCellRepairIdempotent(t *testing.T) {
	fva0 := build(t, grid.FVA0, fill(3, 3, 10))
	rows := fill(3, 3, 11)
	rows[0][2] = 9
	fva1 := build(t, grid.FVA1, rows)
	x := &CellValueRepairer{Comparator: comparator(), Increment: 1}

	_, err := x.Repair([]*grid.Grid{fva0, fva1})
	require.NoError(t, err)
	first := grid.Digest(fva1)

	outs, err := x.Repair([]*grid.Grid{fva0, fva1})
	require.NoError(t, err)
	assert.Equal(t, TierNone, outs[0].Tier)
	assert.Equal(t, first, grid.Digest(fva1))
}

func TestFocalMedian(t *testing.T) {
	g := build(t, grid.FVA1, [][]float64{
		{1, 2, 3},
		{4, 100, 6},
		{7, 8, nd},
	})
	exclude := grid.MaskLike(g)
	exclude.Set(1, 1)

	v, ok := FocalMedian(g, 1, 1, 3, exclude)
	require.True(t, ok)
	assert.Equal(t, 4.0, v, "lower median of 1 2 3 4 6 7 8")

	v, ok = FocalMedian(g, 0, 0, 2, nil)
	require.True(t, ok)
	assert.Equal(t, 1.0, v, "window anchored at (-1,-1) sees only (0,0)")

	empty, err := grid.New(grid.FVA1, "e", 2, 2, lattice)
	require.NoError(t, err)
	_, ok = FocalMedian(empty, 0, 0, 3, nil)
	assert.False(t, ok)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "none", TierNone.String())
	assert.Equal(t, "tier1", TierFill.String())
	assert.Equal(t, "tier2", TierMedian.String())
}
