package testutil

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
)

// NA marks a nodata cell in row literals.
var NA = math.NaN()

// Lattice is the transform used by Grid: 3 m cells with the top-left
// corner at (1000, 2000).
var Lattice = grid.Transform{OriginX: 1000, OriginY: 2000, CellSize: 3}

// Grid builds a grid on Lattice from row literals. NA cells are nodata.
func Grid(t testing.TB, level grid.Level, rows [][]float64) *grid.Grid {
	t.Helper()
	return GridAt(t, level, Lattice, rows)
}

// GridAt builds a grid on tr from row literals.
func GridAt(t testing.TB, level grid.Level, tr grid.Transform, rows [][]float64) *grid.Grid {
	t.Helper()
	require.NotEmpty(t, rows, "grid needs at least one row")
	g, err := grid.New(level, level.Token(), len(rows), len(rows[0]), tr)
	require.NoError(t, err)
	for r, row := range rows {
		require.Len(t, row, g.Cols, "row %d", r)
		for c, v := range row {
			if !math.IsNaN(v) {
				g.Set(r, c, v)
			}
		}
	}
	return g
}

// Fill returns rows x cols row literals all set to v.
func Fill(rows, cols int, v float64) [][]float64 {
	out := make([][]float64, rows)
	for r := range out {
		out[r] = make([]float64, cols)
		for c := range out[r] {
			out[r][c] = v
		}
	}
	return out
}

// RasterID returns the raster id the catalog resolves for jurisdiction and
// level, e.g. "CA_06049_10N_01FVA_RIV_03m".
func RasterID(jurisdiction string, level grid.Level) string {
	return jurisdiction + "_10N_" + level.Token() + "_RIV_03m"
}

// Seed saves grids into s under RasterID names and returns the ids in the
// order given.
func Seed(t testing.TB, s raster.Store, jurisdiction string, grids ...*grid.Grid) []string {
	t.Helper()
	ids := make([]string, 0, len(grids))
	for _, g := range grids {
		id := RasterID(jurisdiction, g.Level)
		require.NoError(t, s.Save(context.Background(), id, g))
		ids = append(ids, id)
	}
	return ids
}

// Value returns the value at (r, c), failing the test on nodata.
func Value(t testing.TB, g *grid.Grid, r, c int) float64 {
	t.Helper()
	v, ok := g.At(r, c)
	require.True(t, ok, "cell (%d,%d) of %s is nodata", r, c, g.Name)
	return v
}
