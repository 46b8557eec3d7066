package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
)

func testGrid(t *testing.T, level grid.Level, cellSize float64) *grid.Grid {
	t.Helper()
	g, err := grid.New(level, "CA_06049_10N_"+level.Token()+"_RIV_03m", 1, 1, grid.Transform{OriginX: 0, OriginY: 3, CellSize: cellSize})
	require.NoError(t, err)
	g.Meta = grid.Metadata{
		PixelType:        "32_BIT_FLOAT",
		SpatialReference: "NAD_1983_UTM_Zone_10N",
		VerticalDatum:    "NAVD88",
		VerticalUnit:     "Foot_US",
	}
	return g
}

func stack(t *testing.T) []*grid.Grid {
	var out []*grid.Grid
	for _, l := range []grid.Level{grid.FVA0, grid.FVA1, grid.FVA2, grid.FVA3, grid.PCT02} {
		out = append(out, testGrid(t, l, 3.0000001))
	}
	out[4].Meta.VerticalDatum = grid.NotDefined
	out[4].Meta.VerticalUnit = grid.NotDefined
	return out
}

func results(failing string) []*compare.Result {
	pairs := append(compare.AdjacentPairs(grid.FreeboardLevels), compare.Pair{Lower: grid.FVA0, Higher: grid.PCT02})
	var out []*compare.Result
	for _, p := range pairs {
		for _, k := range []compare.Kind{compare.KindExtent, compare.KindCellValue} {
			r := &compare.Result{Kind: k, Pair: p, Label: p.Label(), Passed: true}
			if p.Label() == failing && k == compare.KindCellValue {
				r.Passed = false
				r.Location = "run-1/cell_02FVA_01FVA.geojson"
			}
			out = append(out, r)
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	r := Build("CA_06049", stack(t), results(""))
	assert.True(t, r.Passed)
	require.Len(t, r.Grids, 5)
	assert.Equal(t, 3.0, r.Grids[0].CellSize, "cell size is rounded to five places")
	require.Len(t, r.Comparisons, 4)
	assert.Equal(t, "01FVA vs 00FVA", r.Comparisons[0].Comparison)
	assert.Equal(t, "02PCT vs 00FVA", r.Comparisons[3].Comparison)
	for _, c := range r.Comparisons {
		assert.Equal(t, "Pass", c.Extent)
		assert.Equal(t, "Pass", c.CellValue)
	}
}

func TestBuildSkipsMissingGrids(t *testing.T) {
	grids := stack(t)
	grids[2] = nil
	res := results("")
	res[2].Skipped = true

	r := Build("CA_06049", grids, res)
	assert.Len(t, r.Grids, 4)
	assert.True(t, r.Comparisons[1].Skipped)
	assert.Equal(t, "Pass", r.Comparisons[1].Extent, "a skipped comparison passes vacuously")
}

func TestBuildMissingKindIsNotRun(t *testing.T) {
	r := Build("CA_06049", nil, []*compare.Result{
		{Kind: compare.KindExtent, Label: "01FVA vs 00FVA", Passed: true},
	})
	require.Len(t, r.Comparisons, 1)
	assert.Equal(t, NotRun, r.Comparisons[0].CellValue)
}

func TestWriteCSVGolden(t *testing.T) {
	r := Build("CA_06049", stack(t), results("02FVA vs 01FVA"))
	assert.False(t, r.Passed)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(&buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ca_06049_cell_failure", buf.Bytes())
}

func TestCellSizeRounding(t *testing.T) {
	assert.Equal(t, 2.12346, roundTo(2.123456, 5))
	assert.Equal(t, 3.0, roundTo(3.0000049, 5))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "CA_06049_RIV_Raster_QC_Results.csv", FileName("CA_06049_RIV"))
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	name := FileName("CA_06049_RIV")

	p, err := UniquePath(dir, name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, name), p)
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	p, err = UniquePath(dir, name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CA_06049_RIV_Raster_QC_Results_1.csv"), p)
	require.NoError(t, os.WriteFile(p, nil, 0o644))

	p, err = UniquePath(dir, name)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "CA_06049_RIV_Raster_QC_Results_2.csv"), p)
}
