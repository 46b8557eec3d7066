package vector

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/grid"
)

var lattice = grid.Transform{OriginX: 1000, OriginY: 2000, CellSize: 3}

// maskOf builds a mask from rows where '#' marks a set cell.
func maskOf(rows ...string) *grid.Mask {
	m := grid.NewMask(len(rows), len(rows[0]), lattice)
	for r, row := range rows {
		for c, ch := range row {
			if ch == '#' {
				m.Set(r, c)
			}
		}
	}
	return m
}

func gridFor(t *testing.T, m *grid.Mask) *grid.Grid {
	t.Helper()
	g, err := grid.New(grid.FVA0, "lattice", m.Rows, m.Cols, m.Transform)
	require.NoError(t, err)
	return g
}

func TestIslandsSingleCell(t *testing.T) {
	m := maskOf(
		"...",
		"...",
		"..#",
	)
	islands := Islands(m)
	require.Len(t, islands, 1)
	assert.Equal(t, 1, islands[0].ID)
	assert.Equal(t, []grid.Cell{{Row: 2, Col: 2}}, islands[0].Cells)
	assert.InDelta(t, 9.0, islands[0].Area, 1e-9)

	require.Len(t, islands[0].Geometry, 1)
	outer := islands[0].Geometry[0][0]
	assert.Equal(t, orb.CCW, outer.Orientation())
	assert.Equal(t, orb.Bound{Min: orb.Point{1006, 1991}, Max: orb.Point{1009, 1994}}, outer.Bound())
}

func TestIslandsFourConnectivity(t *testing.T) {
	m := maskOf(
		"#..",
		".#.",
		"..#",
	)
	islands := Islands(m)
	assert.Len(t, islands, 3, "diagonal neighbours are separate islands")
	assert.InDelta(t, 27.0, TotalArea(islands), 1e-9)
}

func TestIslandAreaMatchesCellCount(t *testing.T) {
	m := maskOf(
		"####.",
		"#..#.",
		"####.",
		"....#",
		"##..#",
	)
	islands := Islands(m)
	require.Len(t, islands, 3)
	for _, is := range islands {
		assert.InDelta(t, float64(len(is.Cells))*9, is.Area, 1e-9, "island %d", is.ID)
	}
}

func TestPolygonizeRingWithHole(t *testing.T) {
	m := maskOf(
		"###",
		"#.#",
		"###",
	)
	islands := Islands(m)
	require.Len(t, islands, 1)

	geom := islands[0].Geometry
	require.Len(t, geom, 1)
	require.Len(t, geom[0], 2, "outer ring plus one hole")
	assert.Equal(t, orb.CCW, geom[0][0].Orientation())
	assert.Equal(t, orb.CW, geom[0][1].Orientation())
	assert.InDelta(t, 72.0, islands[0].Area, 1e-9)
	assert.Less(t, len(geom[0][0]), 13, "collinear vertices are dropped")
}

func TestPolygonizePinchedHole(t *testing.T) {
	// The gap at (1,1) touches the outside diagonally through the corner
	// shared with (2,2).
	m := maskOf(
		"###.",
		"#.#.",
		"##.#",
		"...#",
	)
	islands := Islands(m)
	var big Island
	for _, is := range islands {
		if len(is.Cells) > len(big.Cells) {
			big = is
		}
	}
	assert.InDelta(t, float64(len(big.Cells))*9, big.Area, 1e-9)
}

func TestRasterizeRoundTrip(t *testing.T) {
	m := maskOf(
		"..##.",
		".###.",
		".#.#.",
		".###.",
		"#....",
	)
	g := gridFor(t, m)
	back := RasterizeIslands(Islands(m), g)
	assert.Equal(t, m.Cells(), back.Cells())
}

func TestRasterizeEmpty(t *testing.T) {
	g := gridFor(t, maskOf("..", ".."))
	assert.True(t, Rasterize(nil, g).Empty())
}

func TestPoints(t *testing.T) {
	m := maskOf(
		"...",
		".#.",
		"...",
	)
	lower := gridFor(t, m)
	higher := gridFor(t, m)
	diff := gridFor(t, m)
	lower.Set(1, 1, 10)
	higher.Set(1, 1, 9.5)
	diff.Set(1, 1, -0.5)

	pts := Points(m, diff, lower, higher)
	require.Len(t, pts, 1)
	assert.Equal(t, orb.Point{1004.5, 1995.5}, pts[0].Point)
	assert.Equal(t, -0.5, pts[0].Delta)
	assert.Equal(t, 10.0, pts[0].Lower)
	assert.Equal(t, 9.5, pts[0].Higher)
}

func TestWriteIslandsGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteIslands(&buf, Islands(maskOf("#.", ".."))))

	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	require.Len(t, doc.Features, 1)
	assert.Equal(t, "MultiPolygon", doc.Features[0].Geometry.Type)
	assert.Equal(t, 9.0, doc.Features[0].Properties["area"])
	assert.Equal(t, 1.0, doc.Features[0].Properties["cells"])
}

func TestWritePointsGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	pts := []CellPoint{{Point: orb.Point{1, 2}, Row: 0, Col: 1, Delta: -0.5}}
	require.NoError(t, WritePoints(&buf, pts))
	assert.Contains(t, buf.String(), `"type":"Point"`)
	assert.Contains(t, buf.String(), `"delta":-0.5`)
}
