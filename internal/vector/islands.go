package vector

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/roach88/freeboard/internal/grid"
)

// Island is one 4-connected group of violating cells.
type Island struct {
	ID       int
	Cells    []grid.Cell
	Geometry orb.MultiPolygon
	// Area in map units squared.
	Area float64
}

var neighbours4 = [4][2]int{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Islands labels the 4-connected components of m and traces each into a
// polygon. Islands are numbered from 1 in row-major order of their first cell.
func Islands(m *grid.Mask) []Island {
	seen := grid.NewMask(m.Rows, m.Cols, m.Transform)
	var out []Island
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if !m.Get(r, c) || seen.Get(r, c) {
				continue
			}
			cells := flood(m, seen, r, c)
			geom := Polygonize(m.Transform, cells)
			out = append(out, Island{
				ID:       len(out) + 1,
				Cells:    cells,
				Geometry: geom,
				Area:     math.Abs(planar.Area(geom)),
			})
		}
	}
	return out
}

func flood(m, seen *grid.Mask, r0, c0 int) []grid.Cell {
	queue := []grid.Cell{{Row: r0, Col: c0}}
	seen.Set(r0, c0)
	var cells []grid.Cell
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		cells = append(cells, cur)
		for _, d := range neighbours4 {
			r, c := cur.Row+d[0], cur.Col+d[1]
			if m.Get(r, c) && !seen.Get(r, c) {
				seen.Set(r, c)
				queue = append(queue, grid.Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// TotalArea sums island areas.
func TotalArea(islands []Island) float64 {
	var a float64
	for _, is := range islands {
		a += is.Area
	}
	return a
}
