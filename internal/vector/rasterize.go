package vector

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/roach88/freeboard/internal/grid"
)

// Rasterize marks every cell of g's lattice whose centre lies inside geom.
func Rasterize(geom orb.MultiPolygon, g *grid.Grid) *grid.Mask {
	m := grid.MaskLike(g)
	if len(geom) == 0 {
		return m
	}
	b := geom.Bound()
	cs := g.Transform.CellSize
	c0 := clamp(int(math.Floor((b.Min.X()-g.Transform.OriginX)/cs)), g.Cols)
	c1 := clamp(int(math.Floor((b.Max.X()-g.Transform.OriginX)/cs)), g.Cols)
	r0 := clamp(int(math.Floor((g.Transform.OriginY-b.Max.Y())/cs)), g.Rows)
	r1 := clamp(int(math.Floor((g.Transform.OriginY-b.Min.Y())/cs)), g.Rows)

	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			x, y := g.CellCenter(r, c)
			pt := orb.Point{x, y}
			if b.Contains(pt) && planar.MultiPolygonContains(geom, pt) {
				m.Set(r, c)
			}
		}
	}
	return m
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// RasterizeIslands marks the union of every island's geometry.
func RasterizeIslands(islands []Island, g *grid.Grid) *grid.Mask {
	m := grid.MaskLike(g)
	for _, is := range islands {
		part := Rasterize(is.Geometry, g)
		for _, c := range part.Cells() {
			m.Set(c.Row, c.Col)
		}
	}
	return m
}
