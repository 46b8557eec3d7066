package vector

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"

	"github.com/roach88/freeboard/internal/grid"
)

// vertex is a lattice corner: (row, col) of the cell to its south-east.
type vertex struct{ r, c int }

type step struct{ dr, dc int }

func (d step) left() step  { return step{-d.dc, d.dr} }
func (d step) right() step { return step{d.dc, -d.dr} }

type edge struct {
	from, to vertex
	used     bool
}

func (e *edge) dir() step { return step{e.to.r - e.from.r, e.to.c - e.from.c} }

// Polygonize traces the boundary of a set of cells on a lattice. Each
// exterior ring is counter-clockwise with the cells on its left; holes are
// clockwise. Where cells touch only at a corner the trace turns toward the
// cell it is following, so cells are never joined through a shared corner.
// Collinear vertices are removed.
func Polygonize(tr grid.Transform, cells []grid.Cell) orb.MultiPolygon {
	if len(cells) == 0 {
		return nil
	}
	in := make(map[grid.Cell]bool, len(cells))
	for _, c := range cells {
		in[c] = true
	}
	ordered := append([]grid.Cell(nil), cells...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Row != ordered[j].Row {
			return ordered[i].Row < ordered[j].Row
		}
		return ordered[i].Col < ordered[j].Col
	})

	var edges []*edge
	out := map[vertex][]*edge{}
	add := func(from, to vertex) {
		e := &edge{from: from, to: to}
		edges = append(edges, e)
		out[from] = append(out[from], e)
	}
	for _, cell := range ordered {
		r, c := cell.Row, cell.Col
		if !in[grid.Cell{Row: r + 1, Col: c}] {
			add(vertex{r + 1, c}, vertex{r + 1, c + 1})
		}
		if !in[grid.Cell{Row: r, Col: c + 1}] {
			add(vertex{r + 1, c + 1}, vertex{r, c + 1})
		}
		if !in[grid.Cell{Row: r - 1, Col: c}] {
			add(vertex{r, c + 1}, vertex{r, c})
		}
		if !in[grid.Cell{Row: r, Col: c - 1}] {
			add(vertex{r, c}, vertex{r + 1, c})
		}
	}

	type traced struct {
		ring  orb.Ring
		probe orb.Point
	}
	var outers, holes []traced
	for _, start := range edges {
		if start.used {
			continue
		}
		ring, probe := traceRing(tr, start, out)
		if ring.Orientation() == orb.CCW {
			outers = append(outers, traced{ring, probe})
		} else {
			holes = append(holes, traced{ring, probe})
		}
	}

	mp := make(orb.MultiPolygon, len(outers))
	areas := make([]float64, len(outers))
	for i, o := range outers {
		mp[i] = orb.Polygon{o.ring}
		areas[i] = math.Abs(planar.Area(o.ring))
	}
	for _, h := range holes {
		best := -1
		for i, o := range outers {
			if planar.RingContains(o.ring, h.probe) && (best < 0 || areas[i] < areas[best]) {
				best = i
			}
		}
		if best >= 0 {
			mp[best] = append(mp[best], h.ring)
		}
	}
	return mp
}

// traceRing follows unused edges from start until it closes, preferring
// left turns at vertices with more than one way out. It returns the ring in
// map coordinates and a point just inside a cell bordering the ring.
func traceRing(tr grid.Transform, start *edge, out map[vertex][]*edge) (orb.Ring, orb.Point) {
	toPoint := func(v vertex) orb.Point {
		return orb.Point{tr.OriginX + float64(v.c)*tr.CellSize, tr.OriginY - float64(v.r)*tr.CellSize}
	}

	ring := orb.Ring{toPoint(start.from)}
	cur := start
	for {
		cur.used = true
		ring = append(ring, toPoint(cur.to))
		if cur.to == start.from {
			break
		}
		next := pickNext(cur, out[cur.to])
		if next == nil {
			break
		}
		cur = next
	}

	d, l := start.dir(), start.dir().left()
	fr := float64(start.from.r) + 0.5*float64(d.dr) + 0.25*float64(l.dr)
	fc := float64(start.from.c) + 0.5*float64(d.dc) + 0.25*float64(l.dc)
	probe := orb.Point{tr.OriginX + fc*tr.CellSize, tr.OriginY - fr*tr.CellSize}

	return simplifyRing(ring), probe
}

func pickNext(cur *edge, candidates []*edge) *edge {
	d := cur.dir()
	for _, want := range []step{d.left(), d, d.right()} {
		for _, e := range candidates {
			if !e.used && e.dir() == want {
				return e
			}
		}
	}
	return nil
}

// simplifyRing drops collinear vertices. A zero threshold keeps every
// corner.
func simplifyRing(r orb.Ring) orb.Ring {
	if len(r) <= 5 {
		return r
	}
	s := simplify.DouglasPeucker(0).Simplify(r.Clone())
	if out, ok := s.(orb.Ring); ok && len(out) >= 4 {
		return out
	}
	return r
}
