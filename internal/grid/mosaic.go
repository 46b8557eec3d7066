package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrMisaligned is returned when two grids do not share a lattice.
var ErrMisaligned = errors.New("grids are not lattice-aligned")

const alignTolerance = 1e-6

// Offset returns the row and column of b's cell (0, 0) expressed in a's
// lattice. Grids must share a cell size and their origins must differ by a
// whole number of cells.
func Offset(a, b *Grid) (dr, dc int, err error) {
	cs := a.Transform.CellSize
	if math.Abs(cs-b.Transform.CellSize) > alignTolerance*cs {
		return 0, 0, fmt.Errorf("%w: cell size %v vs %v", ErrMisaligned, cs, b.Transform.CellSize)
	}
	fc := (b.Transform.OriginX - a.Transform.OriginX) / cs
	fr := (a.Transform.OriginY - b.Transform.OriginY) / cs
	if math.Abs(fc-math.Round(fc)) > alignTolerance || math.Abs(fr-math.Round(fr)) > alignTolerance {
		return 0, 0, fmt.Errorf("%w: origin (%v, %v) vs (%v, %v)", ErrMisaligned,
			a.Transform.OriginX, a.Transform.OriginY, b.Transform.OriginX, b.Transform.OriginY)
	}
	return int(math.Round(fr)), int(math.Round(fc)), nil
}



// grow extends g to include rows [top, bottom) and columns [left, right)
// of its own lattice, which may be negative.
func (g *Grid) grow(top, left, bottom, right int) {
	top, left = min(0, top), min(0, left)
	bottom, right = max(g.Rows, bottom), max(g.Cols, right)
	if top == 0 && left == 0 && bottom == g.Rows && right == g.Cols {
		return
	}

	rows, cols := bottom-top, right-left
	values := make([]float64, rows*cols)
	for i := range values {
		values[i] = g.NoData
	}
	for r := 0; r < g.Rows; r++ {
		dst := (r-top)*cols - left
		copy(values[dst:dst+g.Cols], g.Values[r*g.Cols:(r+1)*g.Cols])
	}

	cs := g.Transform.CellSize
	g.Transform.OriginX += float64(left) * cs
	g.Transform.OriginY -= float64(top) * cs
	g.Rows, g.Cols, g.Values = rows, cols, values
}

// dataWindow returns the bounding rows and columns of g's data cells,
// half-open.
func (g *Grid) dataWindow() (r0, c0, r1, c1 int, ok bool) {
	r0, c0 = g.Rows, g.Cols
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if !g.HasData(r, c) {
				continue
			}
			ok = true
			r0, c0 = min(r0, r), min(c0, c)
			r1, c1 = max(r1, r+1), max(c1, c+1)
		}
	}
	return r0, c0, r1, c1, ok
}

// Mosaic writes every data cell of patch into target, last wins. The target
// extent grows when patch data falls outside it; nodata margins of the patch
// never grow the target. Returns the number of cells whose value changed.
func Mosaic(target, patch *Grid) (int, error) {
	dr, dc, err := Offset(target, patch)
	if err != nil {
		return 0, err
	}
	r0, c0, r1, c1, ok := patch.dataWindow()
	if !ok {
		return 0, nil
	}
	target.grow(dr+r0, dc+c0, dr+r1, dc+c1)
	if dr, dc, err = Offset(target, patch); err != nil {
		return 0, err
	}

	changed := 0
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			v, ok := patch.At(r, c)
			if !ok {
				continue
			}
			old, had := target.At(r+dr, c+dc)
			if had && old == v {
				continue
			}
			target.Set(r+dr, c+dc, v)
			changed++
		}
	}
	return changed, nil
}
