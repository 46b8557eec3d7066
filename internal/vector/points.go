package vector

import (
	"github.com/paulmach/orb"

	"github.com/roach88/freeboard/internal/grid"
)

// CellPoint locates one cell-value violation.
type CellPoint struct {
	Point  orb.Point
	Row    int
	Col    int
	Delta  float64
	Lower  float64
	Higher float64
}

// Points returns a point at the centre of every set cell in m. Values are
// taken from diff, lower and higher, all on m's lattice.
func Points(m *grid.Mask, diff, lower, higher *grid.Grid) []CellPoint {
	var out []CellPoint
	for _, c := range m.Cells() {
		x, y := m.CellCenter(c.Row, c.Col)
		p := CellPoint{Point: orb.Point{x, y}, Row: c.Row, Col: c.Col}
		p.Delta, _ = diff.At(c.Row, c.Col)
		p.Lower, _ = lower.At(c.Row, c.Col)
		if higher != nil {
			p.Higher, _ = higher.ValueAt(x, y)
		}
		out = append(out, p)
	}
	return out
}
