package repair

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/roach88/freeboard/internal/grid"
)

// DefaultWindow is the focal median neighbourhood edge in cells.
const DefaultWindow = 10

// FocalMedian returns the median of g over the window x window block
// anchored so that (r, c) sits at offset window/2 from its top-left corner.
// Cells set in exclude and nodata cells are ignored. For an even number of
// samples the lower of the two middle values is returned.
func FocalMedian(g *grid.Grid, r, c, window int, exclude *grid.Mask) (float64, bool) {
	if window < 1 {
		window = 1
	}
	r0, c0 := r-window/2, c-window/2
	vals := make([]float64, 0, window*window)
	for rr := r0; rr < r0+window; rr++ {
		for cc := c0; cc < c0+window; cc++ {
			if exclude != nil && exclude.Get(rr, cc) {
				continue
			}
			if v, ok := g.At(rr, cc); ok {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return 0, false
	}
	sort.Float64s(vals)
	return stat.Quantile(0.5, stat.Empirical, vals, nil), true
}
