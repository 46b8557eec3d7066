package grid

// Mask is a georeferenced boolean lattice.
type Mask struct {
	Rows      int
	Cols      int
	Transform Transform
	bits      []bool
}

// NewMask creates an empty mask.
func NewMask(rows, cols int, tr Transform) *Mask {
	return &Mask{Rows: rows, Cols: cols, Transform: tr, bits: make([]bool, rows*cols)}
}

// MaskLike creates an empty mask on g's lattice.
func MaskLike(g *Grid) *Mask {
	return NewMask(g.Rows, g.Cols, g.Transform)
}

// InBounds reports whether (r, c) lies inside the mask.
func (m *Mask) InBounds(r, c int) bool {
	return r >= 0 && r < m.Rows && c >= 0 && c < m.Cols
}

// Get reports whether (r, c) is set. Out-of-bounds cells are unset.
func (m *Mask) Get(r, c int) bool {
	return m.InBounds(r, c) && m.bits[r*m.Cols+c]
}

// Set marks (r, c).
func (m *Mask) Set(r, c int) {
	if m.InBounds(r, c) {
		m.bits[r*m.Cols+c] = true
	}
}

// Count returns the number of set cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is set.
func (m *Mask) Empty() bool {
	for _, b := range m.bits {
		if b {
			return false
		}
	}
	return true
}

// Cells lists set cells in row-major order.
func (m *Mask) Cells() []Cell {
	var out []Cell
	for r := 0; r < m.Rows; r++ {
		for c := 0; c < m.Cols; c++ {
			if m.bits[r*m.Cols+c] {
				out = append(out, Cell{Row: r, Col: c})
			}
		}
	}
	return out
}

// CellCenter returns the map coordinates of the centre of (r, c).
func (m *Mask) CellCenter(r, c int) (x, y float64) {
	cs := m.Transform.CellSize
	return m.Transform.OriginX + (float64(c)+0.5)*cs, m.Transform.OriginY - (float64(r)+0.5)*cs
}

// ContainsPoint reports whether the cell under map point (x, y) is set.
func (m *Mask) ContainsPoint(x, y float64) bool {
	g := Grid{Rows: m.Rows, Cols: m.Cols, Transform: m.Transform}
	r, c, ok := g.CellAt(x, y)
	return ok && m.Get(r, c)
}
