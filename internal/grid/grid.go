package grid

import (
	"errors"
	"fmt"
	"math"
)

// DefaultNoData is the nodata sentinel written by the mosaic step.
const DefaultNoData = -99999.0

// NotDefined is reported for metadata the source raster does not carry.
const NotDefined = "Not Defined"

// Transform georeferences a grid: the top-left corner and a square cell size.
type Transform struct {
	OriginX  float64 `json:"origin_x" yaml:"origin_x"`
	OriginY  float64 `json:"origin_y" yaml:"origin_y"`
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
}

// Metadata is the descriptive part of a raster reported in QC tables.
type Metadata struct {
	PixelType        string `json:"pixel_type" yaml:"pixel_type"`
	SpatialReference string `json:"spatial_reference" yaml:"spatial_reference"`
	VerticalDatum    string `json:"vertical_datum" yaml:"vertical_datum"`
	VerticalUnit     string `json:"vertical_unit" yaml:"vertical_unit"`
}

// Cell addresses one grid cell.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Grid is a georeferenced elevation raster.
//
// Values are stored row-major. A cell holds data when its value is neither
// the nodata sentinel nor NaN.
type Grid struct {
	Level     Level
	Name      string
	Rows      int
	Cols      int
	Transform Transform
	NoData    float64
	Meta      Metadata
	Values    []float64
}

// ErrInvalidShape is returned for grids with non-positive dimensions or cell size.
var ErrInvalidShape = errors.New("invalid grid shape")

// New creates a grid filled with nodata.
func New(level Level, name string, rows, cols int, tr Transform) (*Grid, error) {
	if rows <= 0 || cols <= 0 || tr.CellSize <= 0 {
		return nil, fmt.Errorf("%w: %dx%d cell size %v", ErrInvalidShape, rows, cols, tr.CellSize)
	}
	g := &Grid{
		Level:     level,
		Name:      name,
		Rows:      rows,
		Cols:      cols,
		Transform: tr,
		NoData:    DefaultNoData,
		Values:    make([]float64, rows*cols),
	}
	for i := range g.Values {
		g.Values[i] = g.NoData
	}
	return g, nil
}

// Like creates an empty grid on g's lattice and extent.
func Like(g *Grid) *Grid {
	out := &Grid{
		Level:     g.Level,
		Name:      g.Name,
		Rows:      g.Rows,
		Cols:      g.Cols,
		Transform: g.Transform,
		NoData:    g.NoData,
		Meta:      g.Meta,
		Values:    make([]float64, len(g.Values)),
	}
	for i := range out.Values {
		out.Values[i] = out.NoData
	}
	return out
}

// Clone returns a deep copy of g.
func (g *Grid) Clone() *Grid {
	out := *g
	out.Values = append([]float64(nil), g.Values...)
	return &out
}

// InBounds reports whether (r, c) lies inside the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && r < g.Rows && c >= 0 && c < g.Cols
}

func (g *Grid) index(r, c int) int {
	return r*g.Cols + c
}

func (g *Grid) isNoData(v float64) bool {
	return math.IsNaN(v) || v == g.NoData
}

// At returns the value at (r, c) and whether the cell holds data.
// Out-of-bounds cells hold no data.
func (g *Grid) At(r, c int) (float64, bool) {
	if !g.InBounds(r, c) {
		return 0, false
	}
	v := g.Values[g.index(r, c)]
	if g.isNoData(v) {
		return 0, false
	}
	return v, true
}

// HasData reports whether (r, c) holds data.
func (g *Grid) HasData(r, c int) bool {
	_, ok := g.At(r, c)
	return ok
}

// Set writes v at (r, c). Out-of-bounds writes are ignored.
func (g *Grid) Set(r, c int, v float64) {
	if g.InBounds(r, c) {
		g.Values[g.index(r, c)] = v
	}
}


// DataCount returns the number of cells holding data.
func (g *Grid) DataCount() int {
	n := 0
	for _, v := range g.Values {
		if !g.isNoData(v) {
			n++
		}
	}
	return n
}

// CellArea returns the area of one cell in map units squared.
func (g *Grid) CellArea() float64 {
	return g.Transform.CellSize * g.Transform.CellSize
}

// CellCenter returns the map coordinates of the centre of (r, c).
func (g *Grid) CellCenter(r, c int) (x, y float64) {
	cs := g.Transform.CellSize
	return g.Transform.OriginX + (float64(c)+0.5)*cs, g.Transform.OriginY - (float64(r)+0.5)*cs
}

// CellAt returns the cell containing map point (x, y).
func (g *Grid) CellAt(x, y float64) (r, c int, ok bool) {
	cs := g.Transform.CellSize
	c = int(math.Floor((x - g.Transform.OriginX) / cs))
	r = int(math.Floor((g.Transform.OriginY - y) / cs))
	return r, c, g.InBounds(r, c)
}

// ValueAt samples g at map point (x, y).
func (g *Grid) ValueAt(x, y float64) (float64, bool) {
	r, c, ok := g.CellAt(x, y)
	if !ok {
		return 0, false
	}
	return g.At(r, c)
}

// Bounds returns the map extent of the grid.
func (g *Grid) Bounds() (minX, minY, maxX, maxY float64) {
	cs := g.Transform.CellSize
	minX = g.Transform.OriginX
	maxY = g.Transform.OriginY
	maxX = minX + float64(g.Cols)*cs
	minY = maxY - float64(g.Rows)*cs
	return minX, minY, maxX, maxY
}

// Min returns the minimum data value, or false for an empty grid.
func (g *Grid) Min() (float64, bool) {
	lo, found := math.Inf(1), false
	for _, v := range g.Values {
		if g.isNoData(v) {
			continue
		}
		found = true
		if v < lo {
			lo = v
		}
	}
	return lo, found
}
