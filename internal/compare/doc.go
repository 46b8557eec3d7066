// Package compare checks adjacent grids of a freeboard stack against each
// other.
//
// Two checks exist for every pair (lower, higher):
//
//   - Extent: every cell holding data in the lower grid must hold data in the
//     higher grid. Cells that break this are grouped into 4-connected islands
//     and traced into polygons; the magnitude is their total area.
//   - Cell value: on cells where both grids hold data, higher - lower must
//     not fall below -tolerance. The magnitude is the minimum difference and
//     violating cells are reported as points.
//
// Both checks are evaluated on the lower grid's lattice. The higher grid is
// sampled at lower cell centres, so grids may have different extents but
// must share a cell size and alignment for results to be meaningful.
//
// A check whose grid is missing is skipped: the result passes vacuously and
// a warning is logged. Checks never modify their inputs.
package compare
