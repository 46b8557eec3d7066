// Package grid provides the raster types shared by every stage of the
// freeboard consistency engine.
//
// This package contains in-memory types and pure operations only. All other
// internal packages import grid; grid imports nothing internal. This keeps
// the raster model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Values are float64 with an explicit nodata sentinel per grid
//   - Row 0 is the northern edge; the transform stores the top-left corner
//   - Cells are square; grids in one stack share a cell size and lattice
//   - Elevations are rounded to the nearest tenth after any arithmetic
package grid
