// Package vector converts between cell masks and planar geometry.
//
// Extent violations are reported as islands: 4-connected groups of cells,
// each traced into an orb.MultiPolygon whose outer rings run
// counter-clockwise and whose holes run clockwise. Tracing follows cell
// edges exactly, so an island's polygon area always equals its cell count
// times the cell area, and rasterising the polygon back onto the same
// lattice by cell-centre containment returns exactly the original cells.
//
// Cell-value violations are reported as points at cell centres.
//
// Both kinds serialise to GeoJSON feature collections for the artifacts a
// failing QC status points at.
package vector
