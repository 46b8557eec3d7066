// Package repair fixes extent and cell-value violations in a freeboard
// stack.
//
// Extent repair copies the lower grid, raised by the freeboard increment,
// into the higher grid wherever the higher grid lacks coverage. Attempts are
// bounded by an AttemptBudget; exhausting it is fatal for the run and
// reported as ExtentUnresolvedError.
//
// Cell-value repair walks adjacent FVA pairs bottom-up and escalates:
//
//	Tier 1  at each violating cell, rewrite every level k in 1..i as
//	        FVA0 + k*increment, leaving cells where FVA0 has no data alone.
//	Tier 2  for cells still violating, substitute each level's own focal
//	        median over a window x window neighbourhood that excludes the
//	        violating cells and nodata.
//
// A pair that still fails after Tier 2 is recorded as failed and its
// residual difference raster is handed to a Sink. Cell-value failure is not
// fatal.
//
// Every value written by a repair is rounded to the nearest tenth.
package repair
