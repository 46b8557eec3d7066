// Package harness runs QC conformance scenarios.
//
// A scenario describes a small raster stack in YAML, runs the full pipeline
// over it and asserts on the outcome: run status, individual checks, repair
// tiers, issues and final cell values.
//
// # Scenario Format
//
//	name: extent_gap_repaired
//	description: "A gap in FVA1 is filled from FVA0 plus one increment"
//	mode: repair
//	config:
//	  required_levels: [FVA0, FVA1]
//	grids:
//	  FVA0:
//	    - [10, 10]
//	    - [10, 10]
//	  FVA1:
//	    - [11, 11]
//	    - [11, null]
//	assertions:
//	  - type: status
//	    expect: passed
//	  - type: cell
//	    level: FVA1
//	    row: 1
//	    col: 1
//	    value: 11
//
// null marks a nodata cell. Grids share one lattice unless a grid entry
// overrides origin or cell size under lattices.
//
// # Assertion Types
//
//   - status: the run status (passed, failed, needs_review)
//   - error_kind: the fatal stage error kind, e.g. GRID_NOT_FOUND
//   - check: a final QC result for a pair and kind, by status text or passed
//   - repair: the tier and resolution of a repair outcome
//   - issue: how many non-fatal issues of a kind were recorded
//   - cell: a cell's value (or nodata) in a grid after the run
//
// # Deterministic Testing
//
// Each scenario runs in a fresh temporary workspace with an in-memory
// raster store, an in-memory history database, a fixed run id and a fresh
// logical clock. The trace read back from history is therefore identical
// across runs and suitable for golden comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/extent_gap.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
