// Package raster loads and saves elevation grids.
//
// A Store addresses rasters by id, the file name without extension, e.g.
// "CA_06049_10N_01FVA_RIV_03m". DirStore keeps each raster as an ESRI ASCII
// grid (<id>.asc) next to an optional YAML sidecar (<id>.meta.yaml) holding
// the descriptive metadata QC reports print: pixel type, spatial reference,
// vertical datum and vertical unit. Metadata the sidecar does not carry is
// reported as "Not Defined".
//
// MemStore keeps grids in memory and is used by tests and dry runs.
//
// Stores never assign levels. Level resolution belongs to the catalog.
package raster
