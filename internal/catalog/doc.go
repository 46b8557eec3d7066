// Package catalog resolves which rasters make up a jurisdiction's freeboard
// stack.
//
// Raster ids follow the FFRMS naming convention, tokens joined by "_":
//
//	CA_06049_10N_01FVA_RIV_03m
//	^^ ^^^^^     ^^^^^ ^^^
//	|  |         |     study type
//	|  |         level token (00FVA..03FVA, or <digits>PCT for the 0.2% grid)
//	state and county FIPS: the jurisdiction "CA_06049"
//
// Ids are NFC-normalised before parsing. Ids that do not follow the
// convention are ignored.
//
// A required level that cannot be found is fatal (GridNotFoundError). A
// missing optional level is logged and left out of the stack; comparisons
// that would involve it are skipped downstream.
package catalog
