// Package report builds the QC table for a jurisdiction.
//
// A report has two sections. The grid section lists one row per grid with
// the properties the QC checklist asks about: name, pixel type, cell size
// (rounded to five decimals), spatial reference, vertical datum and
// vertical unit. The comparison section lists one row per checked pair,
// "01FVA vs 00FVA" through "03FVA vs 02FVA" plus "02PCT vs 00FVA", with the
// extent and cell-value statuses.
//
// Build is pure. WriteCSV renders both sections to one CSV stream,
// separated by an empty record. UniquePath picks a file name that does not
// overwrite an earlier report.
package report
