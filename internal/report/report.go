package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
)

// GridRow describes one grid.
type GridRow struct {
	Level            grid.Level `json:"level"`
	Name             string     `json:"name"`
	PixelType        string     `json:"pixel_type"`
	CellSize         float64    `json:"cell_size"`
	SpatialReference string     `json:"spatial_reference"`
	VerticalDatum    string     `json:"vertical_datum"`
	VerticalUnit     string     `json:"vertical_unit"`
}

// ComparisonRow holds both statuses for one pair.
type ComparisonRow struct {
	Comparison string `json:"comparison"`
	Extent     string `json:"extent"`
	CellValue  string `json:"cell_value"`
	// Skipped is set when a grid of the pair was missing.
	Skipped bool `json:"skipped,omitempty"`
}

// Report is the QC table for one jurisdiction.
type Report struct {
	Jurisdiction string          `json:"jurisdiction"`
	Grids        []GridRow       `json:"grids"`
	Comparisons  []ComparisonRow `json:"comparisons"`
	Passed       bool            `json:"passed"`
}

// NotRun marks a check that produced no result.
const NotRun = "Not Run"

var (
	gridHeader       = []string{"Name", "Pixel_Type", "Cell_Size", "Spatial_Reference", "Vertical_Datum", "Vertical_Unit"}
	comparisonHeader = []string{"Comparison", "Extent", "Cell_Value"}
)

// Build assembles a report. Grids appear in the order given; comparisons in
// the order their pairs first appear in results.
func Build(jurisdiction string, grids []*grid.Grid, results []*compare.Result) *Report {
	r := &Report{Jurisdiction: jurisdiction, Passed: true}
	for _, g := range grids {
		if g == nil {
			continue
		}
		r.Grids = append(r.Grids, GridRow{
			Level:            g.Level,
			Name:             g.Name,
			PixelType:        g.Meta.PixelType,
			CellSize:         roundTo(g.Transform.CellSize, 5),
			SpatialReference: g.Meta.SpatialReference,
			VerticalDatum:    g.Meta.VerticalDatum,
			VerticalUnit:     g.Meta.VerticalUnit,
		})
	}

	index := map[string]int{}
	for _, res := range results {
		if !res.Passed {
			r.Passed = false
		}
		i, ok := index[res.Label]
		if !ok {
			i = len(r.Comparisons)
			index[res.Label] = i
			r.Comparisons = append(r.Comparisons, ComparisonRow{Comparison: res.Label, Extent: NotRun, CellValue: NotRun})
		}
		row := &r.Comparisons[i]
		switch res.Kind {
		case compare.KindExtent:
			row.Extent = res.Status()
		case compare.KindCellValue:
			row.CellValue = res.Status()
		}
		row.Skipped = row.Skipped || res.Skipped
	}
	return r
}

// WriteCSV renders the report.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{gridHeader}
	for _, g := range r.Grids {
		records = append(records, []string{
			g.Name,
			g.PixelType,
			strconv.FormatFloat(g.CellSize, 'f', -1, 64),
			g.SpatialReference,
			g.VerticalDatum,
			g.VerticalUnit,
		})
	}
	records = append(records, []string{}, comparisonHeader)
	for _, c := range r.Comparisons {
		records = append(records, []string{c.Comparison, c.Extent, c.CellValue})
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// FileName returns the report file name for a stack prefix such as
// "CA_06049_RIV".
func FileName(prefix string) string {
	return prefix + "_Raster_QC_Results.csv"
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
