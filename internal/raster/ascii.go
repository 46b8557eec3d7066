package raster

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/roach88/freeboard/internal/grid"
)

// MaxCells bounds rows*cols of a decoded ASCII grid.
const MaxCells = 1 << 28

// dimension reads an ncols or nrows header, which must be a whole number
// between 1 and MaxCells.
func dimension(header map[string]float64, key string) (int, error) {
	v := header[key]
	if v != math.Trunc(v) || v < 1 || v > MaxCells {
		return 0, fmt.Errorf("ascii grid: %s %v is not a whole number in [1, %d]", key, v, MaxCells)
	}
	return int(v), nil
}

// ReadASCII decodes an ESRI ASCII grid.
//
// Both the corner and centre forms of the lower-left reference are
// accepted. NODATA_value is optional and defaults to grid.DefaultNoData.
func ReadASCII(r io.Reader) (*grid.Grid, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if !isHeaderKey(key) {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("ascii grid: missing value for %s", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: header %s: %w", key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}

	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		if _, ok := header[k]; !ok {
			return nil, fmt.Errorf("ascii grid: missing header %s", k)
		}
	}
	cols, err := dimension(header, "ncols")
	if err != nil {
		return nil, err
	}
	rows, err := dimension(header, "nrows")
	if err != nil {
		return nil, err
	}
	if rows*cols > MaxCells {
		return nil, fmt.Errorf("ascii grid: %d x %d exceeds %d cells", rows, cols, MaxCells)
	}
	cs := header["cellsize"]

	var xll, yll float64
	switch {
	case has(header, "xllcorner") && has(header, "yllcorner"):
		xll, yll = header["xllcorner"], header["yllcorner"]
	case has(header, "xllcenter") && has(header, "yllcenter"):
		xll, yll = header["xllcenter"]-cs/2, header["yllcenter"]-cs/2
	default:
		return nil, fmt.Errorf("ascii grid: missing lower-left reference")
	}

	g, err := grid.New(0, "", rows, cols, grid.Transform{
		OriginX:  xll,
		OriginY:  yll + float64(rows)*cs,
		CellSize: cs,
	})
	if err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if nd, ok := header["nodata_value"]; ok {
		g.NoData = nd
	}

	n := 0
	next := first
	for {
		if next == "" {
			if !sc.Scan() {
				break
			}
			next = sc.Text()
		}
		if n >= len(g.Values) {
			return nil, fmt.Errorf("ascii grid: more than %d values", len(g.Values))
		}
		v, err := strconv.ParseFloat(next, 64)
		if err != nil {
			return nil, fmt.Errorf("ascii grid: value %d: %w", n, err)
		}
		g.Values[n] = v
		n++
		next = ""
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ascii grid: %w", err)
	}
	if n != len(g.Values) {
		return nil, fmt.Errorf("ascii grid: got %d values, want %d", n, len(g.Values))
	}
	return g, nil
}

// WriteASCII encodes g as an ESRI ASCII grid with a corner reference.
func WriteASCII(w io.Writer, g *grid.Grid) error {
	bw := bufio.NewWriter(w)
	_, minY, _, _ := g.Bounds()
	fmt.Fprintf(bw, "ncols %d\n", g.Cols)
	fmt.Fprintf(bw, "nrows %d\n", g.Rows)
	fmt.Fprintf(bw, "xllcorner %s\n", formatFloat(g.Transform.OriginX))
	fmt.Fprintf(bw, "yllcorner %s\n", formatFloat(minY))
	fmt.Fprintf(bw, "cellsize %s\n", formatFloat(g.Transform.CellSize))
	fmt.Fprintf(bw, "NODATA_value %s\n", formatFloat(g.NoData))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			v, ok := g.At(r, c)
			if !ok {
				v = g.NoData
			}
			bw.WriteString(formatFloat(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isHeaderKey(k string) bool {
	switch k {
	case "ncols", "nrows", "xllcorner", "yllcorner", "xllcenter", "yllcenter", "cellsize", "nodata_value":
		return true
	}
	return false
}

func has(m map[string]float64, k string) bool {
	_, ok := m[k]
	return ok
}
