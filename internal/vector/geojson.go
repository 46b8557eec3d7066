package vector

import (
	"fmt"
	"io"

	"github.com/paulmach/orb/geojson"
)

// IslandCollection builds a feature collection with one polygon feature per
// island.
func IslandCollection(islands []Island) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, is := range islands {
		f := geojson.NewFeature(is.Geometry)
		f.Properties["id"] = is.ID
		f.Properties["area"] = is.Area
		f.Properties["cells"] = len(is.Cells)
		fc.Append(f)
	}
	return fc
}

// PointCollection builds a feature collection with one point feature per
// violating cell.
func PointCollection(points []CellPoint) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range points {
		f := geojson.NewFeature(p.Point)
		f.Properties["row"] = p.Row
		f.Properties["col"] = p.Col
		f.Properties["delta"] = p.Delta
		f.Properties["lower"] = p.Lower
		f.Properties["higher"] = p.Higher
		fc.Append(f)
	}
	return fc
}

// WriteIslands writes islands as GeoJSON.
func WriteIslands(w io.Writer, islands []Island) error {
	return write(w, IslandCollection(islands))
}

// WritePoints writes cell points as GeoJSON.
func WritePoints(w io.Writer, points []CellPoint) error {
	return write(w, PointCollection(points))
}

func write(w io.Writer, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("geojson: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("geojson: %w", err)
	}
	return nil
}
