package raster

import (
	"context"
	"errors"

	"github.com/roach88/freeboard/internal/grid"
)

// ErrNotFound is returned when a raster id is absent from a store.
var ErrNotFound = errors.New("raster not found")

// Store is a keyed collection of rasters.
type Store interface {
	// List returns every raster id in lexical order.
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, id string) (*grid.Grid, error)
	// Save replaces the raster stored under id.
	Save(ctx context.Context, id string, g *grid.Grid) error
}

// DefaultPixelType is reported for rasters whose sidecar omits a pixel type.
const DefaultPixelType = "32_BIT_FLOAT"

func defaultMeta(m grid.Metadata) grid.Metadata {
	if m.PixelType == "" {
		m.PixelType = DefaultPixelType
	}
	if m.SpatialReference == "" {
		m.SpatialReference = grid.NotDefined
	}
	if m.VerticalDatum == "" {
		m.VerticalDatum = grid.NotDefined
	}
	if m.VerticalUnit == "" {
		m.VerticalUnit = grid.NotDefined
	}
	return m
}
