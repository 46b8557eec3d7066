package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/scratch"
	"github.com/roach88/freeboard/internal/vector"
)

// artifacts writes violation descriptions into a run's scratch arena.
// Returned locations are relative to the scratch root.
type artifacts struct {
	arena *scratch.Arena
}

// SaveResidual implements repair.Sink.
func (a artifacts) SaveResidual(name string, g *grid.Grid) (string, error) {
	return a.writeFile(name+".asc", func(w io.Writer) error {
		return raster.WriteASCII(w, g)
	})
}

// describe writes the artifacts for a failing result and points its
// Location at them. Passing and skipped results are left alone.
func (a artifacts) describe(res *compare.Result) error {
	if res == nil || res.Passed || res.Skipped {
		return nil
	}
	h, l := res.Higher.Token(), res.Lower.Token()
	switch res.Kind {
	case compare.KindExtent:
		loc, err := a.writeFile(fmt.Sprintf("extent_%s_%s.geojson", h, l), func(w io.Writer) error {
			return vector.WriteIslands(w, res.Islands)
		})
		if err != nil {
			return err
		}
		res.Location = loc
	case compare.KindCellValue:
		if _, err := a.writeFile(fmt.Sprintf("points_%s_%s.geojson", h, l), func(w io.Writer) error {
			return vector.WritePoints(w, res.Points)
		}); err != nil {
			return err
		}
		if res.Diff == nil {
			return nil
		}
		loc, err := a.SaveResidual(res.Diff.Name, res.Diff)
		if err != nil {
			return err
		}
		res.Location = loc
	}
	return nil
}

func (a artifacts) writeFile(name string, write func(io.Writer) error) (string, error) {
	path, err := a.arena.Path(name)
	if err != nil {
		return "", err
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("artifact %s: %w", name, err)
	}
	return a.arena.Rel(path), nil
}
