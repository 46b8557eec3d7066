package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/freeboard/internal/grid"
)

const (
	gridExt = ".asc"
	metaExt = ".meta.yaml"
)

// DirStore is a Store over a directory of ESRI ASCII grids.
type DirStore struct {
	Root string
}

// NewDirStore returns a store rooted at dir, creating the directory if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("raster store %s: %w", dir, err)
	}
	return &DirStore{Root: dir}, nil
}

// sidecar is the on-disk form of grid.Metadata.
type sidecar struct {
	PixelType        string `yaml:"pixel_type,omitempty"`
	SpatialReference string `yaml:"spatial_reference,omitempty"`
	VerticalDatum    string `yaml:"vertical_datum,omitempty"`
	VerticalUnit     string `yaml:"vertical_unit,omitempty"`
}

func (s *DirStore) gridPath(id string) string { return filepath.Join(s.Root, id+gridExt) }
func (s *DirStore) metaPath(id string) string { return filepath.Join(s.Root, id+metaExt) }

// List returns the ids of every .asc file in the root directory.
func (s *DirStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Root, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), gridExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads the grid and its sidecar.
func (s *DirStore) Load(ctx context.Context, id string) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.gridPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	defer f.Close()

	g, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	g.Name = id

	meta, err := s.readMeta(id)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}
	g.Meta = defaultMeta(meta)
	return g, nil
}

func (s *DirStore) readMeta(id string) (grid.Metadata, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return grid.Metadata{}, nil
	}
	if err != nil {
		return grid.Metadata{}, err
	}
	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return grid.Metadata{}, fmt.Errorf("sidecar: %w", err)
	}
	return grid.Metadata(sc), nil
}

// Save writes the grid and its sidecar. Each file is written to a temporary
// name in the same directory and renamed into place.
func (s *DirStore) Save(ctx context.Context, id string, g *grid.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := WriteASCII(&buf, g); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	if err := writeAtomic(s.gridPath(id), buf.Bytes()); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}

	meta, err := yaml.Marshal(sidecar(g.Meta))
	if err != nil {
		return fmt.Errorf("save %s: sidecar: %w", id, err)
	}
	if err := writeAtomic(s.metaPath(id), meta); err != nil {
		return fmt.Errorf("save %s: %w", id, err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
