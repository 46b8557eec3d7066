package raster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/roach88/freeboard/internal/grid"
)

// MemStore is an in-memory Store. Grids are cloned on the way in and out so
// callers never share backing arrays with the store.
type MemStore struct {
	mu    sync.RWMutex
	grids map[string]*grid.Grid
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{grids: map[string]*grid.Grid{}}
}

func (m *MemStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.grids))
	for id := range m.grids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *MemStore) Load(ctx context.Context, id string) (*grid.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.grids[id]
	if !ok {
		return nil, fmt.Errorf("load %s: %w", id, ErrNotFound)
	}
	out := g.Clone()
	out.Name = id
	out.Meta = defaultMeta(out.Meta)
	return out, nil
}

func (m *MemStore) Save(ctx context.Context, id string, g *grid.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grids[id] = g.Clone()
	return nil
}
