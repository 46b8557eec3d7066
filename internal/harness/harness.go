package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"

	"github.com/roach88/freeboard/internal/catalog"
	"github.com/roach88/freeboard/internal/config"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/pipeline"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/store"
	"github.com/roach88/freeboard/internal/testutil"
)

// defaultLattice places scenario grids unless the scenario overrides it.
var defaultLattice = Lattice{OriginX: 1000, OriginY: 2000, CellSize: 3}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary workspace with an in-memory
// history database for isolation. The error is non-nil only when the
// scenario could not be set up or the pipeline failed in a way that is not
// a stage error; fatal stage errors are reported through Result.ErrorKind
// so scenarios can assert on them.
//
// Execution flow:
// 1. Create workspace, config, raster store and history
// 2. Seed the scenario grids
// 3. Run the pipeline with a fixed run id
// 4. Read the trace back from history and reload the grids
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	workspace, err := os.MkdirTemp("", "fvaqc-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	cfg, err := scenarioConfig(scenario, workspace)
	if err != nil {
		return nil, err
	}
	mode := pipeline.ModeRepair
	if scenario.Mode != "" {
		if mode, err = pipeline.ParseMode(scenario.Mode); err != nil {
			return nil, err
		}
	}
	jurisdiction := scenario.Jurisdiction
	if jurisdiction == "" {
		jurisdiction = DefaultJurisdiction
	}

	rasters := raster.NewMemStore()
	if err := seed(ctx, rasters, jurisdiction, scenario); err != nil {
		return nil, fmt.Errorf("failed to seed grids: %w", err)
	}

	history, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer history.Close()

	p := pipeline.New(cfg, rasters,
		pipeline.WithHistory(history),
		pipeline.WithRunIDs(testutil.NewFixedRunID(scenario.RunID)),
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in scenarios
	)
	run, runErr := p.Run(ctx, jurisdiction, mode)

	result := NewResult()
	result.Run = run
	if runErr != nil {
		kind, ok := pipeline.KindOf(runErr)
		if !ok {
			return nil, fmt.Errorf("run scenario %s: %w", scenario.Name, runErr)
		}
		result.ErrorKind = kind
	}
	if run != nil {
		result.Status = run.Status
		if result.Trace, err = readTrace(ctx, history, run.RunID); err != nil {
			return nil, err
		}
	}
	if err := reload(ctx, rasters, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func scenarioConfig(s *Scenario, workspace string) (config.Config, error) {
	cfg := config.Default()
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(&cfg); err != nil {
			return config.Config{}, fmt.Errorf("scenario config: %w", err)
		}
	}
	cfg.Workspace = workspace
	cfg.Database = ""
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("scenario config: %w", err)
	}
	return cfg, nil
}

func seed(ctx context.Context, rasters raster.Store, jurisdiction string, s *Scenario) error {
	for name, rows := range s.Grids {
		level, err := grid.ParseLevel(name)
		if err != nil {
			return err
		}
		lat := defaultLattice
		if s.Lattice != nil {
			lat = *s.Lattice
		}
		if override, ok := s.Lattices[name]; ok {
			lat = override
		}
		id := testutil.RasterID(jurisdiction, level)
		g, err := grid.New(level, id, len(rows), len(rows[0]), grid.Transform{
			OriginX:  lat.OriginX,
			OriginY:  lat.OriginY,
			CellSize: lat.CellSize,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		for r, row := range rows {
			for c, v := range row {
				if v != nil && !math.IsNaN(*v) {
					g.Set(r, c, *v)
				}
			}
		}
		if err := rasters.Save(ctx, id, g); err != nil {
			return err
		}
	}
	return nil
}

// readTrace merges a run's results and repairs into one seq-ordered trace.
func readTrace(ctx context.Context, history *store.Store, runID string) ([]TraceEvent, error) {
	results, err := history.ResultsForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	repairs, err := history.RepairsForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}

	trace := make([]TraceEvent, 0, len(results)+len(repairs))
	for _, r := range results {
		trace = append(trace, TraceEvent{
			Seq:        r.Seq,
			Type:       "result",
			Stage:      r.Stage,
			Kind:       r.Kind,
			Label:      r.Label,
			Passed:     r.Passed,
			Skipped:    r.Skipped,
			Magnitude:  r.Magnitude,
			Violations: r.Violations,
			Location:   r.Location,
		})
	}
	for _, r := range repairs {
		trace = append(trace, TraceEvent{
			Seq:          r.Seq,
			Type:         "repair",
			Kind:         r.Kind,
			Label:        r.Label,
			Passed:       r.Resolved,
			Tier:         r.Tier,
			Attempts:     r.Attempts,
			CellsChanged: r.CellsChanged,
			Location:     r.ResidualPath,
		})
	}
	sort.Slice(trace, func(i, j int) bool { return trace[i].Seq < trace[j].Seq })
	return trace, nil
}

// reload reads every raster back from the store after the run.
func reload(ctx context.Context, rasters raster.Store, result *Result) error {
	ids, err := rasters.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		n, ok := catalog.ParseName(id)
		if !ok {
			continue
		}
		g, err := rasters.Load(ctx, id)
		if err != nil {
			return fmt.Errorf("reload %s: %w", id, err)
		}
		g.Level = n.Level
		result.Grids[n.Level] = g
	}
	return nil
}
