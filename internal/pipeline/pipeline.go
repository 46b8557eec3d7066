package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/roach88/freeboard/internal/catalog"
	"github.com/roach88/freeboard/internal/compare"
	"github.com/roach88/freeboard/internal/config"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/repair"
	"github.com/roach88/freeboard/internal/report"
	"github.com/roach88/freeboard/internal/scratch"
	"github.com/roach88/freeboard/internal/store"
)

// Mode selects whether a run repairs or only checks.
type Mode string

const (
	ModeCheck  Mode = "check"
	ModeRepair Mode = "repair"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCheck, ModeRepair:
		return m, nil
	}
	return "", fmt.Errorf("unknown mode %q (want check or repair)", s)
}

// Pipeline runs QC over the rasters of one store.
type Pipeline struct {
	cfg     config.Config
	rasters raster.Store
	output  raster.Store
	history *store.Store
	clock   *Clock
	ids     RunIDGenerator
	logger  *slog.Logger
	resumed bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHistory records runs in s. The clock is advanced past s's last seq
// on the first run.
func WithHistory(s *store.Store) Option {
	return func(p *Pipeline) { p.history = s }
}

// WithOutput sets where repaired rasters go when overwrite is off.
// Default: a DirStore at the configured output_dir.
func WithOutput(s raster.Store) Option {
	return func(p *Pipeline) { p.output = s }
}

// WithClock sets the logical clock.
func WithClock(c *Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// WithRunIDs sets the run id generator. Default: UUIDv7Generator.
func WithRunIDs(g RunIDGenerator) Option {
	return func(p *Pipeline) { p.ids = g }
}

// WithLogger sets the logger. Default: discard.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline reading rasters from rasters.
func New(cfg config.Config, rasters raster.Store, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, rasters: rasters}
	for _, opt := range opts {
		opt(p)
	}
	if p.clock == nil {
		p.clock = NewClock()
	}
	if p.ids == nil {
		p.ids = UUIDv7Generator{}
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

// Clock returns the pipeline's logical clock.
func (p *Pipeline) Clock() *Clock { return p.clock }

// GridDigest records a grid's digest before and after the run.
type GridDigest struct {
	Level  grid.Level `json:"level"`
	Name   string     `json:"name"`
	Before string     `json:"before"`
	After  string     `json:"after,omitempty"`
}

// RunResult is everything one jurisdiction run produced.
type RunResult struct {
	RunID        string            `json:"run_id"`
	Jurisdiction string            `json:"jurisdiction"`
	Mode         Mode              `json:"mode"`
	Status       string            `json:"status"`
	Levels       []grid.Level      `json:"levels,omitempty"`
	Digests      []GridDigest      `json:"digests,omitempty"`
	Initial      []*compare.Result `json:"initial,omitempty"`
	Repairs      []repair.Outcome  `json:"repairs,omitempty"`
	Final        []*compare.Result `json:"final,omitempty"`
	Report       *report.Report    `json:"report,omitempty"`
	ReportPath   string            `json:"report_path,omitempty"`
	// ScratchDir is set when the arena survived the run.
	ScratchDir string    `json:"scratch_dir,omitempty"`
	Issues     []Issue   `json:"issues,omitempty"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Passed reports whether the run finished and every final check passed.
func (r *RunResult) Passed() bool {
	return r.Status == store.StatusPassed
}

// Run performs one QC run for jurisdiction. A non-nil error is a fatal
// *StageError; the RunResult is still returned with status needs_review
// and whatever was produced before the failure.
func (p *Pipeline) Run(ctx context.Context, jurisdiction string, mode Mode) (*RunResult, error) {
	if err := p.resume(ctx); err != nil {
		return nil, &StageError{Kind: KindEngineFailure, Stage: "persist", Jurisdiction: jurisdiction, Err: err}
	}
	id := p.ids.Generate()
	log := p.logger.With("jurisdiction", jurisdiction, "run_id", id)
	r := &run{
		p:     p,
		cfg:   p.cfg,
		log:   log,
		cmp:   compare.NewComparator(log, p.cfg.Tolerance, p.cfg.Increment),
		seq:   p.clock.Next(),
		res:   &RunResult{RunID: id, Jurisdiction: jurisdiction, Mode: mode, Status: store.StatusRunning},
		grids: map[grid.Level]*grid.Grid{},
	}
	r.log.Info("run started", "mode", mode)
	err := r.execute(ctx)
	r.finish(ctx, err)
	return r.res, err
}

// RunAll runs each jurisdiction in turn. An empty list runs every
// jurisdiction in the store with rasters of the configured study type. A
// fatal error in one jurisdiction is logged and joined into the returned
// error; the rest still run.
func (p *Pipeline) RunAll(ctx context.Context, jurisdictions []string, mode Mode) ([]*RunResult, error) {
	if len(jurisdictions) == 0 {
		js, err := catalog.Jurisdictions(ctx, p.rasters, p.cfg.StudyType)
		if err != nil {
			return nil, &StageError{Kind: KindEngineFailure, Stage: "resolve", Jurisdiction: "*", Err: err}
		}
		jurisdictions = js
	}

	var results []*RunResult
	var errs []error
	for _, j := range jurisdictions {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := p.Run(ctx, j, mode)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			p.logger.Error("jurisdiction needs review", "jurisdiction", j, "error", err)
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (p *Pipeline) resume(ctx context.Context) error {
	if p.resumed || p.history == nil {
		return nil
	}
	last, err := p.history.LastSeq(ctx)
	if err != nil {
		return err
	}
	p.clock.AdvanceTo(last)
	p.resumed = true
	return nil
}

// run carries the state of one jurisdiction run.
type run struct {
	p     *Pipeline
	cfg   config.Config
	log   *slog.Logger
	cmp   *compare.Comparator
	seq   int64
	res   *RunResult
	arena *scratch.Arena
	arts  artifacts
	stack *catalog.Stack
	grids map[grid.Level]*grid.Grid
}

func (r *run) fail(kind ErrorKind, stage string, err error) error {
	return &StageError{Kind: kind, Stage: stage, Jurisdiction: r.res.Jurisdiction, Err: err}
}

// check records a non-fatal *StageError as an Issue and returns nil.
// Fatal errors and errors without a kind are returned unchanged.
func (r *run) check(err error) error {
	var se *StageError
	if !errors.As(err, &se) || se.Kind.Fatal() {
		return err
	}
	r.log.Warn("stage issue", "kind", se.Kind, "stage", se.Stage, "error", se.Err)
	r.res.Issues = append(r.res.Issues, Issue{Kind: se.Kind, Stage: se.Stage, Message: se.Err.Error()})
	return nil
}

func (r *run) execute(ctx context.Context) (err error) {
	policy, err := scratch.ParsePolicy(r.cfg.Cleanup)
	if err != nil {
		return r.fail(KindEngineFailure, "scratch", err)
	}
	r.arena, err = scratch.Open(r.cfg.Resolve(r.cfg.ScratchDir), r.res.RunID, policy)
	if err != nil {
		return r.fail(KindEngineFailure, "scratch", err)
	}
	r.arts = artifacts{arena: r.arena}
	defer func() {
		if cerr := r.arena.Close(err == nil && r.res.Status == store.StatusPassed); cerr != nil {
			r.log.Warn("scratch cleanup failed", "dir", r.arena.Dir(), "error", cerr)
		}
		if r.arena.Kept() {
			r.res.ScratchDir = r.arena.Dir()
		}
	}()

	if h := r.p.history; h != nil {
		if err := h.BeginRun(ctx, store.RunRecord{
			ID:           r.res.RunID,
			Jurisdiction: r.res.Jurisdiction,
			Mode:         string(r.res.Mode),
			ScratchDir:   r.arena.Dir(),
			Seq:          r.seq,
		}); err != nil {
			return r.fail(KindEngineFailure, "persist", err)
		}
	}

	if err := r.resolve(ctx); err != nil {
		return err
	}
	if err := r.load(ctx); err != nil {
		return err
	}
	if r.res.Mode == ModeRepair {
		if err := r.extent(ctx); err != nil {
			return err
		}
		if err := r.cells(ctx); err != nil {
			return err
		}
		if err := r.save(ctx); err != nil {
			return err
		}
	}
	if err := r.final(ctx); err != nil {
		return err
	}
	return r.writeReport()
}

func (r *run) resolve(ctx context.Context) error {
	required, err := r.cfg.Levels()
	if err != nil {
		return r.fail(KindEngineFailure, "resolve", err)
	}
	st, err := catalog.Resolve(ctx, r.p.rasters, r.res.Jurisdiction, catalog.Options{
		Required:  required,
		StudyType: r.cfg.StudyType,
		Logger:    r.log,
	})
	switch {
	case catalog.IsGridNotFound(err), errors.Is(err, catalog.ErrNoRasters):
		return r.fail(KindGridNotFound, "resolve", err)
	case err != nil:
		return r.fail(KindEngineFailure, "resolve", err)
	}
	r.stack = st
	r.res.Levels = st.Levels
	for _, l := range st.Missing {
		missing := fmt.Errorf("%s (%s) not found, dependent comparisons skipped", l, l.Token())
		if err := r.check(r.fail(KindMissingInput, "resolve", missing)); err != nil {
			return err
		}
	}
	if !st.HasPCT02() {
		missing := errors.New("PCT02 (02PCT) not found, reference comparison skipped")
		if err := r.check(r.fail(KindMissingInput, "resolve", missing)); err != nil {
			return err
		}
	}
	return nil
}

// load reads the stack, checks lattice alignment against the lowest grid
// and records starting digests.
func (r *run) load(ctx context.Context) error {
	grids, err := catalog.Load(ctx, r.p.rasters, r.stack)
	if err != nil {
		return r.fail(KindEngineFailure, "load", err)
	}
	r.grids = grids

	ordered := r.ordered()
	if len(ordered) == 0 {
		return r.fail(KindGridNotFound, "load", catalog.ErrNoRasters)
	}
	ref := ordered[0]
	for _, g := range ordered[1:] {
		if _, _, err := grid.Offset(ref, g); err != nil {
			return r.fail(KindEngineFailure, "align", fmt.Errorf("%s vs %s: %w", g.Level, ref.Level, err))
		}
	}

	for _, g := range ordered {
		d := GridDigest{Level: g.Level, Name: g.Name, Before: grid.Digest(g)}
		r.res.Digests = append(r.res.Digests, d)
		r.log.Debug("grid loaded", "level", g.Level.String(), "rows", g.Rows, "cols", g.Cols, "data_cells", g.DataCount())
		if err := r.writeGrid(ctx, g, d); err != nil {
			return err
		}
	}
	r.log.Debug("grids loaded", "count", len(ordered))
	return nil
}

// ordered returns the loaded grids in level order, PCT02 last.
func (r *run) ordered() []*grid.Grid {
	var out []*grid.Grid
	for _, l := range append(append([]grid.Level{}, grid.FreeboardLevels...), grid.PCT02) {
		if g, ok := r.grids[l]; ok {
			out = append(out, g)
		}
	}
	return out
}

func (r *run) extent(ctx context.Context) error {
	x := &repair.ExtentRepairer{
		Comparator: r.cmp,
		Increment:  r.cfg.Increment,
		Attempts:   r.cfg.ExtentAttempts,
		Logger:     r.log,
	}
	for _, p := range compare.AdjacentPairs(grid.FreeboardLevels) {
		lower, higher := r.grids[p.Lower], r.grids[p.Higher]
		if lower == nil || higher == nil {
			if err := r.record(ctx, store.StageInitial, r.cmp.Extent(p, lower, higher)); err != nil {
				return err
			}
			continue
		}

		out, err := x.Repair(p, lower, higher)
		if rerr := r.record(ctx, store.StageInitial, out.Initial); rerr != nil {
			return rerr
		}
		if repair.IsExtentUnresolved(err) {
			if derr := r.arts.describe(out.Final); derr != nil {
				r.log.Warn("could not write extent artifact", "pair", p.Label(), "error", derr)
			}
			if rerr := r.recordRepair(ctx, out); rerr != nil {
				return rerr
			}
			return r.check(r.fail(KindExtentUnresolved, "extent", err))
		}
		if err != nil {
			return r.check(r.fail(KindEngineFailure, "extent", err))
		}
		if err := r.recordRepair(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

// cells repairs each maximal run of consecutive FVA levels that are present.
func (r *run) cells(ctx context.Context) error {
	x := &repair.CellValueRepairer{
		Comparator: r.cmp,
		Increment:  r.cfg.Increment,
		Window:     r.cfg.MedianWindow,
		Logger:     r.log,
		Sink:       r.arts,
	}
	for _, stack := range r.contiguous() {
		if len(stack) < 2 {
			continue
		}
		outs, err := x.Repair(stack)
		for _, o := range outs {
			if rerr := r.record(ctx, store.StageInitial, o.Initial); rerr != nil {
				return rerr
			}
			if rerr := r.recordRepair(ctx, o); rerr != nil {
				return rerr
			}
			if o.Failed() {
				exhausted := fmt.Errorf("%s still violating after %s", o.Label, o.Tier)
				if cerr := r.check(r.fail(KindRepairExhausted, "cell", exhausted)); cerr != nil {
					return cerr
				}
			}
		}
		if err != nil {
			return r.check(r.fail(KindEngineFailure, "cell", err))
		}
	}
	return nil
}

func (r *run) contiguous() [][]*grid.Grid {
	var runs [][]*grid.Grid
	var cur []*grid.Grid
	for _, l := range grid.FreeboardLevels {
		g, ok := r.grids[l]
		if !ok {
			if len(cur) > 0 {
				runs = append(runs, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, g)
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

// save writes back every FVA grid whose digest changed.
func (r *run) save(ctx context.Context) error {
	target := r.p.rasters
	if !r.cfg.Overwrite {
		target = r.p.output
		if target == nil {
			ds, err := raster.NewDirStore(r.cfg.Resolve(r.cfg.OutputDir))
			if err != nil {
				return r.fail(KindEngineFailure, "save", err)
			}
			target = ds
		}
	}
	for i := range r.res.Digests {
		d := &r.res.Digests[i]
		g := r.grids[d.Level]
		after := grid.Digest(g)
		if after == d.Before {
			continue
		}
		id, _ := r.stack.ID(d.Level)
		if err := target.Save(ctx, id, g); err != nil {
			return r.fail(KindEngineFailure, "save", err)
		}
		d.After = after
		if err := r.writeGrid(ctx, g, *d); err != nil {
			return err
		}
		r.log.Info("grid saved", "level", d.Level.String(), "id", id, "overwrite", r.cfg.Overwrite)
	}
	return nil
}

// final runs both checks over every adjacent FVA pair and PCT02 against
// FVA0.
func (r *run) final(ctx context.Context) error {
	pairs := append(compare.AdjacentPairs(grid.FreeboardLevels), compare.Pair{Lower: grid.FVA0, Higher: grid.PCT02})
	for _, p := range pairs {
		lower, higher := r.grids[p.Lower], r.grids[p.Higher]
		for _, res := range []*compare.Result{r.cmp.Extent(p, lower, higher), r.cmp.CellValue(p, lower, higher)} {
			if err := r.arts.describe(res); err != nil {
				return r.fail(KindEngineFailure, "final", err)
			}
			if err := r.record(ctx, store.StageFinal, res); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *run) writeReport() error {
	rep := report.Build(r.stack.Jurisdiction, r.ordered(), r.res.Final)
	r.res.Report = rep

	dir := r.cfg.Resolve(r.cfg.OutputDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return r.fail(KindEngineFailure, "report", err)
	}
	path, err := report.UniquePath(dir, report.FileName(r.stack.Prefix()))
	if err != nil {
		return r.fail(KindEngineFailure, "report", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return r.fail(KindEngineFailure, "report", err)
	}
	if err := rep.WriteCSV(f); err != nil {
		f.Close()
		return r.fail(KindEngineFailure, "report", err)
	}
	if err := f.Close(); err != nil {
		return r.fail(KindEngineFailure, "report", err)
	}
	r.res.ReportPath = path

	r.res.Status = store.StatusFailed
	if rep.Passed {
		r.res.Status = store.StatusPassed
	}
	r.log.Info("report written", "path", path, "passed", rep.Passed)
	return nil
}

func (r *run) finish(ctx context.Context, err error) {
	var kind ErrorKind
	if err != nil {
		r.res.Status = store.StatusNeedsReview
		r.res.Error = err.Error()
		kind, _ = KindOf(err)
		r.res.ErrorKind = kind
		r.log.Error("run failed", "kind", kind, "error", err)
	} else {
		r.log.Info("run finished", "status", r.res.Status, "issues", len(r.res.Issues))
	}
	h := r.p.history
	if h == nil {
		return
	}
	// Record the outcome even when the caller's context was cancelled.
	ctx = context.WithoutCancel(ctx)
	if ferr := h.FinishRun(ctx, r.res.RunID, r.res.Status, r.res.ReportPath, string(kind), r.res.Error); ferr != nil && !errors.Is(ferr, store.ErrRunNotFound) {
		r.log.Error("could not record run outcome", "error", ferr)
	}
}

func (r *run) record(ctx context.Context, stage string, res *compare.Result) error {
	if res == nil {
		return nil
	}
	seq := r.p.clock.Next()
	if stage == store.StageFinal {
		r.res.Final = append(r.res.Final, res)
	} else {
		r.res.Initial = append(r.res.Initial, res)
	}
	h := r.p.history
	if h == nil {
		return nil
	}
	err := h.WriteResult(ctx, store.ResultRecord{
		RunID:          r.res.RunID,
		Seq:            seq,
		Stage:          stage,
		Kind:           string(res.Kind),
		Label:          res.Label,
		Lower:          res.Lower.String(),
		Higher:         res.Higher.String(),
		Passed:         res.Passed,
		Skipped:        res.Skipped,
		Magnitude:      res.Magnitude,
		Violations:     res.Violations,
		StepDeviations: res.StepDeviations,
		Location:       res.Location,
	})
	if err != nil {
		return r.fail(KindEngineFailure, "persist", err)
	}
	return nil
}

func (r *run) recordRepair(ctx context.Context, o repair.Outcome) error {
	seq := r.p.clock.Next()
	r.res.Repairs = append(r.res.Repairs, o)
	h := r.p.history
	if h == nil {
		return nil
	}
	err := h.WriteRepair(ctx, store.RepairRecord{
		RunID:        r.res.RunID,
		Seq:          seq,
		Kind:         string(o.Kind),
		Label:        o.Label,
		Tier:         o.Tier.String(),
		Attempts:     o.Attempts,
		CellsChanged: o.CellsChanged,
		Resolved:     o.Resolved,
		ResidualPath: o.ResidualPath,
	})
	if err != nil {
		return r.fail(KindEngineFailure, "persist", err)
	}
	return nil
}

func (r *run) writeGrid(ctx context.Context, g *grid.Grid, d GridDigest) error {
	h := r.p.history
	if h == nil {
		return nil
	}
	err := h.WriteGrid(ctx, store.GridRecord{
		RunID:            r.res.RunID,
		Level:            g.Level.String(),
		Name:             g.Name,
		PixelType:        g.Meta.PixelType,
		CellSize:         g.Transform.CellSize,
		SpatialReference: g.Meta.SpatialReference,
		VerticalDatum:    g.Meta.VerticalDatum,
		VerticalUnit:     g.Meta.VerticalUnit,
		DigestBefore:     d.Before,
		DigestAfter:      d.After,
	})
	if err != nil {
		return r.fail(KindEngineFailure, "persist", err)
	}
	return nil
}
