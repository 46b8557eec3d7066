package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
)

// ErrNoRasters is returned when a store holds no rasters for a jurisdiction.
var ErrNoRasters = errors.New("no rasters for jurisdiction")

// GridNotFoundError is returned when a required level is absent.
type GridNotFoundError struct {
	Jurisdiction string
	Level        grid.Level
}

func (e *GridNotFoundError) Error() string {
	return fmt.Sprintf("%s: required grid %s (%s) not found", e.Jurisdiction, e.Level, e.Level.Token())
}

// IsGridNotFound reports whether err is a GridNotFoundError.
// Uses errors.As to handle wrapped errors.
func IsGridNotFound(err error) bool {
	var ge *GridNotFoundError
	return errors.As(err, &ge)
}

// Options control stack resolution.
type Options struct {
	// Required levels must be present. Nil means every FVA level.
	Required []grid.Level
	// StudyType restricts matches to one study type when set.
	StudyType string
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o Options) required() []grid.Level {
	if o.Required == nil {
		return grid.FreeboardLevels
	}
	return o.Required
}

// Stack is a resolved set of raster ids for one jurisdiction.
type Stack struct {
	Jurisdiction string                `json:"jurisdiction"`
	StudyType    string                `json:"study_type,omitempty"`
	IDs          map[grid.Level]string `json:"ids"`
	// Levels lists the FVA levels present, in stack order.
	Levels []grid.Level `json:"levels"`
	// Missing lists optional FVA levels that were not found.
	Missing []grid.Level `json:"missing,omitempty"`
}

// ID returns the raster id for a level.
func (s *Stack) ID(l grid.Level) (string, bool) {
	id, ok := s.IDs[l]
	return id, ok
}

// HasPCT02 reports whether the 0.2% reference grid was found.
func (s *Stack) HasPCT02() bool {
	_, ok := s.IDs[grid.PCT02]
	return ok
}

// Prefix returns the jurisdiction and study type joined for file names,
// e.g. "CA_06049_RIV".
func (s *Stack) Prefix() string {
	if s.StudyType == "" {
		return s.Jurisdiction
	}
	return s.Jurisdiction + "_" + s.StudyType
}

// Resolve locates the rasters for jurisdiction in store. It never modifies
// the store.
func Resolve(ctx context.Context, store raster.Store, jurisdiction string, opts Options) (*Stack, error) {
	log := opts.logger().With("jurisdiction", jurisdiction)
	ids, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", jurisdiction, err)
	}

	st := &Stack{Jurisdiction: jurisdiction, IDs: map[grid.Level]string{}}
	matched := 0
	for _, id := range ids {
		n, ok := ParseName(id)
		if !ok || !SameJurisdiction(n.Jurisdiction, jurisdiction) {
			continue
		}
		if opts.StudyType != "" && !strings.EqualFold(n.StudyType, opts.StudyType) {
			continue
		}
		matched++
		if prev, dup := st.IDs[n.Level]; dup {
			log.Warn("duplicate grid for level, keeping first", "level", n.Level.String(), "kept", prev, "ignored", id)
			continue
		}
		st.IDs[n.Level] = id
		if st.StudyType == "" {
			st.StudyType = n.StudyType
		}
	}
	if matched == 0 {
		return nil, fmt.Errorf("resolve %s: %w", jurisdiction, ErrNoRasters)
	}

	for _, l := range opts.required() {
		if _, ok := st.IDs[l]; !ok {
			return nil, &GridNotFoundError{Jurisdiction: jurisdiction, Level: l}
		}
	}
	for _, l := range grid.FreeboardLevels {
		if _, ok := st.IDs[l]; ok {
			st.Levels = append(st.Levels, l)
			continue
		}
		st.Missing = append(st.Missing, l)
		log.Warn("optional grid missing, dependent comparisons will be skipped", "level", l.String())
	}
	if !st.HasPCT02() {
		log.Warn("0.2% grid missing, PCT02 comparison will be skipped")
	}
	log.Debug("stack resolved", "levels", len(st.Levels), "pct02", st.HasPCT02(), "study_type", st.StudyType)
	return st, nil
}

// Jurisdictions lists the distinct jurisdictions in store, sorted. A
// non-empty studyType keeps only jurisdictions with a raster of that study
// type, matched the way Resolve matches Options.StudyType.
func Jurisdictions(ctx context.Context, store raster.Store, studyType string) ([]string, error) {
	ids, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		n, ok := ParseName(id)
		if !ok || seen[n.Jurisdiction] {
			continue
		}
		if studyType != "" && !strings.EqualFold(n.StudyType, studyType) {
			continue
		}
		seen[n.Jurisdiction] = true
		out = append(out, n.Jurisdiction)
	}
	sort.Strings(out)
	return out, nil
}

// Load reads every grid in the stack and tags it with its level.
func Load(ctx context.Context, store raster.Store, st *Stack) (map[grid.Level]*grid.Grid, error) {
	out := make(map[grid.Level]*grid.Grid, len(st.IDs))
	levels := make([]grid.Level, 0, len(st.IDs))
	for l := range st.IDs {
		levels = append(levels, l)
	}
	sort.Slice(levels, func(i, j int) bool { return levels[i] < levels[j] })
	for _, l := range levels {
		g, err := store.Load(ctx, st.IDs[l])
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", l, err)
		}
		g.Level = l
		out[l] = g
	}
	return out, nil
}
