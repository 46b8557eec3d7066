package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/freeboard/internal/catalog"
	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/report"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Workspace string
}

// CatalogResult describes one jurisdiction's resolved stack.
type CatalogResult struct {
	Stack   *catalog.Stack    `json:"stack"`
	Grids   []report.GridRow  `json:"grids"`
	Digests map[string]string `json:"digests"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog <jurisdiction>",
		Short: "Show the raster stack for a jurisdiction",
		Long: `Resolve the FVA stack for a jurisdiction and print each grid's
properties and content digest. Nothing is modified.

Examples:
  fvaqc catalog CA_06049
  fvaqc catalog --workspace ./rasters CA_06049 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Workspace, "workspace", "", "raster directory (overrides config)")

	return cmd
}

func runCatalog(opts *CatalogOptions, jurisdiction string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	ctx := context.Background()

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.Workspace != "" {
		cfg.Workspace = opts.Workspace
	}
	required, err := cfg.Levels()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	rasters, err := raster.NewDirStore(cfg.Workspace)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open workspace", err)
	}

	stack, err := catalog.Resolve(ctx, rasters, jurisdiction, catalog.Options{
		Required:  required,
		StudyType: cfg.StudyType,
		Logger:    newLogger(opts.RootOptions, cmd.ErrOrStderr()),
	})
	if err != nil {
		if catalog.IsGridNotFound(err) {
			_ = formatter.Error("GRID_NOT_FOUND", err.Error(), nil)
			return WrapExitError(ExitFailure, "stack incomplete", err)
		}
		_ = formatter.Error("E_CATALOG", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to resolve stack", err)
	}

	grids, err := catalog.Load(ctx, rasters, stack)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load grids", err)
	}
	ordered := make([]*grid.Grid, 0, len(grids))
	for _, l := range append(append([]grid.Level{}, grid.FreeboardLevels...), grid.PCT02) {
		if g, ok := grids[l]; ok {
			ordered = append(ordered, g)
		}
	}

	result := CatalogResult{
		Stack:   stack,
		Grids:   report.Build(jurisdiction, ordered, nil).Grids,
		Digests: make(map[string]string, len(ordered)),
	}
	for _, g := range ordered {
		result.Digests[g.Level.String()] = grid.Digest(g)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	outputCatalogText(formatter.Writer, result)
	return nil
}

func outputCatalogText(w io.Writer, r CatalogResult) {
	fmt.Fprintf(w, "Jurisdiction: %s\n", r.Stack.Jurisdiction)
	if r.Stack.StudyType != "" {
		fmt.Fprintf(w, "Study type: %s\n", r.Stack.StudyType)
	}
	fmt.Fprintf(w, "Prefix: %s\n", r.Stack.Prefix())
	fmt.Fprintln(w)
	for _, g := range r.Grids {
		fmt.Fprintf(w, "%-6s %s\n", g.Level, g.Name)
		fmt.Fprintf(w, "       %s, cell size %g, %s, %s %s\n",
			g.PixelType, g.CellSize, g.SpatialReference, g.VerticalDatum, g.VerticalUnit)
		fmt.Fprintf(w, "       digest %s\n", r.Digests[g.Level.String()])
	}
	for _, l := range r.Stack.Missing {
		fmt.Fprintf(w, "%-6s (missing)\n", l)
	}
	if !r.Stack.HasPCT02() {
		fmt.Fprintf(w, "%-6s (missing)\n", grid.PCT02)
	}
}
