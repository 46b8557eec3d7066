package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/freeboard/internal/config"
	"github.com/roach88/freeboard/internal/pipeline"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/store"
)

// QCOptions holds flags for the check and repair commands.
type QCOptions struct {
	*RootOptions
	Workspace string
	Database  string
	Output    string

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs pipeline.RunIDGenerator
}

// QCSummary is the result of a check or repair command.
type QCSummary struct {
	Runs        []*pipeline.RunResult `json:"runs"`
	Passed      int                   `json:"passed"`
	Failed      int                   `json:"failed"`
	NeedsReview int                   `json:"needs_review"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newQCCommand(rootOpts, pipeline.ModeCheck, &cobra.Command{
		Use:   "check [jurisdiction...]",
		Short: "Run QC without modifying rasters",
		Long: `Run the extent and cell value checks for each jurisdiction and write
a QC report. Rasters are never modified.

With no arguments every jurisdiction found in the workspace is checked.

Exit codes:
  0 - All checks passed
  1 - A check failed or a jurisdiction needs review
  2 - Command error (bad config, unreadable workspace, etc.)

Examples:
  fvaqc check CA_06049
  fvaqc check --config fvaqc.yaml --format json
  fvaqc check --workspace ./rasters --db ./fvaqc.db CA_06049 CA_06051`,
	})
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(rootOpts *RootOptions) *cobra.Command {
	return newQCCommand(rootOpts, pipeline.ModeRepair, &cobra.Command{
		Use:   "repair [jurisdiction...]",
		Short: "Repair rasters and run QC",
		Long: `Repair extent gaps and cell value inversions for each jurisdiction,
save the repaired rasters, then run QC and write a report.

Repaired rasters overwrite the inputs unless overwrite is false in the
config, in which case they are written to output_dir.

Exit codes:
  0 - All final checks passed
  1 - A final check failed or a jurisdiction needs review
  2 - Command error (bad config, unreadable workspace, etc.)

Examples:
  fvaqc repair CA_06049
  fvaqc repair --config fvaqc.yaml --verbose`,
	})
}

func newQCCommand(rootOpts *RootOptions, mode pipeline.Mode, cmd *cobra.Command) *cobra.Command {
	opts := &QCOptions{RootOptions: rootOpts}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runQC(opts, mode, args, cmd)
	}

	cmd.Flags().StringVar(&opts.Workspace, "workspace", "", "raster directory (overrides config)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history (overrides config)")
	cmd.Flags().StringVar(&opts.Output, "output", "", "report directory (overrides config)")

	return cmd
}

func runQC(opts *QCOptions, mode pipeline.Mode, jurisdictions []string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if cfg, err = applyOverrides(cfg, opts); err != nil {
		return err
	}

	rasters, err := raster.NewDirStore(cfg.Workspace)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open workspace", err)
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(logger)}
	if opts.RunIDs != nil {
		pipeOpts = append(pipeOpts, pipeline.WithRunIDs(opts.RunIDs))
	}
	if cfg.Database != "" {
		dbPath := cfg.Resolve(cfg.Database)
		logger.Debug("opening database", "path", dbPath)
		history, err := store.Open(dbPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := history.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		pipeOpts = append(pipeOpts, pipeline.WithHistory(history))
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, rasters, pipeOpts...)
	results, runErr := p.RunAll(ctx, jurisdictions, mode)
	if runErr != nil && len(results) == 0 {
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s failed", mode), runErr)
	}
	if errors.Is(runErr, context.Canceled) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("%s interrupted", mode), runErr)
	}

	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	summary := summarize(results)
	if formatter.Format == "json" {
		return outputQCJSON(formatter, summary)
	}
	if len(results) == 0 {
		fmt.Fprintln(formatter.Writer, "No jurisdictions found.")
		return nil
	}
	return outputQCText(formatter.Writer, summary, logger)
}

// applyOverrides applies command flags over the loaded config and
// re-validates the result.
func applyOverrides(cfg config.Config, opts *QCOptions) (config.Config, error) {
	if opts.Workspace != "" {
		cfg.Workspace = opts.Workspace
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if opts.Output != "" {
		cfg.OutputDir = opts.Output
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid flags", err)
	}
	return cfg, nil
}

func summarize(results []*pipeline.RunResult) QCSummary {
	s := QCSummary{Runs: results}
	if s.Runs == nil {
		s.Runs = []*pipeline.RunResult{}
	}
	for _, r := range results {
		switch r.Status {
		case store.StatusPassed:
			s.Passed++
		case store.StatusFailed:
			s.Failed++
		default:
			s.NeedsReview++
		}
	}
	return s
}

// failure describes why the summary is not a pass, or returns nil. Runs
// needing review take precedence and are listed with their error kind.
func (s QCSummary) failure() *CLIError {
	switch {
	case s.NeedsReview > 0:
		kinds := make(map[string]pipeline.ErrorKind, s.NeedsReview)
		for _, r := range s.Runs {
			if r.Status == store.StatusNeedsReview {
				kinds[r.Jurisdiction] = r.ErrorKind
			}
		}
		return &CLIError{
			Code:    CodeNeedsReview,
			Message: fmt.Sprintf("%d jurisdiction(s) need review", s.NeedsReview),
			Details: kinds,
		}
	case s.Failed > 0:
		return &CLIError{
			Code:    CodeQCFailed,
			Message: fmt.Sprintf("%d jurisdiction(s) failed QC", s.Failed),
		}
	}
	return nil
}

func (s QCSummary) exitError() error {
	if f := s.failure(); f != nil {
		return NewExitError(ExitFailure, f.Message)
	}
	return nil
}

// outputQCJSON outputs the QC summary as JSON.
func outputQCJSON(formatter *OutputFormatter, s QCSummary) error {
	var runID string
	if len(s.Runs) == 1 {
		runID = s.Runs[0].RunID
	}
	if err := formatter.Summary(s, runID, s.failure()); err != nil {
		return err
	}
	return s.exitError()
}

// outputQCText outputs the QC summary as text.
func outputQCText(w io.Writer, s QCSummary, logger *slog.Logger) error {
	for _, r := range s.Runs {
		switch r.Status {
		case store.StatusPassed:
			fmt.Fprintf(w, "✓ %s passed (%s)\n", r.Jurisdiction, r.RunID)
		case store.StatusFailed:
			fmt.Fprintf(w, "✗ %s failed (%s)\n", r.Jurisdiction, r.RunID)
		default:
			fmt.Fprintf(w, "! %s needs review (%s): %s\n", r.Jurisdiction, r.RunID, r.Error)
		}
		if r.Report != nil {
			for _, row := range r.Report.Comparisons {
				fmt.Fprintf(w, "  %-16s extent: %s\n", row.Comparison, row.Extent)
				fmt.Fprintf(w, "  %-16s cell value: %s\n", "", row.CellValue)
			}
		}
		for _, o := range r.Repairs {
			if o.CellsChanged > 0 || !o.Resolved {
				fmt.Fprintf(w, "  repaired %s %s: %d cell(s), tier %s, resolved %t\n",
					o.Label, o.Kind, o.CellsChanged, o.Tier, o.Resolved)
			}
		}
		for _, issue := range r.Issues {
			logger.Debug("issue", "jurisdiction", r.Jurisdiction, "kind", issue.Kind, "stage", issue.Stage, "message", issue.Message)
		}
		if r.ReportPath != "" {
			fmt.Fprintf(w, "  report: %s\n", r.ReportPath)
		}
		if r.ScratchDir != "" {
			fmt.Fprintf(w, "  artifacts: %s\n", r.ScratchDir)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "QC Summary: %d passed, %d failed, %d need review, %d total\n",
		s.Passed, s.Failed, s.NeedsReview, len(s.Runs))
	return s.exitError()
}
