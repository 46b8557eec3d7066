package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/freeboard/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run in detail
}

// RunDetail is one run with everything recorded for it.
type RunDetail struct {
	Run     store.RunRecord      `json:"run"`
	Grids   []store.GridRecord   `json:"grids"`
	Results []store.ResultRecord `json:"results"`
	Repairs []store.RepairRecord `json:"repairs"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [jurisdiction]",
		Short: "List recorded QC runs",
		Long: `List QC runs recorded in the run history database, oldest first.

With --run, shows one run in detail: grid digests before and after repair,
every comparison result and every repair outcome in the order they were
produced.

Examples:
  fvaqc history --db ./fvaqc.db
  fvaqc history --db ./fvaqc.db CA_06049
  fvaqc history --db ./fvaqc.db --run 0190a5b2-... --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jurisdiction := ""
			if len(args) == 1 {
				jurisdiction = args[0]
			}
			return runHistory(opts, jurisdiction, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run history (overrides config)")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run id to show in detail")

	return cmd
}

func runHistory(opts *HistoryOptions, jurisdiction string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	ctx := context.Background()

	dbPath := opts.Database
	if dbPath == "" {
		cfg, err := loadConfig(opts.RootOptions)
		if err != nil {
			return err
		}
		if cfg.Database == "" {
			return NewExitError(ExitCommandError, "no database: pass --db or set database in the config")
		}
		dbPath = cfg.Resolve(cfg.Database)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if opts.RunID != "" {
		detail, err := readRunDetail(ctx, st, opts.RunID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if opts.Format == "json" {
			return formatter.Success(detail)
		}
		outputRunDetailText(formatter.Writer, detail)
		return nil
	}

	runs, err := st.ListRuns(ctx, jurisdiction)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	if opts.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%6d  %s  %-10s %-7s %s\n", r.Seq, r.ID, r.Jurisdiction, r.Mode, r.Status)
		if r.ErrorKind != "" {
			fmt.Fprintf(formatter.Writer, "        %s: %s\n", r.ErrorKind, r.Error)
		}
	}
	return nil
}

func readRunDetail(ctx context.Context, st *store.Store, runID string) (RunDetail, error) {
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return RunDetail{}, err
	}
	d := RunDetail{Run: run}
	if d.Grids, err = st.GridsForRun(ctx, runID); err != nil {
		return RunDetail{}, err
	}
	if d.Results, err = st.ResultsForRun(ctx, runID); err != nil {
		return RunDetail{}, err
	}
	if d.Repairs, err = st.RepairsForRun(ctx, runID); err != nil {
		return RunDetail{}, err
	}
	return d, nil
}

func outputRunDetailText(w io.Writer, d RunDetail) {
	fmt.Fprintf(w, "Run %s\n", d.Run.ID)
	fmt.Fprintf(w, "  jurisdiction: %s\n", d.Run.Jurisdiction)
	fmt.Fprintf(w, "  mode: %s\n", d.Run.Mode)
	fmt.Fprintf(w, "  status: %s\n", d.Run.Status)
	if d.Run.ErrorKind != "" {
		fmt.Fprintf(w, "  error: %s: %s\n", d.Run.ErrorKind, d.Run.Error)
	}
	if d.Run.ReportPath != "" {
		fmt.Fprintf(w, "  report: %s\n", d.Run.ReportPath)
	}

	fmt.Fprintln(w, "\nGrids:")
	for _, g := range d.Grids {
		changed := ""
		if g.DigestAfter != "" && g.DigestAfter != g.DigestBefore {
			changed = " (rewritten)"
		}
		fmt.Fprintf(w, "  %-6s %s%s\n", g.Level, g.Name, changed)
	}

	fmt.Fprintln(w, "\nResults:")
	for _, r := range d.Results {
		status := "Pass"
		switch {
		case r.Skipped:
			status = "Skipped"
		case !r.Passed:
			status = fmt.Sprintf("Fail (magnitude %g, %d violation(s))", r.Magnitude, r.Violations)
		}
		fmt.Fprintf(w, "  [%d] %-7s %-10s %s: %s\n", r.Seq, r.Stage, r.Kind, r.Label, status)
	}

	if len(d.Repairs) > 0 {
		fmt.Fprintln(w, "\nRepairs:")
		for _, r := range d.Repairs {
			fmt.Fprintf(w, "  [%d] %-10s %s: tier %s, %d attempt(s), %d cell(s), resolved %t\n",
				r.Seq, r.Kind, r.Label, r.Tier, r.Attempts, r.CellsChanged, r.Resolved)
		}
	}
}
