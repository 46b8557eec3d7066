package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/freeboard/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Config *config.Config `json:"config,omitempty"`
	// Stage is "yaml" or "schema" for an invalid config.
	Stage string `json:"stage,omitempty"`
	Error string `json:"error,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file",
		Long: `Validate an fvaqc config file against the config schema.

Keys missing from the file take their defaults; the merged config is
printed on success so the effective settings can be reviewed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
	// Diagnostics go to stderr so JSON output stays parseable.
	logger := newLogger(opts, cmd.ErrOrStderr())

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error("E_CONFIG_NOT_FOUND", fmt.Sprintf("cannot read %s", path), err.Error())
		return WrapExitError(ExitCommandError, "failed to read config", err)
	}
	logger.Debug("config read", "path", path, "bytes", len(data))

	cfg, err := config.Parse(data)
	if err != nil {
		// Schema violations and malformed YAML are both exit code 1.
		result := ValidationResult{Valid: false, Stage: "yaml", Error: err.Error()}
		if config.IsValidationError(err) {
			result.Stage = "schema"
		}
		if formatter.Format == "json" {
			_ = formatter.Success(result)
		} else if result.Stage == "schema" {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintf(formatter.Writer, "  %v\n", err)
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Parse failed")
			fmt.Fprintf(formatter.Writer, "  %v\n", err)
		}
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Config: &cfg})
	}
	fmt.Fprintln(formatter.Writer, "✓ Config valid")
	logger.Debug("effective config",
		"workspace", cfg.Workspace,
		"output_dir", cfg.OutputDir,
		"scratch_dir", cfg.ScratchDir,
		"cleanup", cfg.Cleanup,
		"overwrite", cfg.Overwrite,
	)
	return nil
}
