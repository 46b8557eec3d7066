// Package config loads and validates fvaqc configuration.
//
// Configuration is a YAML file layered over Default. The merged value is
// validated against an embedded CUE schema before use; validation errors
// carry the offending field paths. A Config is a plain value passed to
// every stage. Nothing reads configuration from global state.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/freeboard/internal/grid"
)

//go:embed schema.cue
var schemaSource string

// Config holds every tunable of a QC run.
type Config struct {
	Workspace      string   `yaml:"workspace" json:"workspace"`
	ScratchDir     string   `yaml:"scratch_dir" json:"scratch_dir"`
	OutputDir      string   `yaml:"output_dir" json:"output_dir"`
	Cleanup        string   `yaml:"cleanup" json:"cleanup"`
	Overwrite      bool     `yaml:"overwrite" json:"overwrite"`
	Increment      float64  `yaml:"increment" json:"increment"`
	Tolerance      float64  `yaml:"tolerance" json:"tolerance"`
	MedianWindow   int      `yaml:"median_window" json:"median_window"`
	ExtentAttempts int      `yaml:"extent_attempts" json:"extent_attempts"`
	RequiredLevels []string `yaml:"required_levels" json:"required_levels"`
	StudyType      string   `yaml:"study_type" json:"study_type"`
	Database       string   `yaml:"database" json:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workspace:      ".",
		ScratchDir:     "scratch",
		OutputDir:      "output",
		Cleanup:        "on-success",
		Overwrite:      true,
		Increment:      1.0,
		Tolerance:      1e-6,
		MedianWindow:   10,
		ExtentAttempts: 2,
		RequiredLevels: []string{"FVA0", "FVA1", "FVA2", "FVA3"},
	}
}

// ValidationError reports a configuration that does not satisfy the schema.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return "invalid config: " + e.Details
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Load reads a YAML file over Default and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over Default and validates the result. Keys absent
// from data keep their defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks c against the schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	if c.RequiredLevels == nil {
		c.RequiredLevels = []string{}
	}
	v := def.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &ValidationError{Details: cueerrors.Details(err, nil)}
	}
	return nil
}

// Levels parses RequiredLevels.
func (c Config) Levels() ([]grid.Level, error) {
	out := make([]grid.Level, 0, len(c.RequiredLevels))
	for _, name := range c.RequiredLevels {
		l, err := grid.ParseLevel(name)
		if err != nil {
			return nil, fmt.Errorf("required_levels: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

// Resolve returns p joined to Workspace unless p is absolute.
func (c Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Workspace, p)
}
