package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/pipeline"
)

// DefaultJurisdiction is used when a scenario names none.
const DefaultJurisdiction = "TS_00001"

// Scenario defines a QC conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Jurisdiction names the rasters. Default: DefaultJurisdiction.
	Jurisdiction string `yaml:"jurisdiction,omitempty"`

	// Mode is check or repair. Default: repair.
	Mode string `yaml:"mode,omitempty"`

	// RunID fixes the run id. If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// Config overrides configuration defaults using config file keys.
	Config yaml.Node `yaml:"config,omitempty"`

	// Lattice places every grid. Default: origin (1000, 2000), cell size 3.
	Lattice *Lattice `yaml:"lattice,omitempty"`

	// Lattices overrides Lattice per level name.
	Lattices map[string]Lattice `yaml:"lattices,omitempty"`

	// Grids maps level names (FVA0..FVA3, PCT02) to rows of values.
	// null is nodata.
	Grids map[string][][]*float64 `yaml:"grids"`

	// Assertions validate the outcome.
	Assertions []Assertion `yaml:"assertions"`
}

// Lattice is a grid's placement.
type Lattice struct {
	OriginX  float64 `yaml:"origin_x"`
	OriginY  float64 `yaml:"origin_y"`
	CellSize float64 `yaml:"cell_size"`
}

// Assertion validates part of the outcome.
type Assertion struct {
	// Type specifies the assertion type:
	// - "status": run status equals Expect
	// - "error_kind": fatal error kind equals Expect
	// - "check": final result for Pair and Kind has status Expect, or
	//   passed equal to Passed
	// - "repair": repair outcome for Pair and Kind has Tier and Resolved
	// - "issue": Count issues of kind Expect
	// - "cell": Level's cell (Row, Col) holds Value, or nodata when NoData
	Type string `yaml:"type"`

	Expect string `yaml:"expect,omitempty"`

	// Pair is the report label, e.g. "01FVA vs 00FVA".
	Pair string `yaml:"pair,omitempty"`
	// Kind is extent or cell_value.
	Kind string `yaml:"kind,omitempty"`

	Passed   *bool  `yaml:"passed,omitempty"`
	Tier     string `yaml:"tier,omitempty"`
	Resolved *bool  `yaml:"resolved,omitempty"`
	Count    *int   `yaml:"count,omitempty"`

	Level  string   `yaml:"level,omitempty"`
	Row    int      `yaml:"row,omitempty"`
	Col    int      `yaml:"col,omitempty"`
	Value  *float64 `yaml:"value,omitempty"`
	NoData bool     `yaml:"nodata,omitempty"`
}

// Assertion type constants.
const (
	AssertStatus    = "status"
	AssertErrorKind = "error_kind"
	AssertCheck     = "check"
	AssertRepair    = "repair"
	AssertIssue     = "issue"
	AssertCell      = "cell"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields and value shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Mode != "" {
		if _, err := pipeline.ParseMode(s.Mode); err != nil {
			return err
		}
	}
	if len(s.Grids) == 0 {
		return fmt.Errorf("at least one grid is required")
	}
	for name, rows := range s.Grids {
		if _, err := grid.ParseLevel(name); err != nil {
			return fmt.Errorf("grids: %w", err)
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			return fmt.Errorf("grids.%s: at least one cell is required", name)
		}
		for i, row := range rows {
			if len(row) != len(rows[0]) {
				return fmt.Errorf("grids.%s: row %d has %d cells, want %d", name, i, len(row), len(rows[0]))
			}
		}
	}
	for name := range s.Lattices {
		if _, err := grid.ParseLevel(name); err != nil {
			return fmt.Errorf("lattices: %w", err)
		}
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("at least one assertion is required")
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case AssertStatus, AssertErrorKind:
		if a.Expect == "" {
			return fmt.Errorf("assertions[%d]: expect is required for %s", index, a.Type)
		}
	case AssertCheck:
		if a.Pair == "" || a.Kind == "" {
			return fmt.Errorf("assertions[%d]: pair and kind are required for check", index)
		}
		if a.Expect == "" && a.Passed == nil {
			return fmt.Errorf("assertions[%d]: expect or passed is required for check", index)
		}
	case AssertRepair:
		if a.Pair == "" || a.Kind == "" {
			return fmt.Errorf("assertions[%d]: pair and kind are required for repair", index)
		}
	case AssertIssue:
		if a.Expect == "" || a.Count == nil {
			return fmt.Errorf("assertions[%d]: expect and count are required for issue", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for issue", index)
		}
	case AssertCell:
		if _, err := grid.ParseLevel(a.Level); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Value == nil && !a.NoData {
			return fmt.Errorf("assertions[%d]: value or nodata is required for cell", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
