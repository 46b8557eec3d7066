package store

// Run statuses.
const (
	StatusRunning     = "running"
	StatusPassed      = "passed"
	StatusFailed      = "failed"
	StatusNeedsReview = "needs_review"
)

// Stages tag where a QC result was produced.
const (
	StageInitial = "initial"
	StageFinal   = "final"
)

// RunRecord is one jurisdiction run.
type RunRecord struct {
	ID           string `json:"id"`
	Jurisdiction string `json:"jurisdiction"`
	Mode         string `json:"mode"`
	Status       string `json:"status"`
	ScratchDir   string `json:"scratch_dir,omitempty"`
	ReportPath   string `json:"report_path,omitempty"`
	ErrorKind    string `json:"error_kind,omitempty"`
	Error        string `json:"error,omitempty"`
	Seq          int64  `json:"seq"`
}

// GridRecord captures a loaded grid's properties and digests.
// DigestAfter is empty when the grid was not rewritten.
type GridRecord struct {
	RunID            string  `json:"run_id"`
	Level            string  `json:"level"`
	Name             string  `json:"name"`
	PixelType        string  `json:"pixel_type"`
	CellSize         float64 `json:"cell_size"`
	SpatialReference string  `json:"spatial_reference"`
	VerticalDatum    string  `json:"vertical_datum"`
	VerticalUnit     string  `json:"vertical_unit"`
	DigestBefore     string  `json:"digest_before"`
	DigestAfter      string  `json:"digest_after,omitempty"`
}

// ResultRecord is one persisted comparison.
type ResultRecord struct {
	RunID          string  `json:"run_id"`
	Seq            int64   `json:"seq"`
	Stage          string  `json:"stage"`
	Kind           string  `json:"kind"`
	Label          string  `json:"label"`
	Lower          string  `json:"lower"`
	Higher         string  `json:"higher"`
	Passed         bool    `json:"passed"`
	Skipped        bool    `json:"skipped"`
	Magnitude      float64 `json:"magnitude"`
	Violations     int     `json:"violations"`
	StepDeviations int     `json:"step_deviations"`
	Location       string  `json:"location,omitempty"`
}

// RepairRecord is one persisted repair outcome.
type RepairRecord struct {
	RunID        string `json:"run_id"`
	Seq          int64  `json:"seq"`
	Kind         string `json:"kind"`
	Label        string `json:"label"`
	Tier         string `json:"tier"`
	Attempts     int    `json:"attempts"`
	CellsChanged int    `json:"cells_changed"`
	Resolved     bool   `json:"resolved"`
	ResidualPath string `json:"residual_path,omitempty"`
}
