package testutil

// FixedRunID generates the same run id every time.
//
// Unlike pipeline.FixedGenerator, which returns ids in sequence, this
// generator never runs out. Two runs with the same FixedRunID share a
// scratch directory, so use it only for one-run tests and golden output.
//
// Thread-safety: FixedRunID is stateless and safe for concurrent use.
type FixedRunID struct {
	id string
}

// NewFixedRunID creates a fixed run id generator.
//
// If id is empty, Generate() returns "test-run-default".
func NewFixedRunID(id string) *FixedRunID {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunID{id: id}
}

// Generate returns the fixed run id.
//
// Implements pipeline.RunIDGenerator.
func (g *FixedRunID) Generate() string {
	return g.id
}
