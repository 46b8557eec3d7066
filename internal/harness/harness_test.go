package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/pipeline"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return s
}

func TestScenarios(t *testing.T) {
	files, err := Discover(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := Run(s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures:\n%v", result.Errors)
		})
	}
}

func TestRunWithGolden_ExtentGap(t *testing.T) {
	s := loadTestScenario(t, "extent_gap_repaired")

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRun_TraceIsSeqOrdered(t *testing.T) {
	result, err := Run(loadTestScenario(t, "cell_tier2_median"))
	require.NoError(t, err)

	require.NotEmpty(t, result.Trace)
	for i := 1; i < len(result.Trace); i++ {
		assert.Greater(t, result.Trace[i].Seq, result.Trace[i-1].Seq)
	}
}

func TestRun_Deterministic(t *testing.T) {
	s := loadTestScenario(t, "cell_repair_exhausted")

	first, err := Run(s)
	require.NoError(t, err)
	second, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, Snapshot(s, first), Snapshot(s, second))
}

func TestRun_FatalErrorIsReported(t *testing.T) {
	result, err := Run(loadTestScenario(t, "missing_required_grid"))
	require.NoError(t, err)

	assert.Equal(t, pipeline.KindGridNotFound, result.ErrorKind)
	assert.Empty(t, result.Trace)
}

func TestRun_FailingAssertionsAreCollected(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong_expectations
grids:
  FVA0: [[10]]
  FVA1: [[11]]
  FVA2: [[12]]
  FVA3: [[13]]
assertions:
  - type: status
    expect: failed
  - type: cell
    level: FVA1
    row: 0
    col: 0
    value: 99
  - type: cell
    level: FVA1
    row: 5
    col: 5
    nodata: true
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 3)
	assert.Contains(t, result.Errors[0], "Expected: failed")
	assert.Contains(t, result.Errors[0], "Actual: passed")
	assert.Contains(t, result.Errors[1], "Actual: 11")
	assert.Contains(t, result.Errors[2], "out of bounds")
}

func TestRun_LatticeOverride(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: misaligned
grids:
  FVA0: [[10]]
  FVA1: [[11]]
  FVA2: [[12]]
  FVA3: [[13]]
lattices:
  FVA2: {origin_x: 1001, origin_y: 2000, cell_size: 3}
assertions:
  - type: error_kind
    expect: ENGINE_FAILURE
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Equal(t, "needs_review", result.Status)
}

func TestRun_ConfigOverrides(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad_config
config:
  increment: -1
grids:
  FVA0: [[10]]
assertions:
  - type: status
    expect: passed
`))
	require.NoError(t, err)

	_, err = Run(s)
	assert.Error(t, err)
}

func TestRun_ReloadsGridsByLevel(t *testing.T) {
	result, err := Run(loadTestScenario(t, "extent_gap_repaired"))
	require.NoError(t, err)

	require.Contains(t, result.Grids, grid.FVA1)
	assert.Equal(t, 4, result.Grids[grid.FVA1].DataCount())
}
