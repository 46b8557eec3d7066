package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario_NullIsNoData(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: nulls
grids:
  FVA0:
    - [10, null]
assertions:
  - type: status
    expect: passed
`))
	require.NoError(t, err)
	row := s.Grids["FVA0"][0]
	require.Len(t, row, 2)
	require.NotNil(t, row[0])
	assert.Equal(t, 10.0, *row[0])
	assert.Nil(t, row[1])
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "grids: {FVA0: [[1]]}\nassertions: [{type: status, expect: passed}]",
			want: "name is required",
		},
		{
			name: "unknown field",
			yaml: "name: x\ngridz: {}\n",
			want: "failed to parse YAML",
		},
		{
			name: "no grids",
			yaml: "name: x\nassertions: [{type: status, expect: passed}]",
			want: "at least one grid",
		},
		{
			name: "bad level",
			yaml: "name: x\ngrids: {FVA9: [[1]]}\nassertions: [{type: status, expect: passed}]",
			want: "grids",
		},
		{
			name: "ragged rows",
			yaml: "name: x\ngrids: {FVA0: [[1, 2], [3]]}\nassertions: [{type: status, expect: passed}]",
			want: "row 1 has 1 cells",
		},
		{
			name: "bad mode",
			yaml: "name: x\nmode: fix\ngrids: {FVA0: [[1]]}\nassertions: [{type: status, expect: passed}]",
			want: "unknown mode",
		},
		{
			name: "no assertions",
			yaml: "name: x\ngrids: {FVA0: [[1]]}",
			want: "at least one assertion",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\ngrids: {FVA0: [[1]]}\nassertions: [{type: vibes}]",
			want: "unknown assertion type",
		},
		{
			name: "check without kind",
			yaml: "name: x\ngrids: {FVA0: [[1]]}\nassertions: [{type: check, pair: a, expect: Pass}]",
			want: "pair and kind are required",
		},
		{
			name: "cell without value",
			yaml: "name: x\ngrids: {FVA0: [[1]]}\nassertions: [{type: cell, level: FVA0}]",
			want: "value or nodata",
		},
		{
			name: "issue without count",
			yaml: "name: x\ngrids: {FVA0: [[1]]}\nassertions: [{type: issue, expect: MISSING_INPUT}]",
			want: "expect and count",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("name: x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o755))

	files, err := Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yml"), filepath.Join(dir, "b.yaml")}, files)

	single, err := Discover(filepath.Join(dir, "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.yaml")}, single)

	_, err = Discover(filepath.Join(dir, "missing"))
	var nf *ScenarioNotFoundError
	assert.ErrorAs(t, err, &nf)
}
