package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/freeboard/internal/grid"
	"github.com/roach88/freeboard/internal/raster"
	"github.com/roach88/freeboard/internal/testutil"
)

const testJurisdiction = "TS_00001"

// seedWorkspace writes grids into a fresh raster directory.
func seedWorkspace(t *testing.T, grids ...*grid.Grid) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "rasters")
	rasters, err := raster.NewDirStore(dir)
	require.NoError(t, err)
	testutil.Seed(t, rasters, testJurisdiction, grids...)
	return dir
}

// cleanStack is a four-level stack that passes every check.
func cleanStack(t *testing.T) []*grid.Grid {
	return []*grid.Grid{
		testutil.Grid(t, grid.FVA0, testutil.Fill(2, 2, 10)),
		testutil.Grid(t, grid.FVA1, testutil.Fill(2, 2, 11)),
		testutil.Grid(t, grid.FVA2, testutil.Fill(2, 2, 12)),
		testutil.Grid(t, grid.FVA3, testutil.Fill(2, 2, 13)),
	}
}

// invertedStack has FVA1 below FVA0 at (0,0).
func invertedStack(t *testing.T) []*grid.Grid {
	return []*grid.Grid{
		testutil.Grid(t, grid.FVA0, testutil.Fill(2, 2, 10)),
		testutil.Grid(t, grid.FVA1, [][]float64{{9, 11}, {11, 11}}),
		testutil.Grid(t, grid.FVA2, testutil.Fill(2, 2, 12)),
		testutil.Grid(t, grid.FVA3, testutil.Fill(2, 2, 13)),
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fvaqc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
