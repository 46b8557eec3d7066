package scratch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyOnSuccess, p)

	p, err = ParsePolicy("never")
	require.NoError(t, err)
	assert.Equal(t, PolicyNever, p)

	_, err = ParsePolicy("sometimes")
	assert.Error(t, err)
}

func TestArenaPaths(t *testing.T) {
	root := t.TempDir()
	a, err := Open(root, "run-1", PolicyNever)
	require.NoError(t, err)

	p, err := a.Path("residuals/diff.asc")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "run-1", "residuals", "diff.asc"), p)
	assert.DirExists(t, filepath.Dir(p))
	assert.Equal(t, "run-1/residuals/diff.asc", a.Rel(p))
	assert.Equal(t, "/elsewhere/x", a.Rel("/elsewhere/x"))
}

func TestArenaCleanupPolicies(t *testing.T) {
	tests := []struct {
		policy  Policy
		success bool
		kept    bool
	}{
		{PolicyOnSuccess, true, false},
		{PolicyOnSuccess, false, true},
		{PolicyAlways, false, false},
		{PolicyNever, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.policy), func(t *testing.T) {
			a, err := Open(t.TempDir(), "run", tt.policy)
			require.NoError(t, err)
			p, err := a.Path("x.txt")
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

			require.NoError(t, a.Close(tt.success))
			assert.Equal(t, tt.kept, a.Kept())
			_, statErr := os.Stat(a.Dir())
			assert.Equal(t, tt.kept, statErr == nil)
		})
	}
}

func TestArenaCloseTwice(t *testing.T) {
	a, err := Open(t.TempDir(), "run", PolicyOnSuccess)
	require.NoError(t, err)
	require.NoError(t, a.Close(false))
	require.NoError(t, a.Close(true), "second close is a no-op")
	assert.DirExists(t, a.Dir())
}

func TestOpenRejectsEmptyRunID(t *testing.T) {
	_, err := Open(t.TempDir(), "", PolicyNever)
	assert.Error(t, err)
}
