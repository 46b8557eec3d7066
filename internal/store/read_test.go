package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound), "got %v", err)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestListRuns_OrderedBySeqAndFiltered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	createTestRun(t, s, "run-c", "CA_06049", 30)
	createTestRun(t, s, "run-a", "TX_48201", 10)
	createTestRun(t, s, "run-b", "CA_06049", 20)

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"run-a", "run-b", "run-c"}, ids)

	ca, err := s.ListRuns(ctx, "CA_06049")
	require.NoError(t, err)
	require.Len(t, ca, 2)
	assert.Equal(t, "run-b", ca[0].ID)
	assert.Equal(t, "run-c", ca[1].ID)
}

func TestResultsForRun_DeterministicOrdering(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", "CA_06049", 1)

	// Insert out of order.
	for _, seq := range []int64{5, 2, 4, 3} {
		require.NoError(t, s.WriteResult(ctx, createTestResult("run-1", seq, "FVA0_FVA1", true)))
	}

	results, err := s.ResultsForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 4)
	for i, want := range []int64{2, 3, 4, 5} {
		assert.Equal(t, want, results[i].Seq)
	}
}

func TestResultsForRun_Flags(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	createTestRun(t, s, "run-1", "CA_06049", 1)

	rec := createTestResult("run-1", 2, "PCT02_FVA0", true)
	rec.Kind = "cell_value"
	rec.Skipped = true
	rec.Magnitude = -0.4
	rec.Violations = 3
	rec.StepDeviations = 1
	rec.Location = "run-1/diff_00FVA_02PCT.asc"
	require.NoError(t, s.WriteResult(ctx, rec))

	results, err := s.ResultsForRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, rec, results[0])
}

func TestLastSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	seq, err := s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), seq)

	createTestRun(t, s, "run-1", "CA_06049", 1)
	require.NoError(t, s.WriteResult(ctx, createTestResult("run-1", 4, "FVA0_FVA1", true)))
	require.NoError(t, s.WriteRepair(ctx, RepairRecord{RunID: "run-1", Seq: 7, Kind: "extent", Label: "FVA0_FVA1", Tier: "none"}))

	seq, err = s.LastSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), seq)
}
