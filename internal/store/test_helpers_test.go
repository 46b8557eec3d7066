package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new store in a temporary directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun inserts a run with minimal required fields.
func createTestRun(t *testing.T, s *Store, id, jurisdiction string, seq int64) RunRecord {
	t.Helper()
	run := RunRecord{
		ID:           id,
		Jurisdiction: jurisdiction,
		Mode:         "repair",
		Seq:          seq,
	}
	if err := s.BeginRun(context.Background(), run); err != nil {
		t.Fatalf("BeginRun() failed: %v", err)
	}
	run.Status = StatusRunning
	return run
}

// createTestResult creates a result record with minimal required fields.
func createTestResult(runID string, seq int64, label string, passed bool) ResultRecord {
	return ResultRecord{
		RunID:  runID,
		Seq:    seq,
		Stage:  StageInitial,
		Kind:   "extent",
		Label:  label,
		Lower:  "FVA0",
		Higher: "FVA1",
		Passed: passed,
	}
}
