package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// ReadRun retrieves a single run by ID.
// Returns ErrRunNotFound if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, jurisdiction, mode, status, scratch_dir, report_path, error_kind, error, seq
		FROM runs
		WHERE id = ?
	`, id)

	var r RunRecord
	err := row.Scan(&r.ID, &r.Jurisdiction, &r.Mode, &r.Status, &r.ScratchDir, &r.ReportPath, &r.ErrorKind, &r.Error, &r.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns runs ordered by seq, then id. An empty jurisdiction lists
// every run.
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, jurisdiction string) ([]RunRecord, error) {
	query := `
		SELECT id, jurisdiction, mode, status, scratch_dir, report_path, error_kind, error, seq
		FROM runs`
	var args []any
	if jurisdiction != "" {
		query += ` WHERE jurisdiction = ?`
		args = append(args, jurisdiction)
	}
	query += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Jurisdiction, &r.Mode, &r.Status, &r.ScratchDir, &r.ReportPath, &r.ErrorKind, &r.Error, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GridsForRun returns the grids recorded for a run, ordered by level name.
func (s *Store) GridsForRun(ctx context.Context, runID string) ([]GridRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, level, name, pixel_type, cell_size, spatial_reference, vertical_datum, vertical_unit, digest_before, digest_after
		FROM grids
		WHERE run_id = ?
		ORDER BY level COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query grids: %w", err)
	}
	defer rows.Close()

	grids := []GridRecord{}
	for rows.Next() {
		var g GridRecord
		if err := rows.Scan(
			&g.RunID, &g.Level, &g.Name, &g.PixelType, &g.CellSize,
			&g.SpatialReference, &g.VerticalDatum, &g.VerticalUnit,
			&g.DigestBefore, &g.DigestAfter,
		); err != nil {
			return nil, fmt.Errorf("scan grid: %w", err)
		}
		grids = append(grids, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grids: %w", err)
	}
	return grids, nil
}

// ResultsForRun returns a run's QC results ordered by seq.
func (s *Store) ResultsForRun(ctx context.Context, runID string) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, stage, kind, label, lower_level, higher_level, passed, skipped, magnitude, violations, step_deviations, location
		FROM qc_results
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := []ResultRecord{}
	for rows.Next() {
		var r ResultRecord
		var passed, skipped int
		if err := rows.Scan(
			&r.RunID, &r.Seq, &r.Stage, &r.Kind, &r.Label, &r.Lower, &r.Higher,
			&passed, &skipped, &r.Magnitude, &r.Violations, &r.StepDeviations, &r.Location,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Passed = passed != 0
		r.Skipped = skipped != 0
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

// RepairsForRun returns a run's repair outcomes ordered by seq.
func (s *Store) RepairsForRun(ctx context.Context, runID string) ([]RepairRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, label, tier, attempts, cells_changed, resolved, residual_path
		FROM repairs
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query repairs: %w", err)
	}
	defer rows.Close()

	repairs := []RepairRecord{}
	for rows.Next() {
		var r RepairRecord
		var resolved int
		if err := rows.Scan(
			&r.RunID, &r.Seq, &r.Kind, &r.Label, &r.Tier,
			&r.Attempts, &r.CellsChanged, &resolved, &r.ResidualPath,
		); err != nil {
			return nil, fmt.Errorf("scan repair: %w", err)
		}
		r.Resolved = resolved != 0
		repairs = append(repairs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repairs: %w", err)
	}
	return repairs, nil
}

// LastSeq returns the highest sequence number recorded in any table.
// Returns 0 for an empty store. A new pipeline resumes its clock from here.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var maxSeq int64
	for _, table := range []string{"runs", "qc_results", "repairs"} {
		var seq int64
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) FROM %s", table),
		).Scan(&seq)
		if err != nil {
			return 0, fmt.Errorf("get last seq from %s: %w", table, err)
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq, nil
}
