package store

import (
	"context"
	"fmt"
)

// BeginRun inserts a run record with status running.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
func (s *Store) BeginRun(ctx context.Context, run RunRecord) error {
	status := run.Status
	if status == "" {
		status = StatusRunning
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, jurisdiction, mode, status, scratch_dir, seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Jurisdiction, run.Mode, status, run.ScratchDir, run.Seq)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun records a run's final status, report path and error, if any.
// Returns ErrRunNotFound when no run has the given id.
func (s *Store) FinishRun(ctx context.Context, id, status, reportPath, errorKind, errMsg string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, report_path = ?, error_kind = ?, error = ?
		WHERE id = ?
	`, status, reportPath, errorKind, errMsg, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// WriteGrid records a grid's properties. A second write for the same
// (run, level) only fills in digest_after.
//
// Note: The run referenced by RunID must exist (foreign key constraint).
func (s *Store) WriteGrid(ctx context.Context, g GridRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO grids
		(run_id, level, name, pixel_type, cell_size, spatial_reference, vertical_datum, vertical_unit, digest_before, digest_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, level) DO UPDATE SET digest_after = excluded.digest_after
		WHERE excluded.digest_after != ''
	`,
		g.RunID,
		g.Level,
		g.Name,
		g.PixelType,
		g.CellSize,
		g.SpatialReference,
		g.VerticalDatum,
		g.VerticalUnit,
		g.DigestBefore,
		g.DigestAfter,
	)
	if err != nil {
		return fmt.Errorf("write grid: %w", err)
	}
	return nil
}

// WriteResult inserts a QC result. Duplicate (run, seq) pairs are ignored.
func (s *Store) WriteResult(ctx context.Context, r ResultRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO qc_results
		(run_id, seq, stage, kind, label, lower_level, higher_level, passed, skipped, magnitude, violations, step_deviations, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.RunID,
		r.Seq,
		r.Stage,
		r.Kind,
		r.Label,
		r.Lower,
		r.Higher,
		boolToInt(r.Passed),
		boolToInt(r.Skipped),
		r.Magnitude,
		r.Violations,
		r.StepDeviations,
		r.Location,
	)
	if err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

// WriteRepair inserts a repair outcome. Duplicate (run, seq) pairs are ignored.
func (s *Store) WriteRepair(ctx context.Context, r RepairRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repairs
		(run_id, seq, kind, label, tier, attempts, cells_changed, resolved, residual_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		r.RunID,
		r.Seq,
		r.Kind,
		r.Label,
		r.Tier,
		r.Attempts,
		r.CellsChanged,
		boolToInt(r.Resolved),
		r.ResidualPath,
	)
	if err != nil {
		return fmt.Errorf("write repair: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
