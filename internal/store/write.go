package store

import (
	"context"
	"fmt"
)

// WriteRun persists a finished run with its log entries and variables in
// one transaction.
//
// Writing a run ID that already exists is a no-op and reports inserted=false,
// so a retried write never duplicates entries.
func (s *Store) WriteRun(ctx context.Context, run Run) (inserted bool, err error) {
	if run.ID == "" {
		return false, fmt.Errorf("write run: id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, script_hash, script, provider, outcome, executed, skipped, error, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.ScriptHash,
		run.Script,
		run.Provider,
		run.Outcome,
		run.Executed,
		run.Skipped,
		run.Error,
		run.StartedAt.UTC().Format(startedAtLayout),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return false, fmt.Errorf("write run: insert run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write run: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return false, tx.Commit()
	}

	for _, e := range run.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO log_entries (run_id, seq, severity, message, block)
			VALUES (?, ?, ?, ?, ?)
		`, run.ID, e.Seq, string(e.Severity), e.Message, e.Block)
		if err != nil {
			return false, fmt.Errorf("write run: insert entry %d: %w", e.Seq, err)
		}
	}

	for i, v := range run.Variables {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO variables (run_id, position, name, value)
			VALUES (?, ?, ?, ?)
		`, run.ID, i, v.Name, v.Value)
		if err != nil {
			return false, fmt.Errorf("write run: insert variable %q: %w", v.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("write run: commit: %w", err)
	}
	return true, nil
}
