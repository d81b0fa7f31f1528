package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lscript/internal/execution"
)

const runColumns = `id, script_hash, script, provider, outcome, executed, skipped, error, started_at, duration_ms`

// ReadRun returns a run with its entries and variables. Missing runs yield
// ErrNotFound.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}

	if run.Entries, err = s.ReadEntries(ctx, id, EntryFilter{}); err != nil {
		return Run{}, err
	}
	if run.Variables, err = s.readVariables(ctx, id); err != nil {
		return Run{}, err
	}
	return run, nil
}

// ListRuns returns run headers, newest first by start time, without
// entries or variables. limit <= 0 means no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id COLLATE BINARY DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadEntries returns a run's log entries in sequence order.
//
// Returns an empty slice (not nil) when nothing matches.
func (s *Store) ReadEntries(ctx context.Context, runID string, filter EntryFilter) ([]execution.Entry, error) {
	where := []string{"run_id = ?"}
	args := []any{runID}
	if filter.Severity != "" {
		where = append(where, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Block != nil {
		where = append(where, "block = ?")
		args = append(args, *filter.Block)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, severity, message, block
		FROM log_entries
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY seq ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []execution.Entry{}
	for rows.Next() {
		var e execution.Entry
		var sev string
		if err := rows.Scan(&e.Seq, &sev, &e.Message, &e.Block); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Severity = execution.Severity(sev)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func (s *Store) readVariables(ctx context.Context, runID string) ([]Variable, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, value FROM variables
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query variables: %w", err)
	}
	defer rows.Close()

	vars := []Variable{}
	for rows.Next() {
		var v Variable
		if err := rows.Scan(&v.Name, &v.Value); err != nil {
			return nil, fmt.Errorf("scan variable: %w", err)
		}
		vars = append(vars, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variables: %w", err)
	}
	return vars, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var startedAt string
	var durationMS int64
	err := row.Scan(
		&run.ID,
		&run.ScriptHash,
		&run.Script,
		&run.Provider,
		&run.Outcome,
		&run.Executed,
		&run.Skipped,
		&run.Error,
		&startedAt,
		&durationMS,
	)
	if err != nil {
		return Run{}, err
	}
	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return run, nil
}
