package store

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/lscript/internal/execution"
)

// createTestStore creates a store in a temp directory.
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

// createTestRun creates a run with two entries and one variable.
func createTestRun(id string) Run {
	return Run{
		ID:         id,
		ScriptHash: "hash-" + id,
		Script:     `RECAPTCHA "u" "k" -> VAR "cap"` + "\n",
		Provider:   "Static",
		Outcome:    "completed",
		Executed:   1,
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
		Entries: []execution.Entry{
			{Seq: 1, Severity: execution.SeverityInfo, Message: "Solving reCaptcha...", Block: 0},
			{Seq: 2, Severity: execution.SeverityInfo, Message: "Successfully got the response: T", Block: 0},
		},
		Variables: []Variable{{Name: "cap", Value: "T"}},
	}
}

// verifyPragma checks that a pragma reads back as expected.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
