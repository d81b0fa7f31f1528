package store

import (
	"errors"
	"time"

	"github.com/roach88/lscript/internal/execution"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Run is one persisted run.
type Run struct {
	ID         string
	ScriptHash string
	Script     string
	Provider   string
	Outcome    string
	Executed   int
	Skipped    int
	Error      string

	// StartedAt orders runs in listings; ties fall back to ID.
	StartedAt time.Time
	Duration  time.Duration

	Entries   []execution.Entry
	Variables []Variable
}

// Variable is one final binding of a run.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// startedAtLayout is fixed-width UTC so that started_at sorts as text.
const startedAtLayout = "2006-01-02T15:04:05.000000000Z"

// EntryFilter narrows ReadEntries. The zero value matches everything.
type EntryFilter struct {
	Severity execution.Severity
	Block    *int
}
