package harness

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/store"
)

// Snapshot is the golden form of a scenario run.
type Snapshot struct {
	Scenario  string            `json:"scenario"`
	RunID     string            `json:"run_id"`
	Outcome   string            `json:"outcome"`
	Error     string            `json:"error,omitempty"`
	Entries   []execution.Entry `json:"entries"`
	Variables []store.Variable  `json:"variables"`
}

// NewSnapshot builds the snapshot of result.
func NewSnapshot(name string, result *Result) Snapshot {
	s := Snapshot{
		Scenario:  name,
		RunID:     result.RunID,
		Outcome:   result.Outcome,
		Error:     result.Error,
		Entries:   result.Entries,
		Variables: result.Variables,
	}
	if s.Entries == nil {
		s.Entries = []execution.Entry{}
	}
	if s.Variables == nil {
		s.Variables = []store.Variable{}
	}
	return s
}

// Marshal renders the snapshot as indented JSON with a trailing newline.
// HTML characters are not escaped so URLs in messages stay readable.
func (s Snapshot) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(name, result).Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
