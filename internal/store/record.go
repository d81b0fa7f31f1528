package store

import (
	"time"

	"github.com/roach88/lscript/internal/engine"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/script"
)

// Record builds the persisted form of a finished run: s is the script that
// ran, ec its context after the run, entries the script-level log.
func Record(s *script.Script, ec *execution.Context, res engine.Result, startedAt time.Time, entries []execution.Entry) Run {
	run := Run{
		ID:         res.RunID,
		ScriptHash: s.Hash(),
		Script:     s.Text(false),
		Provider:   string(ec.Config().Provider),
		Outcome:    string(res.Outcome),
		Executed:   res.Executed,
		Skipped:    res.Skipped,
		StartedAt:  startedAt,
		Duration:   res.Duration,
		Entries:    entries,
		Variables:  []Variable{},
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	if run.Entries == nil {
		run.Entries = []execution.Entry{}
	}
	for _, name := range ec.Vars().Names() {
		value, _ := ec.Vars().Get(name)
		run.Variables = append(run.Variables, Variable{Name: name, Value: value})
	}
	return run
}
