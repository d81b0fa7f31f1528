package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/lscript/internal/execution"
)

// AssertionError is returned when an assertion fails. It carries the run
// log so the failure can be read without re-running the scenario.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Entries  []execution.Entry
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Entries) > 0 {
		fmt.Fprintf(&buf, "\nRun log:\n")
		for _, entry := range e.Entries {
			fmt.Fprintf(&buf, "  [%d] %-5s %s\n", entry.Seq, entry.Severity, entry.Message)
		}
	}
	return buf.String()
}

// EvaluateAssertions runs every assertion against r and returns one message
// per failure.
func EvaluateAssertions(r *Result, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(r, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d: %s", i, err))
		}
	}
	return failures
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertLogContains:
		return assertLogContains(r.Entries, a)
	case AssertLogOrder:
		return assertLogOrder(r.Entries, a)
	case AssertLogCount:
		return assertLogCount(r.Entries, a)
	case AssertVariable:
		return assertVariable(r, a)
	case AssertVariableUnset:
		return assertVariableUnset(r, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// matching returns the entries of the assertion's severity (all when unset).
func matching(entries []execution.Entry, severity string) []execution.Entry {
	if severity == "" {
		return entries
	}
	var out []execution.Entry
	for _, e := range entries {
		if string(e.Severity) == severity {
			out = append(out, e)
		}
	}
	return out
}

func assertLogContains(entries []execution.Entry, a Assertion) error {
	for _, e := range matching(entries, a.Severity) {
		if strings.Contains(e.Message, a.Message) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertLogContains,
		Expected: describe(a.Severity, fmt.Sprintf("an entry containing %q", a.Message)),
		Actual:   "no such entry",
		Entries:  entries,
	}
}

func assertLogOrder(entries []execution.Entry, a Assertion) error {
	want := 0
	for _, e := range matching(entries, a.Severity) {
		if want < len(a.Messages) && strings.Contains(e.Message, a.Messages[want]) {
			want++
		}
	}
	if want == len(a.Messages) {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogOrder,
		Expected: describe(a.Severity, fmt.Sprintf("entries in order %q", a.Messages)),
		Actual:   fmt.Sprintf("matched %d of %d, missing %q", want, len(a.Messages), a.Messages[want]),
		Entries:  entries,
	}
}

func assertLogCount(entries []execution.Entry, a Assertion) error {
	got := len(matching(entries, a.Severity))
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertLogCount,
		Expected: describe(a.Severity, fmt.Sprintf("%d entries", a.Count)),
		Actual:   fmt.Sprintf("%d entries", got),
		Entries:  entries,
	}
}

func assertVariable(r *Result, a Assertion) error {
	got, ok := r.Lookup(a.Variable)
	if ok && got == *a.Value {
		return nil
	}
	actual := "unset"
	if ok {
		actual = fmt.Sprintf("%q", got)
	}
	return &AssertionError{
		Type:     AssertVariable,
		Expected: fmt.Sprintf("%s = %q", a.Variable, *a.Value),
		Actual:   actual,
	}
}

func assertVariableUnset(r *Result, a Assertion) error {
	got, ok := r.Lookup(a.Variable)
	if !ok {
		return nil
	}
	return &AssertionError{
		Type:     AssertVariableUnset,
		Expected: fmt.Sprintf("%s unset", a.Variable),
		Actual:   fmt.Sprintf("%q", got),
	}
}

func describe(severity, what string) string {
	if severity == "" {
		return what
	}
	return fmt.Sprintf("%s (severity %s)", what, severity)
}
