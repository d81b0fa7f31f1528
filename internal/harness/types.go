package harness

import (
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/store"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when the outcome, the error category and every assertion
	// matched.
	Pass bool `json:"pass"`

	RunID   string `json:"run_id"`
	Outcome string `json:"outcome"`

	// Error is the run or load error text, "" on success.
	Error string `json:"error,omitempty"`

	// ErrorCategory classifies Error, see Expect.Error.
	ErrorCategory string `json:"error_category,omitempty"`

	// Entries is the run log as read back from the store.
	Entries []execution.Entry `json:"entries"`

	// Variables are the final bindings as read back from the store.
	Variables []store.Variable `json:"variables"`

	// Errors lists every mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result with empty collections.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Entries:   []execution.Entry{},
		Variables: []store.Variable{},
		Errors:    []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Lookup returns the final value of a variable.
func (r *Result) Lookup(name string) (string, bool) {
	for _, v := range r.Variables {
		if v.Name == name {
			return v.Value, true
		}
	}
	return "", false
}
