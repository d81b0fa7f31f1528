// Package execution provides the per-run state every block executes against.
//
// A Context owns the run's variables, a read-only configuration snapshot, a
// cooperative cancellation flag and a reference to the log sink. One Context
// serves exactly one run; contexts are never shared between runs.
//
// THREAD CONFINEMENT:
//
// The run loop calls blocks one at a time on a single goroutine, so Context
// does not lock its variables. The only members safe to touch from other
// goroutines are Cancel and Cancelled. The configuration snapshot is
// immutable and may be shared by any number of concurrent runs.
//
// LOGGING:
//
// Blocks report progress through Logger, the script-level log sink
// (message + severity). It is separate from the process logger (log/slog):
// the sink's entries belong to the run and are what the CLI prints, the
// harness asserts on and the store persists.
package execution
