// Package engine runs scripts.
//
// A run walks a script's blocks in order on the calling goroutine, one block
// at a time, against a single execution.Context. Disabled blocks are skipped.
// Before each block the run checks both the context's cancellation flag and
// the context.Context; a cancelled run stops before its next block and reports
// OutcomeCancelled with a nil error.
//
// A block that returns an error fails the run. The error comes back wrapped in
// a *BlockError naming the block's position, keyword and label. Provider
// configuration problems (provider.IsConfigurationError) surface this way
// too; a provider that simply finds no solution is not an error.
//
// RunBatch executes one run per set of input variables on a bounded pool of
// goroutines. Every run gets its own execution.Context; only the immutable
// configuration and the script's blocks are shared. Blocks must not modify
// their own fields in Execute.
//
// Run IDs come from a RunIDGenerator: UUIDv7Generator in production,
// FixedGenerator in tests.
package engine
