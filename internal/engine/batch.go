package engine

import (
	"context"
	"sync"

	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/ctxlog"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/script"
	"github.com/roach88/lscript/internal/vars"
)

// DefaultWorkers is the batch pool size used when BatchOptions.Workers is
// not positive.
const DefaultWorkers = 10

// BatchOptions configures RunBatch.
type BatchOptions struct {
	// Workers bounds the number of runs in flight.
	Workers int

	// Logger returns the log sink for the run at index i. Nil discards
	// script-level logs.
	Logger func(i int) execution.Logger
}

// BatchResult is the outcome of one run in a batch.
type BatchResult struct {
	Index int
	Result
	Variables map[string]string
}

// RunBatch executes s once per entry of inputs, each run seeded with that
// entry's variables. Results are returned in input order.
//
// Runs are independent: a failing or cancelled run does not stop the others.
// Cancelling ctx cancels every run still pending or in progress.
func (e *Engine) RunBatch(ctx context.Context, s *script.Script, cfg config.Config, inputs []map[string]string, opts BatchOptions) []BatchResult {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	// Snapshot once; every run shares the same immutable copy.
	cfg = cfg.Clone()
	results := make([]BatchResult, len(inputs))
	jobs := make(chan int, len(inputs))
	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	logger := ctxlog.FromContext(ctx)
	logger.Debug("starting batch", "runs", len(inputs), "workers", workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.runOne(ctx, s, cfg, i, inputs[i], opts)
			}
		}()
	}
	wg.Wait()

	logger.Debug("batch finished", "runs", len(inputs))
	return results
}

func (e *Engine) runOne(ctx context.Context, s *script.Script, cfg config.Config, i int, input map[string]string, opts BatchOptions) BatchResult {
	execOpts := []execution.Option{execution.WithVariables(vars.FromMap(input))}
	if opts.Logger != nil {
		execOpts = append(execOpts, execution.WithLogger(opts.Logger(i)))
	}
	ec := e.NewContext(cfg, execOpts...)

	res, _ := e.Run(ctxlog.With(ctx, "batch_index", i), s, ec)
	return BatchResult{Index: i, Result: res, Variables: ec.Vars().Map()}
}
