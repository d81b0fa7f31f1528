package engine

import (
	"context"
	"time"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/ctxlog"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/script"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Result summarises one run.
type Result struct {
	RunID   string
	Outcome Outcome

	// Executed counts blocks that ran (including a failing one).
	Executed int
	// Skipped counts disabled blocks.
	Skipped int

	// Err is the *BlockError of a failed run, nil otherwise.
	Err error

	Duration time.Duration
}

// Engine runs scripts. It holds no per-run state; one Engine may drive any
// number of concurrent runs.
type Engine struct {
	ids       RunIDGenerator
	providers *provider.Dispatcher
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunIDs sets the run ID generator. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(e *Engine) {
		e.ids = gen
	}
}

// WithDispatcher sets the provider dispatcher handed to contexts created by
// NewContext. Default: a dispatcher over provider.DefaultRegistry().
func WithDispatcher(d *provider.Dispatcher) Option {
	return func(e *Engine) {
		e.providers = d
	}
}

// WithClock sets the wall clock used for run durations. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		ids: UUIDv7Generator{},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.providers == nil {
		e.providers = provider.NewDispatcher(nil)
	}
	return e
}

// Providers returns the engine's dispatcher.
func (e *Engine) Providers() *provider.Dispatcher {
	return e.providers
}

// NewContext creates a context for one run with a fresh run ID and the
// engine's dispatcher. opts are applied after those defaults.
func (e *Engine) NewContext(cfg config.Config, opts ...execution.Option) *execution.Context {
	base := []execution.Option{
		execution.WithRunID(e.ids.Generate()),
		execution.WithDispatcher(e.providers),
	}
	return execution.New(cfg, append(base, opts...)...)
}

// Run executes s against ec, block by block, on the calling goroutine.
//
// Returns:
//   - OutcomeCompleted, nil: every enabled block ran
//   - OutcomeCancelled, nil: cancellation was observed between blocks
//   - OutcomeFailed, *BlockError: a block returned an error; later blocks
//     did not run
func (e *Engine) Run(ctx context.Context, s *script.Script, ec *execution.Context) (Result, error) {
	start := e.now()
	ctx = ctxlog.With(ctx, "run_id", ec.RunID())
	logger := ctxlog.FromContext(ctx)
	tracker, _ := ec.Logger().(execution.BlockTracker)

	res := Result{RunID: ec.RunID(), Outcome: OutcomeCompleted}
	logger.Debug("run starting", "lines", len(s.Lines()))

	index := -1
	for _, line := range s.Lines() {
		if line.Kind != script.LineBlock {
			continue
		}
		index++
		b := line.Block

		if ec.Cancelled() || ctx.Err() != nil {
			res.Outcome = OutcomeCancelled
			logger.Info("run cancelled", "next_block", index)
			break
		}
		if b.Meta().Disabled {
			res.Skipped++
			logger.Debug("block skipped", "index", index, "keyword", b.Keyword())
			continue
		}

		if tracker != nil {
			tracker.SetBlock(index)
		}
		res.Executed++
		logger.Debug("block starting", "index", index, "keyword", b.Keyword(), "line", line.Number)

		if err := execute(ctx, b, ec); err != nil {
			res.Outcome = OutcomeFailed
			res.Err = &BlockError{
				Index:   index,
				Line:    line.Number,
				Keyword: b.Keyword(),
				Label:   b.Meta().Label,
				Err:     err,
			}
			logger.Warn("block failed",
				"index", index,
				"keyword", b.Keyword(),
				"line", line.Number,
				"error", err,
			)
			break
		}
	}

	if tracker != nil {
		tracker.SetBlock(-1)
	}
	res.Duration = e.now().Sub(start)
	logger.Info("run finished",
		"outcome", res.Outcome,
		"executed", res.Executed,
		"skipped", res.Skipped,
		"duration", res.Duration,
	)
	return res, res.Err
}

// execute runs one block, turning a panic into a *PanicError.
func execute(ctx context.Context, b block.Block, ec *execution.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return b.Execute(ctx, ec)
}
