package execution

import (
	"sync/atomic"

	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/vars"
)

// Context is the shared mutable state of one run.
type Context struct {
	runID     string
	vars      *vars.Variables
	cfg       config.Config
	logger    Logger
	providers *provider.Dispatcher
	cancelled atomic.Bool
}

// Option configures a Context.
type Option func(*Context)

// WithVariables seeds the run with existing bindings. The Context takes
// ownership of v.
func WithVariables(v *vars.Variables) Option {
	return func(c *Context) {
		if v != nil {
			c.vars = v
		}
	}
}

// WithLogger sets the log sink. The Context does not own the sink.
func WithLogger(l Logger) Option {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDispatcher sets the provider dispatcher.
func WithDispatcher(d *provider.Dispatcher) Option {
	return func(c *Context) {
		if d != nil {
			c.providers = d
		}
	}
}

// WithRunID tags the context with a run identifier.
func WithRunID(id string) Option {
	return func(c *Context) {
		c.runID = id
	}
}

// New creates a Context over a private copy of cfg.
//
// Defaults: empty variables, a sink that discards entries, and a dispatcher
// over provider.DefaultRegistry().
func New(cfg config.Config, opts ...Option) *Context {
	c := &Context{
		vars:   vars.New(),
		cfg:    cfg.Clone(),
		logger: discard{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.providers == nil {
		c.providers = provider.NewDispatcher(nil)
	}
	return c
}

// RunID returns the run identifier, or "" when none was set.
func (c *Context) RunID() string {
	return c.runID
}

// Vars returns the run's variable bindings.
func (c *Context) Vars() *vars.Variables {
	return c.vars
}

// Config returns the read-only configuration snapshot. The returned value
// shares credential maps with the context; callers must not modify them.
func (c *Context) Config() config.Config {
	return c.cfg
}

// Providers returns the provider dispatcher.
func (c *Context) Providers() *provider.Dispatcher {
	return c.providers
}

// Log writes an entry to the run's log sink.
func (c *Context) Log(message string, severity Severity) {
	c.logger.Log(message, severity)
}

// Logger returns the run's log sink.
func (c *Context) Logger() Logger {
	return c.logger
}

// Cancel requests a cooperative stop. The run halts before its next block.
// Safe to call from any goroutine.
func (c *Context) Cancel() {
	c.cancelled.Store(true)
}

// Cancelled reports whether Cancel was called. Safe from any goroutine.
func (c *Context) Cancelled() bool {
	return c.cancelled.Load()
}
