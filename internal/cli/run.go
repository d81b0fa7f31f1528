package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/lscript/internal/ctxlog"
	"github.com/roach88/lscript/internal/engine"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/store"
	"github.com/roach88/lscript/internal/vars"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Config             string
	Vars               []string
	Database           string
	BypassBalanceCheck bool

	// RunIDs overrides the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator

	// Providers overrides the provider registry (for testing).
	// If nil, defaults to provider.DefaultRegistry().
	Providers *provider.Registry
}

// RunOutput is the JSON payload of run.
type RunOutput struct {
	RunID     string            `json:"run_id"`
	Outcome   string            `json:"outcome"`
	Executed  int               `json:"executed"`
	Skipped   int               `json:"skipped"`
	Error     string            `json:"error,omitempty"`
	Entries   []execution.Entry `json:"entries"`
	Variables []store.Variable  `json:"variables"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a script",
		Long: `Run a script top to bottom. Log lines are printed as blocks write them;
the final variables are printed when the run ends.

Ctrl-C cancels the run before its next block.

Examples:
  lscript run login.ls --config providers.cue --var domain=shop.test
  lscript run login.ls --db runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (.cue, .yaml, .yml or .hcl)")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "initial variable as name=value (repeatable)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().BoolVar(&opts.BypassBalanceCheck, "bypass-balance-check", false, "skip the provider balance check")

	return cmd
}

func runScript(opts *RunOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	initial, err := parseVars(opts.Vars)
	if err != nil {
		return reportLoadError(f, err)
	}

	s, err := LoadScript(path)
	if err != nil {
		return reportLoadError(f, err)
	}

	reg := opts.Providers
	if reg == nil {
		reg = provider.DefaultRegistry()
	}
	cfg, err := LoadConfig(opts.Config, reg)
	if err != nil {
		return reportLoadError(f, err)
	}
	if opts.BypassBalanceCheck {
		cfg.BypassBalanceCheck = true
	}

	var st *store.Store
	if opts.Database != "" {
		if st, err = store.Open(opts.Database); err != nil {
			_ = f.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
	}

	engOpts := []engine.Option{engine.WithDispatcher(provider.NewDispatcher(reg))}
	if opts.RunIDs != nil {
		engOpts = append(engOpts, engine.WithRunIDs(opts.RunIDs))
	}
	eng := engine.New(engOpts...)

	rec := execution.NewRecorder()
	sink := execution.Tee{rec}
	if !f.JSON() {
		sink = append(sink, textSink{w: f.Writer})
	}
	ec := eng.NewContext(cfg,
		execution.WithVariables(vars.FromMap(initial)),
		execution.WithLogger(sink),
	)

	ctx, stop := withSignalCancel(cmd.Context(), ec)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, slog.Default())

	f.RunID = ec.RunID()
	slog.Debug("run starting", "script", path, "provider", cfg.Provider, "run_id", ec.RunID())
	startedAt := time.Now()
	res, _ := eng.Run(ctx, s, ec)

	if st != nil {
		// A cancelled run is still recorded; the signal has already
		// cancelled ctx by now.
		if _, err := st.WriteRun(context.WithoutCancel(ctx), store.Record(s, ec, res, startedAt, rec.Entries())); err != nil {
			_ = f.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		f.VerboseLog("Recorded run %s in %s", res.RunID, opts.Database)
	}

	out := RunOutput{
		RunID:     res.RunID,
		Outcome:   string(res.Outcome),
		Executed:  res.Executed,
		Skipped:   res.Skipped,
		Entries:   rec.Entries(),
		Variables: finalVariables(ec),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}

	if f.JSON() {
		if err := reportRun(f, out, res); err != nil {
			return err
		}
	} else {
		printRunSummary(f.Writer, out)
	}

	switch res.Outcome {
	case engine.OutcomeFailed:
		return WrapExitError(ExitFailure, ErrCodeRunFailed+": run failed", res.Err)
	case engine.OutcomeCancelled:
		return NewExitError(ExitFailure, ErrCodeCancelled+": run cancelled")
	}
	return nil
}

// reportRun writes the run payload. A failed run still carries its log, so
// it is reported as an error response with the payload as details.
func reportRun(f *OutputFormatter, out RunOutput, res engine.Result) error {
	switch res.Outcome {
	case engine.OutcomeFailed:
		return f.Error(ErrCodeRunFailed, out.Error, out)
	case engine.OutcomeCancelled:
		return f.Error(ErrCodeCancelled, "run cancelled", out)
	default:
		return f.Success(out)
	}
}

func printRunSummary(w io.Writer, out RunOutput) {
	fmt.Fprintf(w, "\nRun %s %s: %d executed, %d skipped\n", out.RunID, out.Outcome, out.Executed, out.Skipped)
	if out.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", out.Error)
	}
	if len(out.Variables) == 0 {
		return
	}
	fmt.Fprintln(w, "Variables:")
	for _, v := range out.Variables {
		fmt.Fprintf(w, "  %s = %q\n", v.Name, v.Value)
	}
}

func finalVariables(ec *execution.Context) []store.Variable {
	out := []store.Variable{}
	for _, name := range ec.Vars().Names() {
		value, _ := ec.Vars().Get(name)
		out = append(out, store.Variable{Name: name, Value: value})
	}
	return out
}

// parseVars turns name=value flags into a map. A later flag wins.
func parseVars(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, kv := range flags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, &LoadError{Code: ErrCodeBadFlag, Message: fmt.Sprintf("--var %q: want name=value", kv)}
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}

// withSignalCancel cancels ctx and ec on SIGINT/SIGTERM. The run stops
// before its next block; a provider call in flight is abandoned through ctx.
func withSignalCancel(parent context.Context, ec *execution.Context) (context.Context, func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling run", "signal", sig)
			ec.Cancel()
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

// textSink prints script log entries as they are written.
type textSink struct {
	w io.Writer
}

func (s textSink) Log(message string, severity execution.Severity) {
	fmt.Fprintf(s.w, "[%s] %s\n", strings.ToUpper(string(severity)), message)
}
