package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Severity string
	Block    int // -1: all blocks
	Limit    int
}

// TraceResult is the JSON payload of trace for one run.
type TraceResult struct {
	RunID      string            `json:"run_id"`
	ScriptHash string            `json:"script_hash"`
	Provider   string            `json:"provider"`
	Outcome    string            `json:"outcome"`
	Executed   int               `json:"executed"`
	Skipped    int               `json:"skipped"`
	Error      string            `json:"error,omitempty"`
	StartedAt  string            `json:"started_at"`
	DurationMS int64             `json:"duration_ms"`
	Entries    []execution.Entry `json:"entries"`
	Variables  []store.Variable  `json:"variables"`
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	RunID     string `json:"run_id"`
	Outcome   string `json:"outcome"`
	Provider  string `json:"provider"`
	StartedAt string `json:"started_at"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace [run-id]",
		Short: "Show a recorded run",
		Long: `Show the log and final variables of a run recorded with "run --db".
Without a run ID, list the most recent runs.

Examples:
  lscript trace --db runs.db
  lscript trace --db runs.db 0192f0c4-...
  lscript trace --db runs.db 0192f0c4-... --severity warn --block 2`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runListRuns(opts, cmd)
			}
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "only show entries of this severity (info|warn|error)")
	cmd.Flags().IntVar(&opts.Block, "block", -1, "only show entries written by this block index")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to list")

	return cmd
}

func openStore(f *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func runTrace(opts *TraceOptions, runID string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	filter := store.EntryFilter{}
	if opts.Severity != "" {
		sev, err := execution.ParseSeverity(opts.Severity)
		if err != nil {
			return reportLoadError(f, &LoadError{Code: ErrCodeBadFlag, Message: err.Error()})
		}
		filter.Severity = sev
	}
	if opts.Block >= 0 {
		block := opts.Block
		filter.Block = &block
	}

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, store.ErrNotFound) {
		_ = f.Error(ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	f.RunID = run.ID
	entries := run.Entries
	if filter.Severity != "" || filter.Block != nil {
		if entries, err = st.ReadEntries(ctx, runID, filter); err != nil {
			_ = f.Error(ErrCodeStore, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read entries", err)
		}
	}

	res := TraceResult{
		RunID:      run.ID,
		ScriptHash: run.ScriptHash,
		Provider:   run.Provider,
		Outcome:    run.Outcome,
		Executed:   run.Executed,
		Skipped:    run.Skipped,
		Error:      run.Error,
		StartedAt:  run.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMS: run.Duration.Milliseconds(),
		Entries:    entries,
		Variables:  run.Variables,
	}
	if f.JSON() {
		return f.Success(res)
	}
	printTrace(f.Writer, res)
	return nil
}

func printTrace(w io.Writer, res TraceResult) {
	fmt.Fprintf(w, "Run:      %s\n", res.RunID)
	fmt.Fprintf(w, "Outcome:  %s (%d executed, %d skipped)\n", res.Outcome, res.Executed, res.Skipped)
	fmt.Fprintf(w, "Provider: %s\n", res.Provider)
	fmt.Fprintf(w, "Started:  %s (%dms)\n", res.StartedAt, res.DurationMS)
	if res.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", res.Error)
	}

	fmt.Fprintf(w, "\nLog (%d entries):\n", len(res.Entries))
	for _, e := range res.Entries {
		where := "-"
		if e.Block >= 0 {
			where = fmt.Sprintf("#%d", e.Block)
		}
		fmt.Fprintf(w, "  %3d %-4s %-5s %s\n", e.Seq, where, e.Severity, e.Message)
	}

	if len(res.Variables) > 0 {
		fmt.Fprintln(w, "\nVariables:")
		for _, v := range res.Variables {
			fmt.Fprintf(w, "  %s = %q\n", v.Name, v.Value)
		}
	}
}

func runListRuns(opts *TraceOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openStore(f, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		_ = f.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	summaries := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		summaries = append(summaries, RunSummary{
			RunID:     r.ID,
			Outcome:   r.Outcome,
			Provider:  r.Provider,
			StartedAt: r.StartedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	if f.JSON() {
		return f.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(f.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range summaries {
		fmt.Fprintf(f.Writer, "%s  %-9s %-16s %s\n", r.RunID, r.Outcome, r.Provider, r.StartedAt)
	}
	return nil
}
