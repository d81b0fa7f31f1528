package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/engine"
	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/script"
)

const (
	historyFile = ".lscript_history"
	promptMain  = "ls> "
)

// ReplOptions holds flags for the repl command.
type ReplOptions struct {
	*RootOptions
	Config string
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Run blocks interactively",
		Long: `Read block lines, run each as soon as it is entered and keep the
variables between lines. Type :help for commands.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "config file (.cue, .yaml, .yml or .hcl)")
	return cmd
}

func runRepl(opts *ReplOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	reg := provider.DefaultRegistry()
	cfg, err := LoadConfig(opts.Config, reg)
	if err != nil {
		return reportLoadError(f, err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	session := NewSession(cfg, reg, f.Writer)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(session.Complete)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if hf, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(hf)
		_ = hf.Close()
	}
	defer func() {
		if hf, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(hf)
			_ = hf.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		select {
		case <-sigc:
			cancel()
			_ = ln.Close()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintln(f.Writer, "lscript repl - :help for commands, :quit to exit")
	for {
		line, err := ln.Prompt(promptMain)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil { // io.EOF or closed terminal
			fmt.Fprintln(f.Writer)
			return nil
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if session.Eval(ctx, line) {
			return nil
		}
	}
}

// Session evaluates REPL input against one long-lived execution context.
type Session struct {
	eng    *engine.Engine
	ec     *execution.Context
	blocks *block.Registry
	out    io.Writer
	lines  *script.Script
}

// NewSession creates a session whose blocks log to out.
func NewSession(cfg config.Config, reg *provider.Registry, out io.Writer) *Session {
	eng := engine.New(engine.WithDispatcher(provider.NewDispatcher(reg)))
	return &Session{
		eng:    eng,
		ec:     eng.NewContext(cfg, execution.WithLogger(textSink{w: out})),
		blocks: block.DefaultRegistry(),
		out:    out,
		lines:  script.New(),
	}
}

// Vars returns the session's variables.
func (s *Session) Vars() map[string]string {
	return s.ec.Vars().Map()
}

// Eval runs one line of input and reports whether the session should end.
func (s *Session) Eval(ctx context.Context, input string) (quit bool) {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	sc, err := script.Parse(s.blocks, input)
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		var le *script.LineError
		if errors.As(err, &le) && le.Column() >= 0 {
			fmt.Fprintf(s.out, "  %s\n  %s^\n", le.Text, strings.Repeat(" ", le.Column()))
		}
		return false
	}

	if _, err := s.eng.Run(ctx, sc, s.ec); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return false
	}
	for _, b := range sc.Blocks() {
		s.lines.Append(b)
	}
	return false
}

func (s *Session) command(cmd string) bool {
	name, arg, _ := strings.Cut(cmd, " ")
	switch strings.ToLower(name) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprintln(s.out, `Enter a block line to run it, e.g.
  FUNCTION ToUppercase "{name}" -> VAR "upper"
Commands:
  :set name=value   bind a variable
  :unset name       remove a variable
  :vars             show variables
  :script           show the blocks run so far
  :kinds            list block keywords
  :quit             exit`)
	case ":vars":
		for _, n := range s.ec.Vars().Names() {
			v, _ := s.ec.Vars().Get(n)
			fmt.Fprintf(s.out, "%s = %q\n", n, v)
		}
	case ":set":
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" {
			fmt.Fprintln(s.out, "usage: :set name=value")
			return false
		}
		s.ec.Vars().Set(strings.TrimSpace(k), v)
	case ":unset":
		s.ec.Vars().Delete(strings.TrimSpace(arg))
	case ":script":
		fmt.Fprint(s.out, s.lines.Text(false))
	case ":kinds":
		for _, k := range s.blocks.Kinds() {
			fmt.Fprintln(s.out, k)
		}
	default:
		fmt.Fprintf(s.out, "unknown command %s. Type :help for commands.\n", name)
	}
	return false
}

var replCommands = []string{":help", ":kinds", ":quit", ":script", ":set ", ":unset ", ":vars"}

// Complete suggests commands, block keywords and function names for the
// word being typed.
func (s *Session) Complete(line string) []string {
	if strings.HasPrefix(line, ":") {
		return withPrefix(replCommands, line, "")
	}

	head, word := "", line
	if i := strings.LastIndex(line, " "); i >= 0 {
		head, word = line[:i+1], line[i+1:]
	}
	var candidates []string
	switch {
	case strings.TrimSpace(head) == "":
		candidates = s.blocks.Kinds()
	case strings.EqualFold(strings.Fields(head)[0], block.KeywordFunction) && len(strings.Fields(head)) == 1:
		for _, n := range block.FunctionNames() {
			candidates = append(candidates, string(n))
		}
	}
	return withPrefix(candidates, word, head)
}

func withPrefix(candidates []string, word, head string) []string {
	var out []string
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToUpper(c), strings.ToUpper(word)) {
			out = append(out, head+c)
		}
	}
	sort.Strings(out)
	return out
}
