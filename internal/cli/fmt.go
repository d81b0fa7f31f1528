package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// FmtOptions holds flags for the fmt command.
type FmtOptions struct {
	*RootOptions
	Write  bool
	Indent bool
}

// FmtResult is the JSON payload of fmt.
type FmtResult struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Text    string `json:"text,omitempty"`
}

// NewFmtCommand creates the fmt command.
func NewFmtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FmtOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fmt <script>",
		Short: "Rewrite a script in canonical form",
		Long: `Print a script in canonical form: single spaces between tokens, quoted
literals re-escaped, keywords upper-cased. Comments and blank lines are
kept. Formatting an already formatted script changes nothing.

Examples:
  lscript fmt login.ls
  lscript fmt --indent --write login.ls`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFmt(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Write, "write", "w", false, "write the result back to the file")
	cmd.Flags().BoolVar(&opts.Indent, "indent", false, "put output clauses on an indented continuation line")

	return cmd
}

func runFmt(opts *FmtOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	original, err := os.ReadFile(path)
	if err != nil {
		return reportLoadError(f, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("script not found: %s", path)})
	}
	s, err := LoadScript(path)
	if err != nil {
		return reportLoadError(f, err)
	}

	text := s.Text(opts.Indent)
	changed := text != string(original)

	if opts.Write {
		if changed {
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				_ = f.Error(ErrCodeWriteFailed, err.Error(), nil)
				return WrapExitError(ExitCommandError, "failed to write script", err)
			}
		}
		f.VerboseLog("%s: changed=%t", path, changed)
		if f.JSON() {
			return f.Success(FmtResult{Path: path, Changed: changed})
		}
		if changed {
			fmt.Fprintf(f.Writer, "formatted %s\n", path)
		}
		return nil
	}

	if f.JSON() {
		return f.Success(FmtResult{Path: path, Changed: changed, Text: text})
	}
	fmt.Fprint(f.Writer, text)
	return nil
}
