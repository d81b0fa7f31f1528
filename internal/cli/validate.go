package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lscript/internal/script"
)

// ValidationResult is the JSON payload of a successful validate.
type ValidationResult struct {
	Valid    bool   `json:"valid"`
	Blocks   int    `json:"blocks"`
	Disabled int    `json:"disabled"`
	Hash     string `json:"hash"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <script>",
		Short: "Check a script loads without running it",
		Long: `Parse a script with every registered block kind and report the first
syntax error with its line and column. Nothing is executed.

Exit codes:
  0 - Script is valid
  1 - Syntax error
  2 - Script file missing or unreadable`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	s, err := LoadScript(path)
	if err != nil {
		return reportLoadError(f, err)
	}

	res := summarize(s)
	f.VerboseLog("Loaded %d line(s) from %s", len(s.Lines()), path)

	if f.JSON() {
		return f.Success(res)
	}
	fmt.Fprintf(f.Writer, "✓ Script valid: %d block(s), %d disabled\n", res.Blocks, res.Disabled)
	return nil
}

func summarize(s *script.Script) ValidationResult {
	res := ValidationResult{Valid: true, Hash: s.Hash()}
	for _, b := range s.Blocks() {
		res.Blocks++
		if b.Meta().Disabled {
			res.Disabled++
		}
	}
	return res
}
