package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/script"
)

// Error codes for CLI responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeReadFailed  = "E002" // File could not be read
	ErrCodeSyntax      = "E003" // Script failed to load
	ErrCodeConfig      = "E004" // Configuration invalid
	ErrCodeNotFound    = "E005" // Path or run not found
	ErrCodeWriteFailed = "E006" // File write error
	ErrCodeRunFailed   = "E007" // A block failed the run
	ErrCodeStore       = "E008" // Run log database error
	ErrCodeCancelled   = "E009" // Run cancelled
	ErrCodeBadFlag     = "E010" // Malformed flag value
)

// LoadError describes why a script or config file could not be used.
type LoadError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"` // 1-based
	Text    string `json:"text,omitempty"`   // offending source line
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Caret renders the offending line with a marker under the error column, or
// "" when the position is unknown.
func (e *LoadError) Caret() string {
	if e.Text == "" || e.Column < 1 {
		return ""
	}
	return fmt.Sprintf("  %s\n  %s^", e.Text, strings.Repeat(" ", e.Column-1))
}

// LoadScript reads and parses a script file with the default block
// registry.
func LoadScript(path string) (*script.Script, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("script not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("read script: %v", err)}
	}

	s, err := script.Parse(block.DefaultRegistry(), string(data))
	if err != nil {
		le := &LoadError{Code: ErrCodeSyntax, Message: fmt.Sprintf("%s: %v", path, err)}
		var lineErr *script.LineError
		if errors.As(err, &lineErr) {
			le.Line = lineErr.Line
			le.Text = lineErr.Text
			if col := lineErr.Column(); col >= 0 {
				le.Column = col + 1
			}
		}
		return nil, le
	}
	return s, nil
}

// LoadConfig reads a config file (or returns the defaults when path is
// empty) and resolves provider kinds against reg.
func LoadConfig(path string, reg *provider.Registry) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config not found: %s", path)}
		}
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
		}
	}

	resolved, err := cfg.Resolve(reg)
	if err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeConfig, Message: err.Error()}
	}
	return resolved, nil
}

// exitCodeFor maps a load error to an exit code: missing inputs are command
// errors, bad content is a failure.
func exitCodeFor(le *LoadError) int {
	if le.Code == ErrCodeNotFound || le.Code == ErrCodeReadFailed {
		return ExitCommandError
	}
	return ExitFailure
}

// reportLoadError prints err and returns the matching ExitError.
func reportLoadError(f *OutputFormatter, err error) error {
	var le *LoadError
	if !errors.As(err, &le) {
		le = &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
	}
	if f.JSON() {
		var details any
		if le.Line > 0 {
			details = le
		}
		if outErr := f.Error(le.Code, le.Message, details); outErr != nil {
			return outErr
		}
	} else {
		fmt.Fprintf(f.Writer, "Error [%s]: %s\n", le.Code, le.Message)
		if caret := le.Caret(); caret != "" {
			fmt.Fprintln(f.Writer, caret)
		}
	}
	return NewExitError(exitCodeFor(le), le.Error())
}
