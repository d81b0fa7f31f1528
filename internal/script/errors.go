package script

import (
	"fmt"

	"github.com/roach88/lscript/internal/syntax"
)

// UnknownBlockError reports a keyword that no block kind is registered for.
// It matches syntax.ErrSyntax.
type UnknownBlockError struct {
	Keyword string
	Line    int
	Pos     int
}

// Error implements the error interface.
func (e *UnknownBlockError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d, column %d: unknown block keyword %q", e.Line, e.Pos+1, e.Keyword)
	}
	return fmt.Sprintf("syntax error at column %d: unknown block keyword %q", e.Pos+1, e.Keyword)
}

// Is lets errors.Is(err, syntax.ErrSyntax) match.
func (e *UnknownBlockError) Is(target error) bool {
	return target == syntax.ErrSyntax
}

// LineError attaches the offending source text to a load error so callers
// can show it. The wrapped error already carries the line number.
type LineError struct {
	Line int
	Text string
	Err  error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Column returns the 0-based offset into Text where the error was detected,
// or -1 when unknown.
func (e *LineError) Column() int {
	switch err := e.Err.(type) {
	case *syntax.SyntaxError:
		return err.Pos
	case *UnknownBlockError:
		return err.Pos
	}
	return -1
}
