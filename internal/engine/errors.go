package engine

import (
	"errors"
	"fmt"
)

// BlockError reports the block that failed a run.
type BlockError struct {
	// Index is the 0-based position among the script's blocks.
	Index int

	// Line is the 1-based source line, zero for blocks built in code.
	Line int

	Keyword string
	Label   string
	Err     error
}

// Error implements the error interface.
func (e *BlockError) Error() string {
	where := fmt.Sprintf("block %d (%s)", e.Index, e.Keyword)
	if e.Label != "" {
		where = fmt.Sprintf("block %d (%s #%s)", e.Index, e.Keyword, e.Label)
	}
	if e.Line > 0 {
		where += fmt.Sprintf(" at line %d", e.Line)
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

// Unwrap returns the block's error.
func (e *BlockError) Unwrap() error {
	return e.Err
}

// IsBlockError returns true if err is, or wraps, a *BlockError.
func IsBlockError(err error) bool {
	var be *BlockError
	return errors.As(err, &be)
}

// PanicError is the error recorded when a block panics.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("block panicked: %v", e.Value)
}
