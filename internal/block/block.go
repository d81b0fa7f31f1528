package block

import (
	"context"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/syntax"
)

// Block is one typed script operation.
type Block interface {
	// Keyword is the canonical (upper-case) keyword of the kind.
	Keyword() string

	// Meta exposes the label and disabled state shared by all kinds.
	Meta() *Base

	// Parse reads the arguments after the keyword. It must not consume
	// anything past its own grammar.
	Parse(c *syntax.Cursor) error

	// Write emits the arguments in the order Parse reads them.
	Write(w *syntax.Writer)

	// Execute runs the block against ec. A returned error fails the run.
	Execute(ctx context.Context, ec *execution.Context) error
}

// Base holds the fields every kind carries.
type Base struct {
	Label    string
	Disabled bool
}

// Meta implements Block for kinds embedding Base.
func (b *Base) Meta() *Base {
	return b
}
