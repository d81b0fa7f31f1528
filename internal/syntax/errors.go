package syntax

import (
	"errors"
	"fmt"
)

// ErrSyntax is the category sentinel matched by every *SyntaxError.
var ErrSyntax = errors.New("syntax error")

// SyntaxError reports a malformed or missing token.
//
// Pos is the byte offset inside the line where the problem was detected.
// Line is 1-based and zero until the script loader fills it in.
type SyntaxError struct {
	Expected string
	Found    string
	Pos      int
	Line     int
	Message  string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	detail := e.Message
	if detail == "" {
		detail = fmt.Sprintf("expected %s", e.Expected)
		if e.Found != "" {
			detail += ", found " + e.Found
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Pos+1, detail)
	}
	return fmt.Sprintf("syntax error at column %d: %s", e.Pos+1, detail)
}

// Is lets errors.Is(err, ErrSyntax) match any SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// IsSyntaxError returns true if err is, or wraps, a syntax error.
func IsSyntaxError(err error) bool {
	return errors.Is(err, ErrSyntax)
}

func expected(what string, found Token) *SyntaxError {
	return &SyntaxError{Expected: what, Found: found.String(), Pos: found.Pos}
}
