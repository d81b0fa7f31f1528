package syntax

import (
	"strings"
)

// Cursor is a read position over one script line.
//
// The line is never copied or mutated; parse operations only move pos. A
// failed operation leaves the cursor where it was, so callers can report the
// error position and optional clauses can be probed with Peek.
type Cursor struct {
	src string
	pos int
}

// NewCursor creates a cursor at the start of line.
func NewCursor(line string) *Cursor {
	return &Cursor{src: line}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int {
	return c.pos
}

// Rest returns the unconsumed input with leading whitespace removed.
func (c *Cursor) Rest() string {
	return strings.TrimLeft(c.src[c.pos:], " \t\r\n")
}

// AtEnd reports whether only whitespace remains.
func (c *Cursor) AtEnd() bool {
	return c.Rest() == ""
}

// Peek returns the next token without consuming it.
func (c *Cursor) Peek() (Token, error) {
	return scan(c.src, c.pos)
}

// Next consumes and returns the next token.
func (c *Cursor) Next() (Token, error) {
	tok, err := scan(c.src, c.pos)
	if err != nil {
		return tok, err
	}
	c.pos = tok.End
	return tok, nil
}

// ParseDisabled consumes a leading disabled marker and reports whether one
// was present.
func (c *Cursor) ParseDisabled() bool {
	tok, err := c.Peek()
	if err != nil || tok.Kind != TokenDisabled {
		return false
	}
	c.pos = tok.End
	return true
}

// ParseLabel consumes a leading "#label" token. It returns "" and leaves the
// cursor untouched when the next token is not a label.
func (c *Cursor) ParseLabel() string {
	tok, err := c.Peek()
	if err != nil || tok.Kind != TokenLabel {
		return ""
	}
	c.pos = tok.End
	return tok.Text
}

// ParseLiteral consumes a quoted literal and returns its unescaped content.
// expectedName describes the field for error messages (e.g. "URL").
func (c *Cursor) ParseLiteral(expectedName string) (string, error) {
	tok, err := c.Peek()
	if err != nil {
		return "", withExpected(err, expectedName)
	}
	if tok.Kind != TokenLiteral {
		return "", expected(expectedName, tok)
	}
	c.pos = tok.End
	return tok.Text, nil
}

// ParseToken consumes a token of the given kind and returns its text.
//
// When required is false and the next token is of another kind, ParseToken
// returns "" without consuming anything and without error.
func (c *Cursor) ParseToken(kind TokenKind, required bool) (string, error) {
	tok, err := c.Peek()
	if err != nil {
		if required {
			return "", withExpected(err, string(kind))
		}
		return "", nil
	}
	if tok.Kind != kind {
		if required {
			return "", expected(string(kind), tok)
		}
		return "", nil
	}
	c.pos = tok.End
	if kind == TokenArrow {
		return ArrowMarker, nil
	}
	return tok.Text, nil
}

// EnsureIdentifier consumes the bare identifier expectedName. The comparison
// ignores case.
func (c *Cursor) EnsureIdentifier(expectedName string) error {
	tok, err := c.Peek()
	if err != nil {
		return withExpected(err, expectedName)
	}
	if tok.Kind != TokenIdentifier || !strings.EqualFold(tok.Text, expectedName) {
		return expected(expectedName, tok)
	}
	c.pos = tok.End
	return nil
}

// ParseIdentifier consumes any bare identifier.
func (c *Cursor) ParseIdentifier(expectedName string) (string, error) {
	tok, err := c.Peek()
	if err != nil {
		return "", withExpected(err, expectedName)
	}
	if tok.Kind != TokenIdentifier {
		return "", expected(expectedName, tok)
	}
	c.pos = tok.End
	return tok.Text, nil
}

// ParseOutput consumes an optional "-> VAR "name"" clause. It returns "" when
// the line carries no arrow.
func (c *Cursor) ParseOutput() (string, error) {
	arrow, err := c.ParseToken(TokenArrow, false)
	if err != nil || arrow == "" {
		return "", err
	}
	if err := c.EnsureIdentifier("VAR"); err != nil {
		return "", err
	}
	return c.ParseLiteral("VARIABLE NAME")
}

// ExpectEnd fails when tokens remain after a block's grammar is complete.
func (c *Cursor) ExpectEnd() error {
	tok, err := c.Peek()
	if err != nil {
		return err
	}
	if tok.Kind != TokenEOF {
		return expected("end of line", tok)
	}
	return nil
}

func withExpected(err error, name string) error {
	if se, ok := err.(*SyntaxError); ok && se.Expected == "" {
		se.Expected = name
	}
	return err
}

// scan reads one token starting at pos, skipping leading whitespace.
func scan(src string, pos int) (Token, error) {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	if pos >= len(src) {
		return Token{Kind: TokenEOF, Pos: pos, End: pos}, nil
	}

	switch ch := src[pos]; {
	case ch == '!':
		return Token{Kind: TokenDisabled, Text: DisabledMarker, Pos: pos, End: pos + 1}, nil

	case ch == '#':
		if pos+1 < len(src) && src[pos+1] == '"' {
			text, end, err := scanQuoted(src, pos+1)
			if err != nil {
				return Token{}, err
			}
			return Token{Kind: TokenLabel, Text: text, Pos: pos, End: end}, nil
		}
		end := pos + 1
		for end < len(src) && !isSpace(src[end]) {
			end++
		}
		if end == pos+1 {
			return Token{}, &SyntaxError{Pos: pos, Message: "empty label"}
		}
		return Token{Kind: TokenLabel, Text: src[pos+1 : end], Pos: pos, End: end}, nil

	case ch == '"':
		text, end, err := scanQuoted(src, pos)
		if err != nil {
			return Token{}, err
		}
		return Token{Kind: TokenLiteral, Text: text, Pos: pos, End: end}, nil

	case ch == '-' && pos+1 < len(src) && src[pos+1] == '>':
		return Token{Kind: TokenArrow, Text: ArrowMarker, Pos: pos, End: pos + 2}, nil

	case isIdentByte(ch):
		end := pos
		for end < len(src) && isIdentByte(src[end]) {
			end++
		}
		return Token{Kind: TokenIdentifier, Text: src[pos:end], Pos: pos, End: end}, nil

	default:
		return Token{}, &SyntaxError{Pos: pos, Message: "unexpected character " + quoteByte(ch)}
	}
}

// scanQuoted reads a double-quoted literal whose opening quote is at pos.
func scanQuoted(src string, pos int) (string, int, error) {
	var b strings.Builder
	for i := pos + 1; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == '"':
			return b.String(), i + 1, nil
		case ch == '\\' && i+1 < len(src):
			switch next := src[i+1]; next {
			case '"', '\\':
				b.WriteByte(next)
				i++
			case 'n':
				b.WriteByte('\n')
				i++
			default:
				b.WriteByte(ch)
			}
		default:
			b.WriteByte(ch)
		}
	}
	return "", 0, &SyntaxError{Pos: pos, Message: "unterminated literal"}
}

func quoteByte(b byte) string {
	return "'" + string(rune(b)) + "'"
}
