package syntax

import (
	"fmt"
	"strings"
)

// TokenKind identifies the lexical class of a token.
type TokenKind string

const (
	TokenEOF        TokenKind = "EOF"
	TokenDisabled   TokenKind = "DISABLED"
	TokenLabel      TokenKind = "LABEL"
	TokenIdentifier TokenKind = "IDENTIFIER"
	TokenLiteral    TokenKind = "LITERAL"
	TokenArrow      TokenKind = "ARROW"
)

// Reserved markers shared by the parser and the writer.
const (
	DisabledMarker = "!"
	LabelMarker    = "#"
	ArrowMarker    = "->"
	CommentPrefix  = "##"
)

// Token is a single lexical unit of a line.
//
// Text holds the decoded value: the label without its marker, the identifier
// itself, or the unescaped literal content.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int // byte offset of the first character
	End  int // byte offset just past the token
}

func (t Token) String() string {
	if t.Kind == TokenEOF {
		return "end of line"
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// IsComment reports whether line is a comment line.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), CommentPrefix)
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
