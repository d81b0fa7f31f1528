package script

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/syntax"
)

// LineKind classifies a logical line.
type LineKind int

const (
	LineBlank LineKind = iota
	LineComment
	LineBlock
)

func (k LineKind) String() string {
	switch k {
	case LineComment:
		return "comment"
	case LineBlock:
		return "block"
	default:
		return "blank"
	}
}

// Line is one logical line of a script.
type Line struct {
	Kind LineKind

	// Number is the 1-based physical line the logical line starts on; zero
	// for lines added programmatically.
	Number int

	// Comment is the comment text including the "##" prefix.
	Comment string

	Block block.Block
}

// Script is an ordered sequence of lines. A Script is owned by one runtime
// and is not safe for concurrent mutation.
type Script struct {
	lines []Line
}

// New creates an empty script.
func New() *Script {
	return &Script{}
}

// Parse loads a script. A nil reg uses block.DefaultRegistry().
//
// Errors are returned as *LineError wrapping either a *syntax.SyntaxError or
// an *UnknownBlockError, both carrying the line number.
func Parse(reg *block.Registry, text string) (*Script, error) {
	if reg == nil {
		reg = block.DefaultRegistry()
	}

	s := New()
	for _, ll := range logicalLines(text) {
		switch {
		case strings.TrimSpace(ll.text) == "":
			s.lines = append(s.lines, Line{Kind: LineBlank, Number: ll.number})

		case syntax.IsComment(ll.text):
			s.lines = append(s.lines, Line{Kind: LineComment, Number: ll.number, Comment: strings.TrimSpace(ll.text)})

		default:
			b, err := ParseLine(reg, ll.text)
			if err != nil {
				return nil, &LineError{Line: ll.number, Text: ll.text, Err: atLine(err, ll.number)}
			}
			s.lines = append(s.lines, Line{Kind: LineBlock, Number: ll.number, Block: b})
		}
	}
	return s, nil
}

func atLine(err error, line int) error {
	var se *syntax.SyntaxError
	if errors.As(err, &se) {
		se.Line = line
	}
	var ue *UnknownBlockError
	if errors.As(err, &ue) {
		ue.Line = line
	}
	return err
}

type logicalLine struct {
	number int
	text   string
}

// logicalLines splits text into physical lines and folds continuation lines
// (leading whitespace, non-blank) into the block line before them.
func logicalLines(text string) []logicalLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	var out []logicalLine
	for i, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		continues := trimmed != "" && raw != strings.TrimLeft(raw, " \t")
		if n := len(out); continues && n > 0 && isBlockText(out[n-1].text) {
			out[n-1].text += " " + trimmed
			continue
		}
		if trimmed != "" {
			raw = trimmed
		}
		out = append(out, logicalLine{number: i + 1, text: raw})
	}
	return out
}

func isBlockText(s string) bool {
	t := strings.TrimSpace(s)
	return t != "" && !syntax.IsComment(t)
}

// Lines returns the script's lines. The slice is shared; do not modify it.
func (s *Script) Lines() []Line {
	return s.lines
}

// Blocks returns the blocks in script order, disabled ones included.
func (s *Script) Blocks() []block.Block {
	out := make([]block.Block, 0, len(s.lines))
	for _, l := range s.lines {
		if l.Kind == LineBlock {
			out = append(out, l.Block)
		}
	}
	return out
}

// Append adds a block at the end of the script.
func (s *Script) Append(b block.Block) {
	s.lines = append(s.lines, Line{Kind: LineBlock, Block: b})
}

// AppendComment adds a comment line. The "##" prefix is added when missing.
func (s *Script) AppendComment(text string) {
	if !syntax.IsComment(text) {
		text = syntax.CommentPrefix + " " + text
	}
	s.lines = append(s.lines, Line{Kind: LineComment, Comment: text})
}

// Text renders the script in canonical form, one logical line per line.
func (s *Script) Text(indent bool) string {
	var b strings.Builder
	for _, l := range s.lines {
		switch l.Kind {
		case LineBlock:
			b.WriteString(FormatBlock(l.Block, indent))
		case LineComment:
			b.WriteString(l.Comment)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Hash returns the hex SHA-256 of the canonical, unindented text after
// Unicode NFC normalisation. Formatting-only edits leave the hash unchanged.
func (s *Script) Hash() string {
	sum := sha256.Sum256([]byte(norm.NFC.String(s.Text(false))))
	return hex.EncodeToString(sum[:])
}
