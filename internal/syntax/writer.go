package syntax

import (
	"strings"
)

// ContinuationIndent prefixes continuation lines when indentation is enabled.
const ContinuationIndent = "  "

// Writer builds the canonical text of one block.
//
// Methods mirror the Cursor operations and return the Writer so a block can
// chain them in grammar order:
//
//	w := syntax.NewWriter(indent, b.Disabled)
//	w.Label(b.Label).Token("RECAPTCHA").Literal(b.URL).Literal(b.SiteKey)
//
// Tokens are separated by a single space.
type Writer struct {
	b      strings.Builder
	indent bool
	fresh  bool // nothing written on the current physical line yet
}

// NewWriter creates a Writer. When disabled is true the output starts with
// the disabled marker.
func NewWriter(indent, disabled bool) *Writer {
	w := &Writer{indent: indent, fresh: true}
	if disabled {
		w.b.WriteString(DisabledMarker)
	}
	return w
}

// Label writes "#label". Empty labels are omitted.
func (w *Writer) Label(label string) *Writer {
	if label == "" {
		return w
	}
	if needsQuoting(label) {
		return w.raw(LabelMarker + Quote(label))
	}
	return w.raw(LabelMarker + label)
}

// Token writes a bare identifier.
func (w *Writer) Token(token string) *Writer {
	return w.raw(token)
}

// Literal writes a quoted, escaped literal.
func (w *Writer) Literal(value string) *Writer {
	return w.raw(Quote(value))
}

// Arrow writes the output arrow.
func (w *Writer) Arrow() *Writer {
	return w.raw(ArrowMarker)
}

// Output writes "-> VAR "name"" when name is set.
func (w *Writer) Output(name string) *Writer {
	if name == "" {
		return w
	}
	return w.Indent().Arrow().Token("VAR").Literal(name)
}

// Indent starts a continuation line when indentation is enabled and is a
// no-op otherwise.
func (w *Writer) Indent() *Writer {
	if w.indent && !w.fresh {
		w.b.WriteString("\n" + ContinuationIndent)
		w.fresh = true
	}
	return w
}

// String returns the text written so far.
func (w *Writer) String() string {
	return w.b.String()
}

func (w *Writer) raw(s string) *Writer {
	if !w.fresh {
		w.b.WriteByte(' ')
	}
	w.b.WriteString(s)
	w.fresh = false
	return w
}

// Quote renders value as a literal that ParseLiteral decodes back to value.
func Quote(value string) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')
	for i := 0; i < len(value); i++ {
		switch ch := value[i]; ch {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(ch)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(ch)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func needsQuoting(label string) bool {
	if strings.HasPrefix(label, `"`) || strings.HasPrefix(label, LabelMarker) {
		return true
	}
	for i := 0; i < len(label); i++ {
		if isSpace(label[i]) {
			return true
		}
	}
	return false
}
