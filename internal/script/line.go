package script

import (
	"github.com/roach88/lscript/internal/block"
	"github.com/roach88/lscript/internal/syntax"
)

// ParseLine parses one logical block line:
//
//	[!] [#label] KEYWORD ARG...
//
// A nil reg uses block.DefaultRegistry().
func ParseLine(reg *block.Registry, line string) (block.Block, error) {
	if reg == nil {
		reg = block.DefaultRegistry()
	}
	c := syntax.NewCursor(line)
	disabled := c.ParseDisabled()

	label := c.ParseLabel()

	// ParseLabel swallows scan errors such as an empty "#"; Peek surfaces them.
	kw, err := c.Peek()
	if err != nil {
		return nil, err
	}
	if kw.Kind != syntax.TokenIdentifier {
		return nil, &syntax.SyntaxError{Expected: "block keyword", Found: kw.String(), Pos: kw.Pos}
	}
	desc, ok := reg.Lookup(kw.Text)
	if !ok {
		return nil, &UnknownBlockError{Keyword: kw.Text, Pos: kw.Pos}
	}
	if _, err := c.Next(); err != nil {
		return nil, err
	}

	b := desc.New()
	if err := b.Parse(c); err != nil {
		return nil, err
	}
	if err := c.ExpectEnd(); err != nil {
		return nil, err
	}

	meta := b.Meta()
	meta.Disabled = disabled
	meta.Label = label
	return b, nil
}

// FormatBlock renders b as canonical text. With indent, the output clause
// goes on a continuation line.
func FormatBlock(b block.Block, indent bool) string {
	meta := b.Meta()
	w := syntax.NewWriter(indent, meta.Disabled)
	w.Label(meta.Label).Token(b.Keyword())
	b.Write(w)
	return w.String()
}
