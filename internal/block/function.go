package block

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/syntax"
	"github.com/roach88/lscript/internal/vars"
)

// KeywordFunction introduces a function block.
const KeywordFunction = "FUNCTION"

// FunctionName selects the transformation a Function block applies.
type FunctionName string

const (
	FuncConstant     FunctionName = "Constant"
	FuncToUppercase  FunctionName = "ToUppercase"
	FuncToLowercase  FunctionName = "ToLowercase"
	FuncURLEncode    FunctionName = "URLEncode"
	FuncURLDecode    FunctionName = "URLDecode"
	FuncBase64Encode FunctionName = "Base64Encode"
	FuncBase64Decode FunctionName = "Base64Decode"
	FuncLength       FunctionName = "Length"
	FuncReplace      FunctionName = "Replace"
	FuncHash         FunctionName = "Hash"
)

type function struct {
	takesArgument bool
	apply         func(input, argument string) (string, error)
}

var functions = map[FunctionName]function{
	FuncConstant: {apply: func(in, _ string) (string, error) { return in, nil }},
	FuncToUppercase: {apply: func(in, _ string) (string, error) {
		return cases.Upper(language.Und).String(in), nil
	}},
	FuncToLowercase: {apply: func(in, _ string) (string, error) {
		return cases.Lower(language.Und).String(in), nil
	}},
	FuncURLEncode: {apply: func(in, _ string) (string, error) { return url.QueryEscape(in), nil }},
	FuncURLDecode: {apply: func(in, _ string) (string, error) { return url.QueryUnescape(in) }},
	FuncBase64Encode: {apply: func(in, _ string) (string, error) {
		return base64.StdEncoding.EncodeToString([]byte(in)), nil
	}},
	FuncBase64Decode: {apply: func(in, _ string) (string, error) {
		out, err := base64.StdEncoding.DecodeString(in)
		return string(out), err
	}},
	FuncLength: {apply: func(in, _ string) (string, error) {
		return strconv.Itoa(utf8.RuneCountInString(in)), nil
	}},
	FuncReplace: {takesArgument: true, apply: func(in, arg string) (string, error) {
		old, repl, ok := strings.Cut(arg, "|")
		if !ok {
			return "", fmt.Errorf("replace argument %q: want \"old|new\"", arg)
		}
		return strings.ReplaceAll(in, old, repl), nil
	}},
	FuncHash: {apply: func(in, _ string) (string, error) {
		sum := sha256.Sum256([]byte(in))
		return hex.EncodeToString(sum[:]), nil
	}},
}

// FunctionNames returns the supported function names, sorted.
func FunctionNames() []FunctionName {
	out := make([]FunctionName, 0, len(functions))
	for name := range functions {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// lookupFunction resolves name case-insensitively to its canonical spelling.
func lookupFunction(name string) (FunctionName, function, bool) {
	for n, fn := range functions {
		if strings.EqualFold(string(n), name) {
			return n, fn, true
		}
	}
	return "", function{}, false
}

// Function applies a built-in transformation to its input.
//
//	FUNCTION Replace "-|_" "{user}" -> VAR "user"
type Function struct {
	Base

	Name         FunctionName
	Argument     string // templated; only for functions that take one
	Input        string // templated
	VariableName string
}

// Keyword implements Block.
func (b *Function) Keyword() string { return KeywordFunction }

// Parse implements Block.
func (b *Function) Parse(c *syntax.Cursor) error {
	tok, err := c.Peek()
	if err != nil {
		return err
	}
	name, err := c.ParseIdentifier("FUNCTION NAME")
	if err != nil {
		return err
	}
	canonical, fn, ok := lookupFunction(name)
	if !ok {
		return &syntax.SyntaxError{
			Expected: "FUNCTION NAME",
			Found:    name,
			Pos:      tok.Pos,
			Message:  fmt.Sprintf("unknown function %q", name),
		}
	}
	b.Name = canonical

	if fn.takesArgument {
		if b.Argument, err = c.ParseLiteral("ARGUMENT"); err != nil {
			return err
		}
	}
	if b.Input, err = c.ParseLiteral("INPUT"); err != nil {
		return err
	}
	b.VariableName, err = c.ParseOutput()
	return err
}

// Write implements Block.
func (b *Function) Write(w *syntax.Writer) {
	w.Token(string(b.Name))
	if _, fn, ok := lookupFunction(string(b.Name)); ok && fn.takesArgument {
		w.Literal(b.Argument)
	}
	w.Literal(b.Input).Output(b.VariableName)
}

// Execute implements Block.
func (b *Function) Execute(_ context.Context, ec *execution.Context) error {
	_, fn, ok := lookupFunction(string(b.Name))
	if !ok {
		return fmt.Errorf("unknown function %q", b.Name)
	}

	input := vars.Replace(b.Input, ec.Vars())
	out, err := fn.apply(input, vars.Replace(b.Argument, ec.Vars()))
	if err != nil {
		return fmt.Errorf("function %s: %w", b.Name, err)
	}

	ec.Log(fmt.Sprintf("Executed function %s on input %s with outcome %s", b.Name, input, out), execution.SeverityInfo)
	if b.VariableName != "" {
		ec.Log("Output stored in variable: "+b.VariableName, execution.SeverityInfo)
		ec.Vars().Set(b.VariableName, out)
	}
	return nil
}
