package block

import (
	"context"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/syntax"
	"github.com/roach88/lscript/internal/vars"
)

// KeywordCaptcha introduces an image captcha block.
const KeywordCaptcha = "CAPTCHA"

const base64Flag = "BASE64"

// Captcha solves an image captcha. Source is the image URL, or the
// base64-encoded image when Base64 is set.
//
//	CAPTCHA "https://{domain}/captcha.png" -> VAR "code"
//	CAPTCHA "<CAPTCHAIMG>" BASE64 -> VAR "code"
type Captcha struct {
	Base

	Source       string // templated
	Base64       bool
	VariableName string
}

// Keyword implements Block.
func (b *Captcha) Keyword() string { return KeywordCaptcha }

// Parse implements Block.
func (b *Captcha) Parse(c *syntax.Cursor) error {
	var err error
	if b.Source, err = c.ParseLiteral("IMAGE URL"); err != nil {
		return err
	}
	if tok, err := c.Peek(); err == nil && tok.Kind == syntax.TokenIdentifier {
		if err := c.EnsureIdentifier(base64Flag); err != nil {
			return err
		}
		b.Base64 = true
	}
	b.VariableName, err = c.ParseOutput()
	return err
}

// Write implements Block.
func (b *Captcha) Write(w *syntax.Writer) {
	w.Literal(b.Source)
	if b.Base64 {
		w.Token(base64Flag)
	}
	w.Output(b.VariableName)
}

// Execute implements Block.
func (b *Captcha) Execute(ctx context.Context, ec *execution.Context) error {
	src := vars.Replace(b.Source, ec.Vars())
	img := provider.Image{URL: src}
	if b.Base64 {
		img = provider.Image{Base64: src}
	}

	res, err := solveChallenge(ctx, ec, "captcha", provider.Params{
		Capability: provider.CapImage,
		Image:      img,
	})
	if err != nil {
		return err
	}
	reportSolution(ec, "captcha", res, b.VariableName)
	return nil
}
