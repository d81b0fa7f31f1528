package block

import (
	"context"

	"github.com/roach88/lscript/internal/execution"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/syntax"
	"github.com/roach88/lscript/internal/vars"
)

// KeywordRecaptcha introduces a reCaptcha block.
const KeywordRecaptcha = "RECAPTCHA"

// DefaultRecaptchaURL is the page URL of a freshly created reCaptcha block.
const DefaultRecaptchaURL = "https://google.com"

// Recaptcha solves a reCaptcha challenge.
//
//	RECAPTCHA "https://{domain}/login" "6Lc...siteKey" -> VAR "captchaToken"
type Recaptcha struct {
	Base

	// URL is the page the challenge appears on. Templated.
	URL string
	// SiteKey is the Google site key from the page source.
	SiteKey string
	// VariableName receives the token. Optional.
	VariableName string
}

// NewRecaptcha creates a reCaptcha block with the default URL.
func NewRecaptcha() *Recaptcha {
	return &Recaptcha{URL: DefaultRecaptchaURL}
}

// Keyword implements Block.
func (b *Recaptcha) Keyword() string { return KeywordRecaptcha }

// Parse implements Block.
func (b *Recaptcha) Parse(c *syntax.Cursor) error {
	var err error
	if b.URL, err = c.ParseLiteral("URL"); err != nil {
		return err
	}
	if b.SiteKey, err = c.ParseLiteral("SITEKEY"); err != nil {
		return err
	}
	b.VariableName, err = c.ParseOutput()
	return err
}

// Write implements Block.
func (b *Recaptcha) Write(w *syntax.Writer) {
	w.Literal(b.URL).Literal(b.SiteKey).Output(b.VariableName)
}

// Execute implements Block.
func (b *Recaptcha) Execute(ctx context.Context, ec *execution.Context) error {
	res, err := solveChallenge(ctx, ec, "reCaptcha", provider.Params{
		Capability: provider.CapRecaptcha,
		SiteKey:    b.SiteKey,
		PageURL:    vars.Replace(b.URL, ec.Vars()),
	})
	if err != nil {
		return err
	}
	reportSolution(ec, "reCaptcha", res, b.VariableName)
	return nil
}
