package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/provider"
)

func newTestSession() (*Session, *bytes.Buffer) {
	out := &bytes.Buffer{}
	cfg := config.Default()
	cfg.Credentials[provider.Static] = provider.Credentials{"token": "REPL"}
	return NewSession(cfg, provider.DefaultRegistry(), out), out
}

func TestSession_VariablesPersistBetweenLines(t *testing.T) {
	s, out := newTestSession()
	ctx := context.Background()

	assert.False(t, s.Eval(ctx, ":set name=ann"))
	assert.False(t, s.Eval(ctx, `FUNCTION ToUppercase "{name}" -> VAR "upper"`))
	assert.False(t, s.Eval(ctx, `CAPTCHA "https://{upper}.test/c.png" -> VAR "code"`))

	assert.Equal(t, map[string]string{"name": "ann", "upper": "ANN", "code": "REPL"}, s.Vars())
	assert.Contains(t, out.String(), "[INFO] Executed function ToUppercase on input ann with outcome ANN")
	assert.Contains(t, out.String(), "[INFO] Successfully got the response: REPL")
}

func TestSession_Commands(t *testing.T) {
	s, out := newTestSession()
	ctx := context.Background()

	s.Eval(ctx, `function constant "v" -> var "x"`)
	out.Reset()

	s.Eval(ctx, ":vars")
	assert.Equal(t, "x = \"v\"\n", out.String())

	out.Reset()
	s.Eval(ctx, ":script")
	assert.Equal(t, "FUNCTION Constant \"v\" -> VAR \"x\"\n", out.String())

	out.Reset()
	s.Eval(ctx, ":kinds")
	assert.Equal(t, "CAPTCHA\nFUNCTION\nRECAPTCHA\n", out.String())

	s.Eval(ctx, ":unset x")
	assert.Empty(t, s.Vars())

	out.Reset()
	s.Eval(ctx, ":set novalue")
	assert.Contains(t, out.String(), "usage: :set name=value")

	out.Reset()
	s.Eval(ctx, ":frobnicate")
	assert.Contains(t, out.String(), "unknown command :frobnicate")

	out.Reset()
	s.Eval(ctx, ":help")
	assert.Contains(t, out.String(), ":quit")

	assert.True(t, s.Eval(ctx, ":quit"))
	assert.True(t, s.Eval(ctx, ":q"))
}

func TestSession_ErrorsKeepSessionAlive(t *testing.T) {
	s, out := newTestSession()
	ctx := context.Background()

	assert.False(t, s.Eval(ctx, `NAVIGATE "https://example.com"`))
	assert.Contains(t, out.String(), `unknown block keyword "NAVIGATE"`)
	assert.Contains(t, out.String(), "^")

	out.Reset()
	assert.False(t, s.Eval(ctx, `FUNCTION Base64Decode "%%%" -> VAR "x"`))
	assert.Contains(t, out.String(), "error: block 0 (FUNCTION)")

	out.Reset()
	s.Eval(ctx, ":script")
	assert.Empty(t, out.String(), "failed lines are not kept")
}

func TestSession_Complete(t *testing.T) {
	s, _ := newTestSession()

	assert.Equal(t, []string{"CAPTCHA"}, s.Complete("CAP"))
	assert.Equal(t, []string{"RECAPTCHA"}, s.Complete("re"))
	assert.Equal(t, []string{"FUNCTION ToLowercase", "FUNCTION ToUppercase"}, s.Complete("FUNCTION To"))
	assert.Equal(t, []string{":script", ":set "}, s.Complete(":s"))
	assert.Empty(t, s.Complete(`CAPTCHA "x" B`))
}
