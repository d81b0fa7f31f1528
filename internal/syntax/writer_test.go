package syntax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Chain(t *testing.T) {
	w := NewWriter(false, false)
	w.Label("LOGIN").Token("RECAPTCHA").Literal("https://x/{d}").Literal("KEY").Output("cap")

	assert.Equal(t, `#LOGIN RECAPTCHA "https://x/{d}" "KEY" -> VAR "cap"`, w.String())
}

func TestWriter_Disabled(t *testing.T) {
	w := NewWriter(false, true)
	w.Token("RECAPTCHA").Literal("u")

	assert.Equal(t, `!RECAPTCHA "u"`, w.String())
}

func TestWriter_Indent(t *testing.T) {
	w := NewWriter(true, false)
	w.Token("RECAPTCHA").Literal("u").Literal("k").Output("cap")

	assert.Equal(t, "RECAPTCHA \"u\" \"k\"\n  -> VAR \"cap\"", w.String())
}

func TestWriter_OmitsEmptyParts(t *testing.T) {
	w := NewWriter(true, false)
	w.Label("").Token("RECAPTCHA").Literal("").Output("")

	assert.Equal(t, `RECAPTCHA ""`, w.String())
}

func TestWriter_QuotedLabel(t *testing.T) {
	tests := map[string]string{
		"solve login": `#"solve login" X`,
		`"odd`:        `#"\"odd" X`,
		"#hash":       `#"#hash" X`,
		"plain":       `#plain X`,
	}

	for label, want := range tests {
		t.Run(label, func(t *testing.T) {
			got := NewWriter(false, false).Label(label).Token("X").String()
			assert.Equal(t, want, got)

			c := NewCursor(got)
			assert.Equal(t, label, c.ParseLabel())
		})
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	values := []string{
		"",
		"plain",
		`with "quotes"`,
		`back\slash`,
		`trailing\`,
		"multi\nline",
		`\d+\s`,
		"{domain}",
	}

	for _, v := range values {
		got, err := NewCursor(Quote(v)).ParseLiteral("VALUE")
		require.NoError(t, err, "value %q", v)
		assert.Equal(t, v, got)
	}
}
