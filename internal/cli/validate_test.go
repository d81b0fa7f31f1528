package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidScript(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "login.ls")})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Script valid: 3 block(s), 1 disabled")
}

func TestValidateValidScriptJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "login.ls")})

	require.NoError(t, cmd.Execute())

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 3, resp.Data.Blocks)
	assert.Equal(t, 1, resp.Data.Disabled)
	assert.Len(t, resp.Data.Hash, 64)
}

func TestValidateSyntaxError(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "bad.ls")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeSyntax)

	out := buf.String()
	assert.Contains(t, out, "line 2")
	assert.Contains(t, out, "unterminated literal")
	assert.Contains(t, out, `CAPTCHA "unterminated`)
	assert.Contains(t, out, "^")
}

func TestValidateSyntaxErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "bad.ls")})

	require.Error(t, cmd.Execute())

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string    `json:"code"`
			Details LoadError `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSyntax, resp.Error.Code)
	assert.Equal(t, 2, resp.Error.Details.Line)
	assert.Equal(t, `CAPTCHA "unterminated`, resp.Error.Details.Text)
}

func TestValidateMissingFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "absent.ls")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
	assert.Contains(t, buf.String(), "script not found")
}

func TestLoadError_Caret(t *testing.T) {
	le := &LoadError{Text: `RECAPTCHA "a" x`, Column: 15}
	assert.Equal(t, "  RECAPTCHA \"a\" x\n                ^", le.Caret())

	assert.Empty(t, (&LoadError{Text: "x"}).Caret())
}
