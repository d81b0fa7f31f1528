package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lscript/internal/store"
	"github.com/roach88/lscript/internal/testutil"
)

// execRun runs the run command with a fixed run ID and returns its output.
func execRun(t *testing.T, format, runID string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: format},
		RunIDs:      testutil.NewFixedRunID(runID),
	})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeScript(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.ls")
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRun_StaticProvider(t *testing.T) {
	out, err := execRun(t, "text", "run-1",
		filepath.Join("testdata", "login.ls"),
		"--config", filepath.Join("testdata", "static.yaml"))
	require.NoError(t, err)

	assert.Contains(t, out, "[INFO] Executed function Constant on input shop.test with outcome shop.test")
	assert.Contains(t, out, "[INFO] Solving captcha...")
	assert.Contains(t, out, "[INFO] Successfully got the response: STATIC")
	assert.Contains(t, out, "Run run-1 completed: 2 executed, 1 skipped")
	assert.Contains(t, out, `code = "STATIC"`)
	assert.NotContains(t, out, "cap =")
}

func TestRun_VarsAndDefaultConfig(t *testing.T) {
	out, err := execRun(t, "text", "run-vars",
		filepath.Join("testdata", "messy.ls"),
		"--var", "user=ann",
		"--var", "unused=1")
	require.NoError(t, err)

	assert.Contains(t, out, `upper = "ANN"`)
	assert.Contains(t, out, "[WARN] Couldn't get a captcha response from the service")
}

func TestRun_JSONAndDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	out, err := execRun(t, "json", "run-db",
		filepath.Join("testdata", "login.ls"),
		"--config", filepath.Join("testdata", "static.yaml"),
		"--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string    `json:"status"`
		Data   RunOutput `json:"data"`
		RunID  string    `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-db", resp.RunID)
	assert.Equal(t, "run-db", resp.Data.RunID)
	assert.Equal(t, "completed", resp.Data.Outcome)
	assert.Len(t, resp.Data.Entries, 5)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	run, err := st.ReadRun(context.Background(), "run-db")
	require.NoError(t, err)
	assert.Equal(t, "Static", run.Provider)
	assert.Equal(t, resp.Data.Entries, run.Entries)
	assert.Equal(t, []store.Variable{
		{Name: "domain", Value: "shop.test"},
		{Name: "code", Value: "STATIC"},
	}, run.Variables)
}

func TestRun_UnsupportedProviderFails(t *testing.T) {
	script := writeScript(t, "RECAPTCHA \"https://example.com\" \"k\" -> VAR \"cap\"\nFUNCTION Constant \"x\" -> VAR \"after\"\n")

	for _, extra := range [][]string{nil, {"--bypass-balance-check"}} {
		args := append([]string{script, "--config", filepath.Join("testdata", "unsupported.hcl")}, extra...)
		out, err := execRun(t, "text", "run-unsupported", args...)
		require.Error(t, err, "flags %v", extra)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), ErrCodeRunFailed)

		assert.Contains(t, out, "Run run-unsupported failed: 1 executed, 0 skipped")
		assert.Contains(t, out, "cannot solve recaptcha challenges")
		assert.NotContains(t, out, "after =")
	}
}

func TestRun_FailedRunJSON(t *testing.T) {
	script := writeScript(t, "FUNCTION Base64Decode \"not base64!\" -> VAR \"x\"\n")

	out, err := execRun(t, "json", "run-fail", script)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunFailed, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "block 0 (FUNCTION) at line 1")
}

func TestRun_BadInputs(t *testing.T) {
	badConfig := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badConfig, []byte("provider: Bogus\n"), 0o644))

	tests := []struct {
		name     string
		args     []string
		wantCode string
		wantExit int
	}{
		{"malformed var", []string{filepath.Join("testdata", "login.ls"), "--var", "novalue"}, ErrCodeBadFlag, ExitFailure},
		{"missing script", []string{filepath.Join(t.TempDir(), "none.ls")}, ErrCodeNotFound, ExitCommandError},
		{"syntax error", []string{filepath.Join("testdata", "bad.ls")}, ErrCodeSyntax, ExitFailure},
		{"missing config", []string{filepath.Join("testdata", "login.ls"), "--config", "nope.cue"}, ErrCodeNotFound, ExitCommandError},
		{"unknown provider", []string{filepath.Join("testdata", "login.ls"), "--config", badConfig}, ErrCodeConfig, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execRun(t, "text", "run-x", tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.wantCode+"]")
		})
	}
}

func TestParseVars(t *testing.T) {
	got, err := parseVars([]string{"a=1", " b =x=y", "a=2", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "2", "b": "x=y", "empty": ""}, got)

	_, err = parseVars([]string{"=v"})
	assert.Error(t, err)
}

func TestRun_CancelledRunIsRecorded(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := newRunCommand(&RunOptions{
		RootOptions: &RootOptions{Format: "text"},
		RunIDs:      testutil.NewFixedRunID("run-cancel"),
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join("testdata", "login.ls"), "--db", dbPath})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeCancelled)

	out, err := execTrace(t, "json", "--db", dbPath, "run-cancel")
	require.NoError(t, err)
	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "run-cancel", resp.Data.RunID)
	assert.Equal(t, "cancelled", resp.Data.Outcome)
	assert.Equal(t, 0, resp.Data.Executed)
}
