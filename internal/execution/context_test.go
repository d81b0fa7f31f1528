package execution

import (
	"bytes"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lscript/internal/config"
	"github.com/roach88/lscript/internal/provider"
	"github.com/roach88/lscript/internal/vars"
)

func TestNew_Defaults(t *testing.T) {
	c := New(config.Default())

	assert.NotNil(t, c.Vars())
	assert.NotNil(t, c.Providers())
	assert.Equal(t, provider.Static, c.Config().Provider)
	assert.False(t, c.Cancelled())
	assert.Empty(t, c.RunID())

	c.Log("dropped", SeverityInfo) // discard sink must not panic
}

func TestNew_ConfigIsSnapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Credentials[provider.Static] = provider.Credentials{"token": "a"}

	c := New(cfg)
	cfg.Credentials[provider.Static]["token"] = "mutated"
	cfg.BypassBalanceCheck = true

	assert.Equal(t, "a", c.Config().CredentialsFor(provider.Static).Get("token"))
	assert.False(t, c.Config().BypassBalanceCheck)
}

func TestNew_Options(t *testing.T) {
	rec := NewRecorder()
	v := vars.New()
	v.Set("domain", "shop.test")
	d := provider.NewDispatcher(provider.NewRegistry())

	c := New(config.Default(), WithVariables(v), WithLogger(rec), WithDispatcher(d), WithRunID("run-1"))

	got, ok := c.Vars().Get("domain")
	assert.True(t, ok)
	assert.Equal(t, "shop.test", got)
	assert.Same(t, d, c.Providers())
	assert.Equal(t, "run-1", c.RunID())

	c.Log("hello", SeverityWarn)
	require.Len(t, rec.Entries(), 1)
	assert.Equal(t, SeverityWarn, rec.Entries()[0].Severity)
}

func TestContext_CancelFromOtherGoroutine(t *testing.T) {
	c := New(config.Default())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Cancel()
	}()
	wg.Wait()

	assert.True(t, c.Cancelled())
}

func TestRecorder_SequenceAndBlock(t *testing.T) {
	rec := NewRecorder()
	rec.Log("before", SeverityInfo)
	rec.SetBlock(2)
	rec.Log("inside", SeverityError)

	entries := rec.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Seq: 1, Severity: SeverityInfo, Message: "before", Block: -1}, entries[0])
	assert.Equal(t, Entry{Seq: 2, Severity: SeverityError, Message: "inside", Block: 2}, entries[1])
}

func TestTee(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	Tee{a, nil, b}.Log("x", SeverityInfo)

	assert.Len(t, a.Entries(), 1)
	assert.Len(t, b.Entries(), 1)
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := SlogLogger{Logger: slog.New(slog.NewTextHandler(&buf, nil))}

	l.Log("Couldn't get a reCaptcha response", SeverityWarn)

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "Couldn't get a reCaptcha response")
}

func TestParseSeverity(t *testing.T) {
	s, err := ParseSeverity(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, SeverityWarn, s)

	_, err = ParseSeverity("debug")
	assert.Error(t, err)
}

func TestClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
	assert.Equal(t, int64(1), c.Next())
	assert.Equal(t, int64(2), c.Next())
	assert.Equal(t, int64(2), c.Current())
}

func TestTee_SetBlock(t *testing.T) {
	rec := NewRecorder()
	var tee Logger = Tee{SlogLogger{}, rec}

	tee.(BlockTracker).SetBlock(4)
	tee.Log("x", SeverityInfo)

	assert.Equal(t, 4, rec.Entries()[0].Block)
}
