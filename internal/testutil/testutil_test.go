package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lscript/internal/provider"
)

func TestStepClock(t *testing.T) {
	c := NewStepClock(time.Time{}, time.Second)
	assert.Equal(t, Epoch, c.Now())
	assert.Equal(t, Epoch.Add(time.Second), c.Now())

	c.Reset(Epoch)
	assert.Equal(t, Epoch, c.Now())
}

func TestStepClock_Concurrent(t *testing.T) {
	c := NewStepClock(Epoch, time.Millisecond)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Now()
		}()
	}
	wg.Wait()
	assert.Equal(t, Epoch.Add(100*time.Millisecond), c.Now())
}

func TestFixedRunID(t *testing.T) {
	assert.Equal(t, DefaultRunID, NewFixedRunID("").Generate())

	g := NewFixedRunID("run-1")
	assert.Equal(t, "run-1", g.Generate())
	assert.Equal(t, "run-1", g.Generate())
}

func TestStub_ThroughDispatcher(t *testing.T) {
	reg := provider.DefaultRegistry()
	stub := NewStub(provider.TwoCaptcha, "TOK")
	require.NoError(t, stub.Install(reg))

	d := provider.NewDispatcher(reg)
	res, err := d.Solve(context.Background(), provider.TwoCaptcha, provider.Credentials{"token": "k"},
		provider.Params{Capability: provider.CapRecaptcha, SiteKey: "S", PageURL: "P"}, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "TOK", res.Token)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "P", calls[0].PageURL)

	require.NoError(t, d.CheckBalance(context.Background(), provider.TwoCaptcha, provider.Credentials{"token": "k"}, provider.CapRecaptcha, time.Second))
}

func TestStub_Behaviours(t *testing.T) {
	t.Run("error", func(t *testing.T) {
		s := NewStub(provider.Static, "unused")
		s.Err = ErrStub
		_, err := s.SolveImage(context.Background(), provider.Image{URL: "u"})
		assert.ErrorIs(t, err, ErrStub)
	})

	t.Run("delay honors context", func(t *testing.T) {
		s := NewStub(provider.Static, "late")
		s.Delay = time.Hour
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.SolveRecaptcha(ctx, "k", "u")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("balance error", func(t *testing.T) {
		s := NewStub(provider.Static, "")
		s.BalanceErr = ErrStub
		_, err := s.Balance(context.Background())
		assert.ErrorIs(t, err, ErrStub)
	})
}
