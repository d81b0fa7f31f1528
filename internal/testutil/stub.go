package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roach88/lscript/internal/provider"
)

// Stub is a scriptable provider for tests and scenarios.
//
// It answers every challenge with Token after Delay, or fails with Err. When
// IgnoreContext is set it keeps waiting past cancellation, simulating a
// client that does not honor its context.
type Stub struct {
	Token         string
	Err           error
	Delay         time.Duration
	IgnoreContext bool
	Funds         float64 // reported by Balance
	BalanceErr    error

	kind provider.Kind

	mu    sync.Mutex
	calls []provider.Params
}

// NewStub creates a stub that reports itself as kind and has a positive
// balance.
func NewStub(kind provider.Kind, token string) *Stub {
	return &Stub{kind: kind, Token: token, Funds: 1}
}

// Factory returns a provider.Factory that always hands out s.
func (s *Stub) Factory() provider.Factory {
	return func(provider.Credentials) (provider.Provider, error) {
		return s, nil
	}
}

// Install sets s as the client of kind in reg.
func (s *Stub) Install(reg *provider.Registry) error {
	return reg.SetFactory(s.kind, s.Factory())
}

// Calls returns the calls received so far.
func (s *Stub) Calls() []provider.Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]provider.Params, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stub) Kind() provider.Kind { return s.kind }

func (s *Stub) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	s.record(provider.Params{Capability: provider.CapRecaptcha, SiteKey: siteKey, PageURL: pageURL})
	return s.answer(ctx)
}

func (s *Stub) SolveImage(ctx context.Context, image provider.Image) (string, error) {
	s.record(provider.Params{Capability: provider.CapImage, Image: image})
	return s.answer(ctx)
}

func (s *Stub) Balance(ctx context.Context) (float64, error) {
	if s.BalanceErr != nil {
		return 0, s.BalanceErr
	}
	return s.Funds, ctx.Err()
}

func (s *Stub) record(p provider.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, p)
}

func (s *Stub) answer(ctx context.Context) (string, error) {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		if s.IgnoreContext {
			<-timer.C
		} else {
			select {
			case <-timer.C:
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Token, nil
}

// ErrStub is a ready-made provider failure.
var ErrStub = errors.New("stub provider failure")
