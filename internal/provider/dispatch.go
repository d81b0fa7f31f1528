package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Dispatcher resolves provider kinds through a Registry and runs solve calls.
//
// A Dispatcher holds no per-run state and is safe to share between
// concurrent runs.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher creates a dispatcher over reg. A nil reg uses
// DefaultRegistry().
func NewDispatcher(reg *Registry) *Dispatcher {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Dispatcher{registry: reg}
}

// Registry returns the registry the dispatcher resolves kinds against.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Open validates the selection and constructs the provider.
//
// Checks run in this order, all before any provider call:
//  1. kind is registered
//  2. kind declares capability (skipped when capability is "")
//  3. required credentials are present
//  4. a factory is installed and succeeds
func (d *Dispatcher) Open(kind Kind, creds Credentials, capability Capability) (Provider, error) {
	desc, ok := d.registry.Lookup(kind)
	if !ok {
		return nil, &ConfigurationError{Kind: kind, Message: "unknown provider kind"}
	}
	if capability != "" && !desc.Supports(capability) {
		return nil, &UnsupportedCapabilityError{Kind: kind, Capability: capability}
	}
	if missing := creds.missing(desc.Credentials); len(missing) > 0 {
		return nil, &ConfigurationError{
			Kind:    kind,
			Message: fmt.Sprintf("missing credentials: %s", strings.Join(missing, ", ")),
		}
	}
	if desc.Factory == nil {
		return nil, &ConfigurationError{Kind: kind, Message: "no client registered for this provider kind"}
	}

	p, err := desc.Factory(creds)
	if err != nil {
		return nil, &ConfigurationError{Kind: kind, Message: "cannot construct provider", Err: err}
	}
	if capability != "" && !implements(p, capability) {
		return nil, &UnsupportedCapabilityError{Kind: kind, Capability: capability}
	}
	return p, nil
}

// Solve runs one capability call against the provider selected by kind.
//
// The call is synchronous and bounded by timeout (no bound when timeout <= 0).
// Only configuration problems are returned as errors; a provider that returns
// nothing, fails or times out yields a Result without a token.
func (d *Dispatcher) Solve(ctx context.Context, kind Kind, creds Credentials, params Params, timeout time.Duration) (Result, error) {
	p, err := d.Open(kind, creds, params.Capability)
	if err != nil {
		return Result{}, err
	}

	call := func(ctx context.Context) (string, error) {
		switch params.Capability {
		case CapRecaptcha:
			return p.(RecaptchaSolver).SolveRecaptcha(ctx, params.SiteKey, params.PageURL)
		case CapImage:
			return p.(ImageSolver).SolveImage(ctx, params.Image)
		default:
			return "", fmt.Errorf("unknown capability %q", params.Capability)
		}
	}

	return invoke(ctx, call, timeout), nil
}

// CheckBalance runs the pre-flight balance check for a call that will need
// capability. The selection is validated by Open first, so an unsupported
// capability is reported before the provider is asked for its balance.
// Providers that cannot report a balance pass the check.
func (d *Dispatcher) CheckBalance(ctx context.Context, kind Kind, creds Credentials, capability Capability, timeout time.Duration) error {
	p, err := d.Open(kind, creds, capability)
	if err != nil {
		return err
	}
	bc, ok := p.(BalanceChecker)
	if !ok {
		return nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	balance, err := bc.Balance(ctx)
	if err != nil {
		return &BalanceError{Kind: kind, Err: err}
	}
	if balance <= 0 {
		return &BalanceError{Kind: kind, Balance: balance}
	}
	return nil
}

type callResult struct {
	token string
	err   error
}

// invoke runs call on its own goroutine so that a provider ignoring its
// context still cannot hold the run past the deadline.
func invoke(ctx context.Context, call func(context.Context) (string, error), timeout time.Duration) Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan callResult, 1) // buffered: a late provider must not leak blocked
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("provider panic: %v", r)}
			}
		}()
		token, err := call(ctx)
		done <- callResult{token: token, err: err}
	}()

	select {
	case res := <-done:
		return classify(ctx, res)
	case <-ctx.Done():
		return fromContext(ctx)
	}
}

func classify(ctx context.Context, res callResult) Result {
	switch {
	case res.err != nil && (errors.Is(res.err, context.DeadlineExceeded) || errors.Is(res.err, context.Canceled)):
		if ctx.Err() != nil {
			return fromContext(ctx)
		}
		return Result{Reason: ReasonFailed, Err: res.err}
	case res.err != nil:
		return Result{Reason: ReasonFailed, Err: res.err}
	case res.token == "":
		return Result{Reason: ReasonEmpty}
	default:
		return Result{Token: res.token, Reason: ReasonSolved}
	}
}

func fromContext(ctx context.Context) Result {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return Result{Reason: ReasonTimeout, Err: ctx.Err()}
	}
	return Result{Reason: ReasonCancelled, Err: ctx.Err()}
}

func implements(p Provider, c Capability) bool {
	switch c {
	case CapRecaptcha:
		_, ok := p.(RecaptchaSolver)
		return ok
	case CapImage:
		_, ok := p.(ImageSolver)
		return ok
	}
	return false
}
