package provider

import (
	"context"
	"fmt"
	"strconv"
)

// StaticProvider answers every challenge with the same token.
//
// Credential fields:
//   - token:   the solution to return; empty means "no solution"
//   - balance: reported balance, defaults to 1
type StaticProvider struct {
	token   string
	balance float64
}

// NewStatic is the Factory for the Static kind.
func NewStatic(creds Credentials) (Provider, error) {
	p := &StaticProvider{token: creds.Get("token"), balance: 1}
	if raw := creds.Get("balance"); raw != "" {
		b, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", raw, err)
		}
		p.balance = b
	}
	return p, nil
}

func (p *StaticProvider) Kind() Kind { return Static }

func (p *StaticProvider) SolveRecaptcha(ctx context.Context, siteKey, pageURL string) (string, error) {
	return p.token, ctx.Err()
}

func (p *StaticProvider) SolveImage(ctx context.Context, image Image) (string, error) {
	return p.token, ctx.Err()
}

func (p *StaticProvider) Balance(ctx context.Context) (float64, error) {
	return p.balance, ctx.Err()
}
