// Package config defines the read-only configuration a script run consumes
// and loads it from CUE, YAML or HCL files.
//
// A Config is built once, before any run starts, and is never mutated
// afterwards. Concurrent runs share the same value; the credential maps are
// read-only by contract.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/lscript/internal/provider"
)

// DefaultTimeout bounds a provider call when the configuration sets none.
const DefaultTimeout = 120 * time.Second

// Config is the configuration surface of a run.
type Config struct {
	// Provider selects the capability provider kind.
	Provider provider.Kind

	// Credentials holds kind-specific credentials, keyed by kind.
	Credentials map[provider.Kind]provider.Credentials

	// Timeout bounds each provider call.
	Timeout time.Duration

	// BypassBalanceCheck skips the pre-flight balance check.
	BypassBalanceCheck bool
}

// Default returns the configuration used when no file is given: the Static
// provider with no token, so challenges resolve to "no solution".
func Default() Config {
	return Config{
		Provider:    provider.Static,
		Credentials: map[provider.Kind]provider.Credentials{},
		Timeout:     DefaultTimeout,
	}
}

// CredentialsFor returns a copy of the credentials of kind.
func (c Config) CredentialsFor(kind provider.Kind) provider.Credentials {
	src := c.Credentials[kind]
	out := make(provider.Credentials, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy, detaching the result from maps the caller may
// still hold.
func (c Config) Clone() Config {
	out := c
	out.Credentials = make(map[provider.Kind]provider.Credentials, len(c.Credentials))
	for kind := range c.Credentials {
		out.Credentials[kind] = c.CredentialsFor(kind)
	}
	return out
}

// Resolve canonicalises kind names against reg (case-insensitive match) and
// validates the result. Unknown kinds are configuration errors.
func (c Config) Resolve(reg *provider.Registry) (Config, error) {
	out := c.Clone()

	kind, err := provider.ParseKind(reg, string(c.Provider))
	if err != nil {
		return Config{}, err
	}
	out.Provider = kind

	out.Credentials = make(map[provider.Kind]provider.Credentials, len(c.Credentials))
	for name := range c.Credentials {
		k, err := provider.ParseKind(reg, string(name))
		if err != nil {
			return Config{}, fmt.Errorf("credentials: %w", err)
		}
		out.Credentials[k] = c.CredentialsFor(name)
	}

	if out.Timeout < 0 {
		return Config{}, &provider.ConfigurationError{Message: fmt.Sprintf("timeout must not be negative, got %s", out.Timeout)}
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	return out, nil
}

// fileConfig is the on-disk shape shared by every format.
type fileConfig struct {
	Provider           string                       `json:"provider" yaml:"provider"`
	Timeout            string                       `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	BypassBalanceCheck bool                         `json:"bypass_balance_check,omitempty" yaml:"bypass_balance_check,omitempty"`
	Credentials        map[string]map[string]string `json:"credentials,omitempty" yaml:"credentials,omitempty"`
}

func (fc fileConfig) toConfig() (Config, error) {
	cfg := Default()
	if strings.TrimSpace(fc.Provider) != "" {
		cfg.Provider = provider.Kind(strings.TrimSpace(fc.Provider))
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("invalid timeout %q: %w", fc.Timeout, err)
		}
		cfg.Timeout = d
	}
	cfg.BypassBalanceCheck = fc.BypassBalanceCheck
	for kind, fields := range fc.Credentials {
		creds := make(provider.Credentials, len(fields))
		for k, v := range fields {
			creds[k] = v
		}
		cfg.Credentials[provider.Kind(kind)] = creds
	}
	return cfg, nil
}
