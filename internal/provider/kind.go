package provider

import (
	"fmt"
	"strings"
)

// Kind identifies a provider service.
type Kind string

const (
	ImageTypers      Kind = "ImageTypers"
	AntiCaptcha      Kind = "AntiCaptcha"
	DeathByCaptcha   Kind = "DeathByCaptcha"
	TwoCaptcha       Kind = "TwoCaptcha"
	RuCaptcha        Kind = "RuCaptcha"
	DeCaptcher       Kind = "DeCaptcher"
	AZCaptcha        Kind = "AZCaptcha"
	SolveRecaptcha   Kind = "SolveRecaptcha"
	CaptchasIO       Kind = "CaptchasIO"
	CustomTwoCaptcha Kind = "CustomTwoCaptcha"

	// Static answers every challenge with a configured token. It needs no
	// network access and is used for dry runs and tests.
	Static Kind = "Static"
)

// ParseKind resolves a kind name case-insensitively against reg.
func ParseKind(reg *Registry, name string) (Kind, error) {
	for _, k := range reg.Kinds() {
		if strings.EqualFold(string(k), strings.TrimSpace(name)) {
			return k, nil
		}
	}
	return "", &ConfigurationError{Kind: Kind(name), Message: fmt.Sprintf("unknown provider kind %q", name)}
}

// Capability is a kind of work a provider can perform.
type Capability string

const (
	CapRecaptcha Capability = "recaptcha"
	CapImage     Capability = "image"
)

// Credentials holds kind-specific credential fields, e.g. "token" or
// "user"/"pass".
type Credentials map[string]string

// Get returns the named field, or "" when absent.
func (c Credentials) Get(field string) string {
	if c == nil {
		return ""
	}
	return c[field]
}

// missing returns the fields from required that are absent or blank.
func (c Credentials) missing(required []string) []string {
	var out []string
	for _, f := range required {
		if strings.TrimSpace(c.Get(f)) == "" {
			out = append(out, f)
		}
	}
	return out
}
