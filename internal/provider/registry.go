package provider

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrKindExists is returned when registering a duplicate kind.
var ErrKindExists = errors.New("provider kind already registered")

// Factory constructs a provider from its credentials. Credentials have been
// checked against Descriptor.Credentials before the factory runs.
type Factory func(creds Credentials) (Provider, error)

// Descriptor describes one provider kind.
type Descriptor struct {
	Kind         Kind
	Description  string
	Capabilities []Capability

	// Credentials lists the credential fields the kind requires.
	Credentials []string

	// Factory is nil for kinds whose client has not been plugged in.
	Factory Factory
}

// Supports reports whether the kind declares capability c.
func (d Descriptor) Supports(c Capability) bool {
	for _, have := range d.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Registry maps provider kinds to descriptors.
//
// Thread-safety: all methods are safe for concurrent use. Registration is
// expected to finish before runs start.
type Registry struct {
	mu    sync.RWMutex
	kinds map[Kind]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[Kind]Descriptor)}
}

// DefaultRegistry returns a registry declaring every known vendor kind plus
// the built-in Static provider. Vendor kinds have no factory until the
// runner installs one with SetFactory.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	both := []Capability{CapRecaptcha, CapImage}
	token := []string{"token"}
	userPass := []string{"user", "pass"}

	vendors := []Descriptor{
		{Kind: ImageTypers, Description: "ImageTypers", Capabilities: both, Credentials: token},
		{Kind: AntiCaptcha, Description: "Anti-Captcha", Capabilities: both, Credentials: token},
		{Kind: DeathByCaptcha, Description: "DeathByCaptcha", Capabilities: both, Credentials: userPass},
		{Kind: TwoCaptcha, Description: "2Captcha", Capabilities: both, Credentials: token},
		{Kind: RuCaptcha, Description: "RuCaptcha", Capabilities: both, Credentials: token},
		{Kind: DeCaptcher, Description: "DeCaptcher", Capabilities: both, Credentials: userPass},
		{Kind: AZCaptcha, Description: "AZCaptcha", Capabilities: both, Credentials: token},
		{Kind: SolveRecaptcha, Description: "SolveRecaptcha", Capabilities: both, Credentials: []string{"user_id", "token"}},
		{Kind: CaptchasIO, Description: "Captchas.IO", Capabilities: both, Credentials: token},
		{Kind: CustomTwoCaptcha, Description: "self-hosted 2Captcha-compatible service", Capabilities: []Capability{CapImage}, Credentials: []string{"token", "host"}},
	}
	for _, d := range vendors {
		_ = r.Register(d)
	}
	_ = r.Register(Descriptor{
		Kind:         Static,
		Description:  "answers with a fixed token (dry runs, tests)",
		Capabilities: both,
		Factory:      NewStatic,
	})
	return r
}

// Register adds a descriptor. Registering a kind twice fails with
// ErrKindExists.
func (r *Registry) Register(d Descriptor) error {
	if d.Kind == "" {
		return fmt.Errorf("provider kind is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[d.Kind]; exists {
		return fmt.Errorf("%w: %s", ErrKindExists, d.Kind)
	}
	r.kinds[d.Kind] = d
	return nil
}

// SetFactory installs the client factory for an already declared kind.
func (r *Registry) SetFactory(kind Kind, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.kinds[kind]
	if !ok {
		return fmt.Errorf("unknown provider kind %q", kind)
	}
	d.Factory = f
	r.kinds[kind] = d
	return nil
}

// Lookup returns the descriptor for kind.
func (r *Registry) Lookup(kind Kind) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.kinds[kind]
	return d, ok
}

// Kinds returns registered kinds sorted for deterministic output.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Kind, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Descriptors returns all descriptors sorted by kind.
func (r *Registry) Descriptors() []Descriptor {
	kinds := r.Kinds()
	out := make([]Descriptor, 0, len(kinds))
	for _, k := range kinds {
		d, _ := r.Lookup(k)
		out = append(out, d)
	}
	return out
}
