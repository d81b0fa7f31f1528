package block

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrKeywordExists is returned when a keyword is registered twice.
var ErrKeywordExists = errors.New("block keyword already registered")

// Descriptor describes one block kind.
type Descriptor struct {
	Keyword     string
	Description string
	Syntax      string // grammar summary shown by tooling
	New         func() Block
}

// Registry maps keywords to block kinds.
//
// Thread-safety: safe for concurrent use. Registration normally happens once
// at start-up; lookups happen on every parsed line.
type Registry struct {
	mu    sync.RWMutex
	kinds map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]Descriptor)}
}

// Register adds a kind. Keywords are matched case-insensitively and stored
// upper-case.
func (r *Registry) Register(d Descriptor) error {
	if d.Keyword == "" {
		return fmt.Errorf("register block: keyword is required")
	}
	if d.New == nil {
		return fmt.Errorf("register block %s: constructor is required", d.Keyword)
	}
	key := strings.ToUpper(d.Keyword)
	d.Keyword = key

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[key]; exists {
		return fmt.Errorf("register block %s: %w", key, ErrKeywordExists)
	}
	r.kinds[key] = d
	return nil
}

// Lookup returns the kind registered for keyword.
func (r *Registry) Lookup(keyword string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.kinds[strings.ToUpper(keyword)]
	return d, ok
}

// Kinds returns the registered keywords in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.kinds))
	for k := range r.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Descriptors returns all registered kinds sorted by keyword.
func (r *Registry) Descriptors() []Descriptor {
	keys := r.Kinds()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.kinds[k])
	}
	return out
}

// DefaultRegistry returns a registry holding the built-in kinds.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, d := range builtins() {
		if err := r.Register(d); err != nil {
			panic(err) // built-in keywords are unique
		}
	}
	return r
}

func builtins() []Descriptor {
	return []Descriptor{
		{
			Keyword:     KeywordRecaptcha,
			Description: "Solve a reCaptcha challenge through the configured provider",
			Syntax:      `RECAPTCHA "url" "siteKey" [-> VAR "name"]`,
			New:         func() Block { return NewRecaptcha() },
		},
		{
			Keyword:     KeywordCaptcha,
			Description: "Solve an image captcha through the configured provider",
			Syntax:      `CAPTCHA "imageUrl" [BASE64] [-> VAR "name"]`,
			New:         func() Block { return &Captcha{} },
		},
		{
			Keyword:     KeywordFunction,
			Description: "Transform a value with a built-in function",
			Syntax:      `FUNCTION Name ["argument"] "input" [-> VAR "name"]`,
			New:         func() Block { return &Function{} },
		},
	}
}
