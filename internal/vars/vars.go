// Package vars holds the named string variables a script run reads and writes.
package vars

import (
	"sort"
	"strings"
)

// Variables is an ordered name → value mapping with last-write-wins
// semantics. Order reflects first insertion and is used only for listing.
//
// Variables is not safe for concurrent use; each run owns its own instance.
type Variables struct {
	values map[string]string
	order  []string
}

// New creates an empty set of variables.
func New() *Variables {
	return &Variables{values: make(map[string]string)}
}

// FromMap creates variables from m, inserted in sorted-key order so the
// listing order is deterministic.
func FromMap(m map[string]string) *Variables {
	v := New()
	for _, name := range sortedKeys(m) {
		v.Set(name, m[name])
	}
	return v
}

// Get returns the value bound to name.
func (v *Variables) Get(name string) (string, bool) {
	val, ok := v.values[name]
	return val, ok
}

// Set binds name to value, overwriting any previous binding.
func (v *Variables) Set(name, value string) {
	if _, exists := v.values[name]; !exists {
		v.order = append(v.order, name)
	}
	v.values[name] = value
}

// Delete removes name. Missing names are ignored.
func (v *Variables) Delete(name string) {
	if _, exists := v.values[name]; !exists {
		return
	}
	delete(v.values, name)
	for i, n := range v.order {
		if n == name {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of bound variables.
func (v *Variables) Len() int {
	return len(v.values)
}

// Names returns variable names in first-insertion order.
func (v *Variables) Names() []string {
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Map returns a copy of the bindings.
func (v *Variables) Map() map[string]string {
	out := make(map[string]string, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}

// Replace substitutes every {name} placeholder in template with the value
// bound to name. Placeholders without a binding are left as they are, braces
// included; templated fields may legitimately contain literal braces.
func Replace(template string, v *Variables) string {
	if v == nil || !strings.Contains(template, "{") {
		return template
	}

	var b strings.Builder
	b.Grow(len(template))
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			return b.String()
		}
		closeIdx := strings.IndexByte(rest[open+1:], '}')
		if closeIdx < 0 {
			b.WriteString(rest)
			return b.String()
		}
		closeIdx += open + 1
		name := rest[open+1 : closeIdx]

		// "{{name}" – the outer brace is literal, retry from the inner one
		if strings.IndexByte(name, '{') >= 0 {
			inner := strings.LastIndexByte(name, '{')
			b.WriteString(rest[:open+1+inner])
			rest = rest[open+1+inner:]
			continue
		}

		b.WriteString(rest[:open])
		if val, ok := v.Get(name); ok && name != "" {
			b.WriteString(val)
		} else {
			b.WriteString(rest[open : closeIdx+1])
		}
		rest = rest[closeIdx+1:]
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
