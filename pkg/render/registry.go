package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores control renderers by variant. Variant names are matched
// case-insensitively after trimming, so "date picker" and "Date Picker"
// resolve to the same renderer.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]ControlRenderer
	names     map[string]string
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		renderers: make(map[string]ControlRenderer),
		names:     make(map[string]string),
	}
}

// Register adds a renderer for variant. Duplicate variants return an error.
func (r *Registry) Register(variant string, renderer ControlRenderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	key := normalizeVariant(variant)
	if key == "" {
		return fmt.Errorf("render: variant name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.renderers[key]; exists {
		return fmt.Errorf("render: renderer for %q already registered", variant)
	}

	r.renderers[key] = renderer
	r.names[key] = strings.TrimSpace(variant)
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(variant string, renderer ControlRenderer) {
	if err := r.Register(variant, renderer); err != nil {
		panic(err)
	}
}

// Replace registers renderer for variant, overriding any existing entry.
func (r *Registry) Replace(variant string, renderer ControlRenderer) {
	key := normalizeVariant(variant)
	if key == "" || renderer == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[key] = renderer
	r.names[key] = strings.TrimSpace(variant)
}

// Lookup retrieves the renderer for variant.
func (r *Registry) Lookup(variant string) (ControlRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	renderer, ok := r.renderers[normalizeVariant(variant)]
	return renderer, ok
}

// Names returns the registered variant names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.names))
	for _, name := range r.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a renderer is registered for variant.
func (r *Registry) Has(variant string) bool {
	_, ok := r.Lookup(variant)
	return ok
}

// Clone returns an independent copy so callers can add or override
// renderers without touching the shared default registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := NewRegistry()
	for key, renderer := range r.renderers {
		out.renderers[key] = renderer
		out.names[key] = r.names[key]
	}
	return out
}

func normalizeVariant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
