package variants

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Matcher decides whether a refinement applies to a field.
type Matcher func(field model.Field) bool

// Refine adjusts the constraint of a matched field.
type Refine func(field model.Field, base Constraint) Constraint

type rule struct {
	name     string
	priority int
	match    Matcher
	refine   Refine
	order    int
}

// Table stores variants keyed by normalised name plus refinement rules that
// specialise a variant's constraint from field attributes (for example an
// Input whose type is "number"). Higher priority rules win; ties fall back to
// registration order.
type Table struct {
	mu       sync.RWMutex
	variants map[string]Variant
	order    []string
	rules    []rule
}

// New returns an empty table.
func New() *Table {
	return &Table{variants: make(map[string]Variant)}
}

// Register adds or replaces a variant.
func (t *Table) Register(v Variant) error {
	key := normalize(v.Name)
	if key == "" {
		return fmt.Errorf("variants: variant name is required")
	}
	if v.Constraint.Kind == "" {
		v.Constraint.Kind = KindText
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.variants[key]; !exists {
		t.order = append(t.order, key)
	}
	t.variants[key] = v.clone()
	return nil
}

// MustRegister panics on registration failure.
func (t *Table) MustRegister(v Variant) {
	if err := t.Register(v); err != nil {
		panic(err)
	}
}

// RegisterRule adds a constraint refinement.
func (t *Table) RegisterRule(name string, priority int, match Matcher, refine Refine) {
	if t == nil || match == nil || refine == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rules = append(t.rules, rule{
		name:     strings.TrimSpace(name),
		priority: priority,
		match:    match,
		refine:   refine,
		order:    len(t.rules),
	})
}

// Lookup returns the variant registered under name (case-insensitive).
func (t *Table) Lookup(name string) (Variant, bool) {
	if t == nil {
		return Variant{}, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.variants[normalize(name)]
	if !ok {
		return Variant{}, false
	}
	return v.clone(), true
}

// Resolve returns the variant for name, or a passthrough variant with
// KindAny and empty defaults when the name is unknown.
func (t *Table) Resolve(name string) Variant {
	if v, ok := t.Lookup(name); ok {
		return v
	}
	return Variant{Name: name, Constraint: Constraint{Kind: KindAny}}
}

// Has reports whether name is registered.
func (t *Table) Has(name string) bool {
	_, ok := t.Lookup(name)
	return ok
}

// Defaults satisfies model.DefaultsLookup.
func (t *Table) Defaults(name string) (model.Defaults, bool) {
	v, ok := t.Lookup(name)
	if !ok {
		return model.Defaults{}, false
	}
	return v.Defaults, true
}

// Constraint returns the validation seed for field after refinement rules.
func (t *Table) Constraint(field model.Field) Constraint {
	base := t.Resolve(field.Variant).Constraint
	if t == nil {
		return base
	}
	t.mu.RLock()
	rules := append([]rule(nil), t.rules...)
	t.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.refine(field, base)
		}
	}
	return base
}

// Names returns registered display names in registration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.order))
	for _, key := range t.order {
		names = append(names, t.variants[key].Name)
	}
	return names
}

// Variants returns every registered variant in registration order.
func (t *Table) Variants() []Variant {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Variant, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.variants[key].clone())
	}
	return out
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cloned := New()
	cloned.order = slices.Clone(t.order)
	for key, v := range t.variants {
		cloned.variants[key] = v.clone()
	}
	cloned.rules = append([]rule(nil), t.rules...)
	return cloned
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
