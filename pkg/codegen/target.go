package codegen

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnknownTarget is returned for target identifiers that are not
// registered.
var ErrUnknownTarget = errors.New("codegen: unknown target")

// Built-in target identifiers.
const (
	ReactHookForm = "react-hook-form"
	TanStackForm  = "tanstack-form"
	BringYourOwn  = "bring-your-own"

	DefaultTarget = ReactHookForm
)

// Binding describes how generated controls read and write form state for
// one field under a given target.
type Binding struct {
	// Value is the expression that reads the current value.
	Value string
	// Spread is an attribute that wires a text input in one go, empty when
	// the target has none.
	Spread string
	// Blur is an extra attribute reporting blur events, possibly empty.
	Blur string
	// ID is the id attribute labels point at, empty when the form library
	// wires it.
	ID     string
	setter func(expr string) string
}

// Set returns the statement that stores expr as the field value.
func (b Binding) Set(expr string) string {
	if b.setter == nil {
		return expr
	}
	return b.setter(expr)
}

// Handler returns an arrow function taking param and storing expr.
func (b Binding) Handler(param, expr string) string {
	return "(" + param + ") => " + b.Set(expr)
}

// TextAttrs wires a native-like text control.
func (b Binding) TextAttrs() string {
	if b.Spread != "" {
		return b.Spread
	}
	attrs := "value={" + b.Value + "} onChange={" + b.Handler("e", "e.target.value") + "}"
	if b.Blur != "" {
		attrs += " " + b.Blur
	}
	return attrs
}

// Target describes one form library idiom.
type Target struct {
	ID    string
	Label string
	// Skeleton and Field name the templates for the document and for one
	// field wrapper.
	Skeleton string
	Field    string
	Imports  []Import
	Bind     func(name string) Binding
}

// Registry stores targets by identifier in registration order.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

// Register adds a target. Duplicate identifiers return an error.
func (r *Registry) Register(target Target) error {
	id := strings.TrimSpace(target.ID)
	if id == "" {
		return fmt.Errorf("codegen: target id is required")
	}
	if target.Skeleton == "" || target.Field == "" || target.Bind == nil {
		return fmt.Errorf("codegen: target %q needs templates and a binding", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.targets[id]; exists {
		return fmt.Errorf("codegen: target %q already registered", id)
	}
	target.ID = id
	r.targets[id] = target
	r.order = append(r.order, id)
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(target Target) {
	if err := r.Register(target); err != nil {
		panic(err)
	}
}

// Get returns the target with the given identifier.
func (r *Registry) Get(id string) (Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.targets[strings.TrimSpace(id)]
	if !ok {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownTarget, id)
	}
	return target, nil
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, err := r.Get(id)
	return err == nil
}

// List returns the targets in registration order.
func (r *Registry) List() []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Target, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.targets[id])
	}
	return out
}

// Parse resolves an identifier or display label, case-insensitively. The
// empty string resolves to the first registered target.
func (r *Registry) Parse(value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	targets := r.List()
	if trimmed == "" {
		if len(targets) == 0 {
			return "", fmt.Errorf("%w: no targets registered", ErrUnknownTarget)
		}
		return targets[0].ID, nil
	}
	for _, target := range targets {
		if strings.EqualFold(target.ID, trimmed) || strings.EqualFold(target.Label, trimmed) {
			return target.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, value)
}

var (
	defaultTargets     *Registry
	defaultTargetsOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in targets.
func DefaultRegistry() *Registry {
	defaultTargetsOnce.Do(func() {
		defaultTargets = NewBuiltinTargets()
	})
	return defaultTargets
}

// NewBuiltinTargets returns a fresh registry with the built-in targets.
func NewBuiltinTargets() *Registry {
	r := NewRegistry()
	r.MustRegister(Target{
		ID:       ReactHookForm,
		Label:    "React Hook Form",
		Skeleton: "react-hook-form",
		Field:    "react-hook-form-field",
		Imports: []Import{
			Named("react-hook-form", "useForm"),
			Named("@hookform/resolvers/zod", "zodResolver"),
			{From: "zod", Namespace: "z"},
			Named("sonner", "toast"),
			Named("@/components/ui/button", "Button"),
			Named("@/components/ui/form", "Form", "FormControl", "FormDescription", "FormField", "FormItem", "FormLabel", "FormMessage"),
		},
		Bind: func(string) Binding {
			return Binding{
				Value:  "field.value",
				Spread: "{...field}",
				setter: func(expr string) string { return "field.onChange(" + expr + ")" },
			}
		},
	})
	r.MustRegister(Target{
		ID:       TanStackForm,
		Label:    "TanStack Form",
		Skeleton: "tanstack-form",
		Field:    "tanstack-form-field",
		Imports: []Import{
			Named("@tanstack/react-form", "useForm"),
			{From: "zod", Namespace: "z"},
			Named("sonner", "toast"),
			Named("@/components/ui/button", "Button"),
			Named("@/components/ui/label", "Label"),
		},
		Bind: func(string) Binding {
			return Binding{
				Value:  "field.state.value",
				Blur:   "onBlur={field.handleBlur}",
				ID:     "id={field.name}",
				setter: func(expr string) string { return "field.handleChange(" + expr + ")" },
			}
		},
	})
	r.MustRegister(Target{
		ID:       BringYourOwn,
		Label:    "Bring Your Own Form",
		Skeleton: "bring-your-own",
		Field:    "bring-your-own-field",
		Imports: []Import{
			Named("react", "type FormEvent", "useState"),
			{From: "zod", Namespace: "z"},
			Named("sonner", "toast"),
			Named("@/components/ui/button", "Button"),
			Named("@/components/ui/label", "Label"),
		},
		Bind: func(name string) Binding {
			key := jsString(name)
			return Binding{
				Value:  "values[" + key + "]",
				ID:     "id=" + jsxAttr(name),
				setter: func(expr string) string { return "setValue(" + key + ", " + expr + ")" },
			}
		},
	})
	return r
}

// Targets lists the built-in targets.
func Targets() []Target {
	return DefaultRegistry().List()
}

// ParseTarget resolves an identifier or label against the built-in targets.
func ParseTarget(value string) (string, error) {
	return DefaultRegistry().Parse(value)
}

// Label returns the display label of a built-in target, or id itself.
func Label(id string) string {
	if target, err := DefaultRegistry().Get(id); err == nil {
		return target.Label
	}
	return id
}
