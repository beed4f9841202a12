package tui

import (
	"maps"
	"slices"
)

// State tracks collected values and previously reported errors keyed by
// field name.
type State struct {
	values map[string]any
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill map[string]any, errs map[string][]string) *State {
	s := &State{
		values: maps.Clone(prefill),
		errors: make(map[string][]string, len(errs)),
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	for name, messages := range errs {
		s.errors[name] = slices.Clone(messages)
	}
	return s
}

// Values returns the current value map (mutable).
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to name.
func (s *State) ErrorsFor(name string) []string {
	if s == nil {
		return nil
	}
	return s.errors[name]
}

// Get returns the value collected for name.
func (s *State) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.values[name]
	return v, ok
}

// Set stores value for name and clears its errors.
func (s *State) Set(name string, value any) {
	s.values[name] = value
	delete(s.errors, name)
}

// Unset drops the value for name.
func (s *State) Unset(name string) {
	delete(s.values, name)
	delete(s.errors, name)
}
