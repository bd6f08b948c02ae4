package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/statescript/pkg/variant"
)

// ErrUnknownVariable is returned when writing a variable that was never defined.
var ErrUnknownVariable = errors.New("unknown variable")

// VariableDef is the runtime definition of a graph variable.
type VariableDef struct {
	Name    string
	Kind    variant.Kind
	IsArray bool
	Initial []variant.Variant
}

// Variables is the mutable variable store of a runtime graph. Definitions
// are fixed once the graph is built; values change as output bindings write.
type Variables struct {
	mu     sync.RWMutex
	defs   map[string]VariableDef
	values map[string][]variant.Variant
}

// NewVariables creates an empty store.
func NewVariables() *Variables {
	return &Variables{
		defs:   make(map[string]VariableDef),
		values: make(map[string][]variant.Variant),
	}
}

// Define adds or replaces a definition and resets its value to the initial one.
func (s *Variables) Define(def VariableDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs[def.Name] = def
	s.values[def.Name] = append([]variant.Variant(nil), def.Initial...)
}

// Definition returns the definition of name.
func (s *Variables) Definition(name string) (VariableDef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	def, ok := s.defs[name]
	return def, ok
}

// VariableKind implements resolver.VariableKinds.
func (s *Variables) VariableKind(name string) (variant.Kind, bool) {
	def, ok := s.Definition(name)
	return def.Kind, ok
}

// Names returns the defined variable names sorted.
func (s *Variables) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the current value of a scalar variable, or the first element
// of an array variable.
func (s *Variables) Get(name string) (variant.Variant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values, ok := s.values[name]
	if !ok || len(values) == 0 {
		return variant.Variant{}, false
	}
	return values[0], true
}

// Values returns a copy of every element of name.
func (s *Variables) Values(name string) []variant.Variant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]variant.Variant(nil), s.values[name]...)
}

// Set converts v to the declared kind of name and stores it. Array variables
// are replaced by the single element v.
func (s *Variables) Set(name string, v variant.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	converted, err := variant.Convert(v, def.Kind)
	if err != nil {
		return fmt.Errorf("variable %q: %w", name, err)
	}
	s.values[name] = []variant.Variant{converted}
	return nil
}

// Append adds v to an array variable.
func (s *Variables) Append(name string, v variant.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.defs[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	if !def.IsArray {
		return fmt.Errorf("variable %q is not an array", name)
	}
	converted, err := variant.Convert(v, def.Kind)
	if err != nil {
		return fmt.Errorf("variable %q: %w", name, err)
	}
	s.values[name] = append(s.values[name], converted)
	return nil
}

// Reset restores every variable to its initial value.
func (s *Variables) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, def := range s.defs {
		s.values[name] = append([]variant.Variant(nil), def.Initial...)
	}
}
