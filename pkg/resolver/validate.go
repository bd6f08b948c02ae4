package resolver

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/variant"
)

// Walk visits r and every nested resolver depth first. Returning false from
// fn stops the descent below that resolver. Walk reports ErrCycle instead of
// looping when a Comparison contains itself.
func Walk(r Resolver, fn func(Resolver) bool) error {
	return walk(r, fn, nil)
}

func walk(r Resolver, fn func(Resolver) bool, path []*Comparison) error {
	if r == nil {
		return nil
	}
	c, isCmp := r.(*Comparison)
	if isCmp && c != nil {
		for _, seen := range path {
			if seen == c {
				return fmt.Errorf("%w: %s", ErrCycle, c.Op)
			}
		}
		if len(path) >= MaxDepth {
			return fmt.Errorf("%w: nesting deeper than %d", ErrCycle, MaxDepth)
		}
	}
	if !fn(r) || !isCmp || c == nil {
		return nil
	}
	path = append(path, c)
	if err := walk(c.Left, fn, path); err != nil {
		return err
	}
	return walk(c.Right, fn, path)
}

// Validate checks the structure of r: no cycles, known operators and
// well-formed constants. A nil resolver is valid (an unbound property).
func Validate(r Resolver) error {
	var problem error
	err := Walk(r, func(n Resolver) bool {
		switch t := n.(type) {
		case *Constant:
			if t != nil && !t.Value.IsValid() {
				problem = fmt.Errorf("constant: %w", variant.ErrUnknownKind)
				return false
			}
		case *Comparison:
			if t != nil && !t.Op.Valid() {
				problem = fmt.Errorf("%w: %s", ErrUnknownOperator, t.Op)
				return false
			}
		case *VariableRef, *AttributeRef, *TagRef:
		default:
			problem = fmt.Errorf("%w: %T", ErrUnknownResolver, n)
			return false
		}
		return problem == nil
	})
	if err != nil {
		return err
	}
	return problem
}

// Variables returns the distinct variable names referenced by r in the
// order they are first met.
func Variables(r Resolver) []string {
	var names []string
	seen := map[string]bool{}
	_ = Walk(r, func(n Resolver) bool {
		if v, ok := n.(*VariableRef); ok && v != nil && v.Name != "" && !seen[v.Name] {
			seen[v.Name] = true
			names = append(names, v.Name)
		}
		return true
	})
	return names
}
