package resolver

import (
	"reflect"

	"github.com/aretw0/statescript/pkg/variant"
)

// VariableKinds exposes the declared kinds of graph variables.
type VariableKinds interface {
	VariableKind(name string) (variant.Kind, bool)
}

// KindMap is a VariableKinds backed by a plain map.
type KindMap map[string]variant.Kind

// VariableKind implements VariableKinds.
func (m KindMap) VariableKind(name string) (variant.Kind, bool) {
	k, ok := m[name]
	return k, ok
}

// IsCompatible reports whether r may feed a slot expecting the native type
// expected. Every resolver, including a nil binding, is compatible with the
// wildcard variant.VariantType.
func IsCompatible(r Resolver, expected reflect.Type, vars VariableKinds) bool {
	if expected == variant.VariantType {
		return true
	}
	switch t := r.(type) {
	case *Constant:
		return true
	case *VariableRef:
		if t == nil || vars == nil {
			return false
		}
		k, ok := vars.VariableKind(t.Name)
		return ok && variant.IsCompatible(expected, k)
	case *AttributeRef:
		k, ok := variant.KindOf(expected)
		return ok && k.IsNumeric()
	case *TagRef, *Comparison:
		return expected == variant.NativeType(variant.KindBool)
	}
	return false
}

// Compatible filters the resolver types offered for a slot expecting
// expected. Comparison operands are restricted to the numeric subset.
func Compatible(expected reflect.Type, operand bool) []Type {
	if operand {
		return []Type{TypeConstant, TypeVariable, TypeAttribute}
	}
	out := []Type{TypeConstant, TypeVariable}
	if k, ok := variant.KindOf(expected); expected == variant.VariantType || (ok && k.IsNumeric()) {
		out = append(out, TypeAttribute)
	}
	if expected == variant.VariantType || expected == variant.NativeType(variant.KindBool) {
		out = append(out, TypeTag, TypeComparison)
	}
	return out
}
