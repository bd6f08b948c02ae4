package variant

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnknownKind is returned when a kind name or tag is not supported.
	ErrUnknownKind = errors.New("unknown variant kind")
	// ErrIncompatible is returned when a value cannot be converted to a kind.
	ErrIncompatible = errors.New("incompatible variant conversion")
)

// From wraps a native Go value. Variants pass through unchanged.
func From(x any) (Variant, error) {
	switch t := x.(type) {
	case Variant:
		return t, nil
	case bool:
		return Bool(t), nil
	case int8:
		return Int8(t), nil
	case uint8:
		return UInt8(t), nil
	case int16:
		return Int16(t), nil
	case uint16:
		return UInt16(t), nil
	case int32:
		return Int32(t), nil
	case uint32:
		return UInt32(t), nil
	case int64:
		return Int64(t), nil
	case uint64:
		return UInt64(t), nil
	case int:
		return Int64(int64(t)), nil
	case uint:
		return UInt64(uint64(t)), nil
	case float32:
		return Float32(t), nil
	case float64:
		return Float64(t), nil
	case Vector2:
		return FromVector2(t), nil
	case Vector3:
		return FromVector3(t), nil
	case Vector4:
		return FromVector4(t), nil
	case Plane:
		return FromPlane(t), nil
	case Quaternion:
		return FromQuaternion(t), nil
	}
	return Variant{}, fmt.Errorf("%w: no kind for %T", ErrIncompatible, x)
}

// Convert returns v re-tagged as kind k.
//
// Scalars convert numerically (bool is 0/1, numbers are true when non-zero).
// Composite kinds convert component-wise between each other: missing
// components are zero and extra ones are dropped. Scalars and composites
// never convert into each other.
func Convert(v Variant, k Kind) (Variant, error) {
	if !k.Valid() {
		return Variant{}, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	if !v.IsValid() {
		return Variant{}, fmt.Errorf("%w: invalid source", ErrIncompatible)
	}
	if v.kind == k {
		return v, nil
	}

	if v.kind.IsComposite() || k.IsComposite() {
		if !v.kind.IsComposite() || !k.IsComposite() {
			return Variant{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, v.kind, k)
		}
		c := v.comps()
		for i := k.Components(); i < 4; i++ {
			c[i] = 0
		}
		return composite(k, fromComponents(k, c)), nil
	}

	switch {
	case k == KindBool:
		return Bool(v.AsBool()), nil
	case k.IsFloat():
		f, _ := v.AsFloat64()
		if k == KindFloat32 {
			return Float32(float32(f)), nil
		}
		return Float64(f), nil
	case k.IsUnsigned() && v.kind.IsUnsigned():
		u, _ := v.AsUint64()
		return fromInteger(k, int64(u), u), nil
	default:
		i, _ := v.AsInt64()
		if v.kind.IsFloat() {
			f, _ := v.AsFloat64()
			if k.IsUnsigned() && f >= 0 {
				return fromInteger(k, i, uint64(f)), nil
			}
		}
		return fromInteger(k, i, uint64(i)), nil
	}
}

func fromInteger(k Kind, i int64, u uint64) Variant {
	switch k {
	case KindChar:
		return Char(rune(i))
	case KindInt8:
		return Int8(int8(i))
	case KindUInt8:
		return UInt8(uint8(u))
	case KindInt16:
		return Int16(int16(i))
	case KindUInt16:
		return UInt16(uint16(u))
	case KindInt32:
		return Int32(int32(i))
	case KindUInt32:
		return UInt32(uint32(u))
	case KindUInt64:
		return UInt64(u)
	}
	return Int64(i)
}

// Parse builds a Variant of kind k from a loosely typed value as produced by
// encoding/json, yaml.v3 or mapstructure: numbers of any width, numeric and
// boolean strings, single-rune strings for Char, lists or maps for composites.
func Parse(k Kind, raw any) (Variant, error) {
	if !k.Valid() {
		return Variant{}, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	if raw == nil {
		return Default(k), nil
	}

	if k.IsComposite() {
		return parseComposite(k, raw)
	}

	switch t := raw.(type) {
	case json.Number:
		return parseScalarString(k, t.String())
	case string:
		return parseScalarString(k, t)
	}

	v, err := From(raw)
	if err != nil {
		return Variant{}, fmt.Errorf("parse %s: %w", k, err)
	}
	if v.kind.IsComposite() {
		return Variant{}, fmt.Errorf("%w: %s to %s", ErrIncompatible, v.kind, k)
	}
	if (k.IsInteger() || k == KindChar) && !fitsInteger(k, v) {
		return Variant{}, fmt.Errorf("%w: %v is not a %s", ErrIncompatible, raw, k)
	}
	return Convert(v, k)
}

// fitsInteger reports whether the numeric value of v is a whole number in
// the range of integer kind k.
func fitsInteger(k Kind, v Variant) bool {
	bits := bitSize(k)
	switch {
	case v.kind.IsFloat():
		f, _ := v.AsFloat64()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return false
		}
		if k.IsUnsigned() {
			return f >= 0 && f < math.Ldexp(1, bits)
		}
		return f >= -math.Ldexp(1, bits-1) && f < math.Ldexp(1, bits-1)
	case v.kind.IsUnsigned():
		u, _ := v.AsUint64()
		if k.IsUnsigned() {
			return bits == 64 || u < uint64(1)<<bits
		}
		return u <= uint64(1)<<(bits-1)-1
	case v.kind.IsInteger():
		i, _ := v.AsInt64()
		if k.IsUnsigned() {
			return i >= 0 && (bits == 64 || uint64(i) < uint64(1)<<bits)
		}
		if bits == 64 {
			return true
		}
		return i >= -(int64(1)<<(bits-1)) && i <= int64(1)<<(bits-1)-1
	}
	return true
}

func parseScalarString(k Kind, s string) (Variant, error) {
	s = strings.TrimSpace(s)
	switch {
	case k == KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return Variant{}, fmt.Errorf("%w: %q is not a bool", ErrIncompatible, s)
		}
		return Bool(b), nil
	case k == KindChar:
		if utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return Char(r), nil
		}
		i, err := strconv.ParseInt(s, 0, 32)
		if err != nil {
			return Variant{}, fmt.Errorf("%w: %q is not a char", ErrIncompatible, s)
		}
		return Char(rune(i)), nil
	case k.IsFloat():
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Variant{}, fmt.Errorf("%w: %q is not a number", ErrIncompatible, s)
		}
		if k == KindFloat32 {
			return Float32(float32(f)), nil
		}
		return Float64(f), nil
	case k.IsUnsigned():
		u, err := strconv.ParseUint(s, 0, bitSize(k))
		if err != nil {
			return Variant{}, fmt.Errorf("%w: %q is not a %s", ErrIncompatible, s, k)
		}
		return fromInteger(k, int64(u), u), nil
	default:
		i, err := strconv.ParseInt(s, 0, bitSize(k))
		if err != nil {
			return Variant{}, fmt.Errorf("%w: %q is not a %s", ErrIncompatible, s, k)
		}
		return fromInteger(k, i, uint64(i)), nil
	}
}

func bitSize(k Kind) int {
	switch k {
	case KindInt8, KindUInt8:
		return 8
	case KindInt16, KindUInt16:
		return 16
	case KindInt32, KindUInt32, KindChar:
		return 32
	}
	return 64
}

func parseComposite(k Kind, raw any) (Variant, error) {
	switch t := raw.(type) {
	case Vector2, Vector3, Vector4, Plane, Quaternion:
		v, _ := From(t)
		return Convert(v, k)
	case []float32:
		return compositeFromList(k, len(t), func(i int) (any, bool) { return t[i], true })
	case []float64:
		return compositeFromList(k, len(t), func(i int) (any, bool) { return t[i], true })
	case []any:
		return compositeFromList(k, len(t), func(i int) (any, bool) { return t[i], true })
	case map[string]any:
		return compositeFromMap(k, t)
	}
	return Variant{}, fmt.Errorf("%w: cannot read %s from %T", ErrIncompatible, k, raw)
}

func compositeFromList(k Kind, n int, at func(int) (any, bool)) (Variant, error) {
	if n > k.Components() {
		return Variant{}, fmt.Errorf("%w: %s takes %d components, got %d", ErrIncompatible, k, k.Components(), n)
	}
	var c [4]float32
	for i := 0; i < n; i++ {
		raw, _ := at(i)
		f, err := Parse(KindFloat32, raw)
		if err != nil {
			return Variant{}, fmt.Errorf("component %d: %w", i, err)
		}
		c[i] = f.f32(0)
	}
	return composite(k, fromComponents(k, c)), nil
}

func compositeFromMap(k Kind, m map[string]any) (Variant, error) {
	var c [4]float32
	read := func(i int, key string, src map[string]any) error {
		raw, ok := src[key]
		if !ok {
			return nil
		}
		f, err := Parse(KindFloat32, raw)
		if err != nil {
			return fmt.Errorf("component %s: %w", key, err)
		}
		c[i] = f.f32(0)
		return nil
	}

	src := m
	keys := []string{"x", "y", "z", "w"}
	if k == KindPlane {
		if normal, ok := m["normal"].(map[string]any); ok {
			src = normal
		}
		if err := read(3, "d", m); err != nil {
			return Variant{}, err
		}
		keys = keys[:3]
	}
	for i, key := range keys[:min(len(keys), k.Components())] {
		if err := read(i, key, src); err != nil {
			return Variant{}, err
		}
	}
	return composite(k, fromComponents(k, c)), nil
}

// Number returns the scalar value of v widened for comparison: integers are
// exact in i (or u for unsigned kinds), everything numeric is also in f.
type Number struct {
	Kind     Kind
	Int      int64
	Uint     uint64
	Float    float64
	Integral bool
}

// NumberOf widens a scalar variant. Composites report ok=false.
func NumberOf(v Variant) (Number, bool) {
	if !v.IsValid() || v.kind.IsComposite() {
		return Number{}, false
	}
	f, _ := v.AsFloat64()
	n := Number{Kind: v.kind, Float: f, Integral: !v.kind.IsFloat()}
	if v.kind.IsUnsigned() {
		n.Uint, _ = v.AsUint64()
		n.Int = int64(n.Uint)
	} else {
		n.Int, _ = v.AsInt64()
		n.Uint = uint64(n.Int)
	}
	return n, true
}

// Compare orders two numbers: -1, 0 or +1. NaN compares unequal to
// everything and reports ok=false.
func (a Number) Compare(b Number) (int, bool) {
	if a.Integral && b.Integral {
		aNeg := !a.Kind.IsUnsigned() && a.Int < 0
		bNeg := !b.Kind.IsUnsigned() && b.Int < 0
		switch {
		case aNeg && !bNeg:
			return -1, true
		case !aNeg && bNeg:
			return 1, true
		case aNeg && bNeg:
			return cmpOrdered(a.Int, b.Int), true
		default:
			return cmpOrdered(a.Uint, b.Uint), true
		}
	}
	if math.IsNaN(a.Float) || math.IsNaN(b.Float) {
		return 0, false
	}
	return cmpOrdered(a.Float, b.Float), true
}

func cmpOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
