package variant

import (
	"fmt"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind tags the payload stored in a Variant.
type Kind uint8

const (
	// Invalid is the zero Kind. It never appears on a well-formed Variant.
	Invalid Kind = iota
	KindBool
	KindChar
	KindInt8
	KindUInt8
	KindInt16
	KindUInt16
	KindInt32
	KindUInt32
	KindInt64
	KindUInt64
	KindFloat32
	KindFloat64
	KindVector2
	KindVector3
	KindVector4
	KindPlane
	KindQuaternion
)

var kindNames = [...]string{
	Invalid:        "invalid",
	KindBool:       "bool",
	KindChar:       "char",
	KindInt8:       "int8",
	KindUInt8:      "uint8",
	KindInt16:      "int16",
	KindUInt16:     "uint16",
	KindInt32:      "int32",
	KindUInt32:     "uint32",
	KindInt64:      "int64",
	KindUInt64:     "uint64",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindVector2:    "vector2",
	KindVector3:    "vector3",
	KindVector4:    "vector4",
	KindPlane:      "plane",
	KindQuaternion: "quaternion",
}

// Aliases accepted by ParseKind in addition to the canonical names.
var kindAliases = map[string]Kind{
	"boolean": KindBool,
	"byte":    KindUInt8,
	"sbyte":   KindInt8,
	"short":   KindInt16,
	"ushort":  KindUInt16,
	"int":     KindInt32,
	"uint":    KindUInt32,
	"long":    KindInt64,
	"ulong":   KindUInt64,
	"float":   KindFloat32,
	"double":  KindFloat64,
	"rune":    KindChar,
}

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames)-1)
	for k := KindBool; k <= KindQuaternion; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k >= KindBool && k <= KindQuaternion
}

// IsInteger reports whether k is a signed or unsigned integer kind.
func (k Kind) IsInteger() bool {
	return k >= KindInt8 && k <= KindUInt64
}

// IsUnsigned reports whether k is an unsigned integer kind.
func (k Kind) IsUnsigned() bool {
	switch k {
	case KindUInt8, KindUInt16, KindUInt32, KindUInt64:
		return true
	}
	return false
}

// IsFloat reports whether k is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// IsNumeric reports whether k is an integer or floating point kind.
// Bool and Char are not numeric.
func (k Kind) IsNumeric() bool {
	return k.IsInteger() || k.IsFloat()
}

// IsComposite reports whether k is one of the multi-component float kinds.
func (k Kind) IsComposite() bool {
	return k >= KindVector2 && k <= KindQuaternion
}

// Components returns the number of float32 components of a composite kind, or 1.
func (k Kind) Components() int {
	switch k {
	case KindVector2:
		return 2
	case KindVector3:
		return 3
	case KindVector4, KindPlane, KindQuaternion:
		return 4
	}
	return 1
}

// ParseKind resolves a kind by its canonical name or a common alias.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if k != int(Invalid) && n == name {
			return Kind(k), nil
		}
	}
	if k, ok := kindAliases[name]; ok {
		return k, nil
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (k Kind) MarshalYAML() (any, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return k.UnmarshalText([]byte(s))
}

// VariantType is the wildcard native type: every kind is compatible with it.
var VariantType = reflect.TypeOf(Variant{})

var nativeTypes = [...]reflect.Type{
	KindBool:       reflect.TypeOf(false),
	KindChar:       reflect.TypeOf(rune(0)),
	KindInt8:       reflect.TypeOf(int8(0)),
	KindUInt8:      reflect.TypeOf(uint8(0)),
	KindInt16:      reflect.TypeOf(int16(0)),
	KindUInt16:     reflect.TypeOf(uint16(0)),
	KindInt32:      reflect.TypeOf(int32(0)),
	KindUInt32:     reflect.TypeOf(uint32(0)),
	KindInt64:      reflect.TypeOf(int64(0)),
	KindUInt64:     reflect.TypeOf(uint64(0)),
	KindFloat32:    reflect.TypeOf(float32(0)),
	KindFloat64:    reflect.TypeOf(float64(0)),
	KindVector2:    reflect.TypeOf(Vector2{}),
	KindVector3:    reflect.TypeOf(Vector3{}),
	KindVector4:    reflect.TypeOf(Vector4{}),
	KindPlane:      reflect.TypeOf(Plane{}),
	KindQuaternion: reflect.TypeOf(Quaternion{}),
}

// NativeType returns the Go type that carries values of kind k.
// Char and Int32 share int32 because rune is an alias of int32.
func NativeType(k Kind) reflect.Type {
	if !k.Valid() {
		return nil
	}
	return nativeTypes[k]
}

// KindOf maps a Go type back to its kind. int32 resolves to KindInt32, never
// KindChar. The platform sized int and uint are accepted as Int64 and UInt64.
func KindOf(t reflect.Type) (Kind, bool) {
	if t == nil {
		return Invalid, false
	}
	switch t {
	case reflect.TypeOf(int(0)):
		return KindInt64, true
	case reflect.TypeOf(uint(0)):
		return KindUInt64, true
	}
	for k := KindBool; k <= KindQuaternion; k++ {
		if k == KindChar {
			continue
		}
		if nativeTypes[k] == t {
			return k, true
		}
	}
	return Invalid, false
}

// IsCompatible reports whether a value of kind k can feed a slot expecting
// the native type expected. The wildcard VariantType accepts every kind.
func IsCompatible(expected reflect.Type, k Kind) bool {
	if expected == nil || !k.Valid() {
		return false
	}
	if expected == VariantType {
		return true
	}
	return nativeTypes[k] == expected
}
