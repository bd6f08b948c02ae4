package registry

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/aretw0/statescript/pkg/variant"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidArgument is returned when construction data cannot be converted
// to a parameter's kind.
var ErrInvalidArgument = errors.New("invalid constructor argument")

// Key is a string naming something in the host domain (an attribute set, a
// tag, an event). It is kept distinct from free text so that editors can
// offer a picker for it.
type Key string

// PlaceholderKey is passed for Key parameters when building catalog instances.
const PlaceholderKey Key = "placeholder"

// ParamKind is the declared kind of a constructor parameter.
type ParamKind uint8

const (
	ParamAny ParamKind = iota
	ParamString
	ParamBool
	ParamInt8
	ParamUInt8
	ParamInt16
	ParamUInt16
	ParamInt32
	ParamUInt32
	ParamInt64
	ParamUInt64
	ParamFloat32
	ParamFloat64
	ParamKey
)

var paramVariantKinds = map[ParamKind]variant.Kind{
	ParamBool:    variant.KindBool,
	ParamInt8:    variant.KindInt8,
	ParamUInt8:   variant.KindUInt8,
	ParamInt16:   variant.KindInt16,
	ParamUInt16:  variant.KindUInt16,
	ParamInt32:   variant.KindInt32,
	ParamUInt32:  variant.KindUInt32,
	ParamInt64:   variant.KindInt64,
	ParamUInt64:  variant.KindUInt64,
	ParamFloat32: variant.KindFloat32,
	ParamFloat64: variant.KindFloat64,
}

var paramNames = [...]string{
	ParamAny:     "any",
	ParamString:  "string",
	ParamBool:    "bool",
	ParamInt8:    "int8",
	ParamUInt8:   "uint8",
	ParamInt16:   "int16",
	ParamUInt16:  "uint16",
	ParamInt32:   "int32",
	ParamUInt32:  "uint32",
	ParamInt64:   "int64",
	ParamUInt64:  "uint64",
	ParamFloat32: "float32",
	ParamFloat64: "float64",
	ParamKey:     "key",
}

func (k ParamKind) String() string {
	if int(k) < len(paramNames) {
		return paramNames[k]
	}
	return fmt.Sprintf("param(%d)", uint8(k))
}

// Param declares one constructor parameter.
type Param struct {
	Name string
	Kind ParamKind
	// Type is the target of the generic conversion used by ParamAny. When nil
	// the raw value is passed through unchanged.
	Type reflect.Type
}

// Zero returns the value substituted when construction data omits p.
func (p Param) Zero() any {
	switch p.Kind {
	case ParamString:
		return ""
	case ParamKey:
		return Key("")
	case ParamAny:
		if p.Type == nil {
			return nil
		}
		return reflect.Zero(p.Type).Interface()
	}
	return variant.Default(paramVariantKinds[p.Kind]).Native()
}

// Placeholder returns the value used when building a throwaway catalog
// instance: zero for value kinds, empty for strings, PlaceholderKey for keys
// and nil for everything else.
func (p Param) Placeholder() any {
	switch p.Kind {
	case ParamKey:
		return PlaceholderKey
	case ParamAny:
		return nil
	}
	return p.Zero()
}

// Convert turns a raw construction data value into p's kind.
func (p Param) Convert(raw any) (any, error) {
	if raw == nil {
		return p.Zero(), nil
	}
	switch p.Kind {
	case ParamString:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return weakString(raw)
	case ParamKey:
		if k, ok := raw.(Key); ok {
			return k, nil
		}
		s, err := weakString(raw)
		if err != nil {
			return nil, err
		}
		return Key(s), nil
	case ParamAny:
		if p.Type == nil {
			return raw, nil
		}
		out := reflect.New(p.Type)
		if err := decode(raw, out.Interface()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, p.Name, err)
		}
		return out.Elem().Interface(), nil
	}

	k, ok := paramVariantKinds[p.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s has unknown kind %s", ErrInvalidArgument, p.Name, p.Kind)
	}
	v, err := variant.Parse(k, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, p.Name, err)
	}
	return v.Native(), nil
}

func weakString(raw any) (string, error) {
	var s string
	if err := decode(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return s, nil
}

func decode(input, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           output,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// Args carries converted constructor arguments keyed by parameter name.
type Args map[string]any

// Decode fills the struct pointed to by out. Fields match parameter names
// through `mapstructure` tags or case-insensitive field names.
func (a Args) Decode(out any) error {
	if err := decode(map[string]any(a), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// String returns the string argument name, or "".
func (a Args) String(name string) string {
	switch v := a[name].(type) {
	case string:
		return v
	case Key:
		return string(v)
	}
	return ""
}

// Key returns the key argument name, or "".
func (a Args) Key(name string) Key {
	switch v := a[name].(type) {
	case Key:
		return v
	case string:
		return Key(v)
	}
	return ""
}

// Bool returns the bool argument name, or false.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Float returns a numeric argument widened to float64, or 0.
func (a Args) Float(name string) float64 {
	v, err := variant.From(a[name])
	if err != nil {
		return 0
	}
	f, _ := v.AsFloat64()
	return f
}

// Int returns a numeric argument widened to int64, or 0.
func (a Args) Int(name string) int64 {
	v, err := variant.From(a[name])
	if err != nil {
		return 0
	}
	i, _ := v.AsInt64()
	return i
}
