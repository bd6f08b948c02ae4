package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/variant"
)

// Spec is the serialized form of a resolver tree. Only the fields relevant
// to Type are set.
type Spec struct {
	Type      Type   `json:"type" yaml:"type"`
	Kind      string `json:"kind,omitempty" yaml:"kind,omitempty"`
	Value     any    `json:"value,omitempty" yaml:"value,omitempty"`
	Name      string `json:"name,omitempty" yaml:"name,omitempty"`
	Set       string `json:"set,omitempty" yaml:"set,omitempty"`
	Attribute string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Op        string `json:"op,omitempty" yaml:"op,omitempty"`
	Left      *Spec  `json:"left,omitempty" yaml:"left,omitempty"`
	Right     *Spec  `json:"right,omitempty" yaml:"right,omitempty"`
}

// UnmarshalJSON keeps numeric literals exact so that 64-bit constants
// survive the round trip.
func (s *Spec) UnmarshalJSON(data []byte) error {
	type plain Spec
	var raw struct {
		plain
		Value json.RawMessage `json:"value,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Spec(raw.plain)
	s.Value = nil
	if len(raw.Value) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw.Value))
	dec.UseNumber()
	return dec.Decode(&s.Value)
}

// ToSpec serializes r. A nil resolver yields a nil Spec.
func ToSpec(r Resolver) (*Spec, error) {
	return toSpec(r, nil)
}

func toSpec(r Resolver, path []*Comparison) (*Spec, error) {
	switch t := r.(type) {
	case nil:
		return nil, nil
	case *Constant:
		if t == nil {
			return nil, nil
		}
		if !t.Value.IsValid() {
			return nil, fmt.Errorf("constant: %w", variant.ErrUnknownKind)
		}
		value := t.Value.Native()
		if t.Value.Kind() == variant.KindChar {
			value = string(value.(rune))
		}
		return &Spec{Type: TypeConstant, Kind: t.Value.Kind().String(), Value: value}, nil
	case *VariableRef:
		if t == nil {
			return nil, nil
		}
		return &Spec{Type: TypeVariable, Name: t.Name}, nil
	case *AttributeRef:
		if t == nil {
			return nil, nil
		}
		return &Spec{Type: TypeAttribute, Set: t.Set, Attribute: t.Attribute}, nil
	case *TagRef:
		if t == nil {
			return nil, nil
		}
		return &Spec{Type: TypeTag, Tag: t.Tag}, nil
	case *Comparison:
		if t == nil {
			return nil, nil
		}
		for _, seen := range path {
			if seen == t {
				return nil, ErrCycle
			}
		}
		if len(path) >= MaxDepth {
			return nil, fmt.Errorf("%w: nesting deeper than %d", ErrCycle, MaxDepth)
		}
		path = append(path, t)
		left, err := toSpec(t.Left, path)
		if err != nil {
			return nil, err
		}
		right, err := toSpec(t.Right, path)
		if err != nil {
			return nil, err
		}
		return &Spec{Type: TypeComparison, Op: t.Op.String(), Left: left, Right: right}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownResolver, r)
}

// Resolver decodes s into a resolver tree. A nil Spec is an unbound property.
func (s *Spec) Resolver() (Resolver, error) {
	return s.resolver(0)
}

func (s *Spec) resolver(depth int) (Resolver, error) {
	if s == nil {
		return nil, nil
	}
	if depth > MaxDepth {
		return nil, fmt.Errorf("%w: nesting deeper than %d", ErrCycle, MaxDepth)
	}
	switch Type(strings.ToLower(string(s.Type))) {
	case TypeConstant:
		v, err := s.constant()
		if err != nil {
			return nil, fmt.Errorf("constant: %w", err)
		}
		return NewConstant(v), nil
	case TypeVariable:
		return Var(s.Name), nil
	case TypeAttribute:
		return Attr(s.Set, s.Attribute), nil
	case TypeTag:
		return Tag(s.Tag), nil
	case TypeComparison:
		op, err := ParseOperator(s.Op)
		if err != nil {
			return nil, err
		}
		left, err := s.Left.resolver(depth + 1)
		if err != nil {
			return nil, fmt.Errorf("left: %w", err)
		}
		right, err := s.Right.resolver(depth + 1)
		if err != nil {
			return nil, fmt.Errorf("right: %w", err)
		}
		return Compare(left, op, right), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownResolver, s.Type)
}

func (s *Spec) constant() (variant.Variant, error) {
	if s.Kind != "" {
		k, err := variant.ParseKind(s.Kind)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.Parse(k, s.Value)
	}
	// Without a kind the literal decides: integers widen to int64, other
	// numbers to float64.
	switch t := s.Value.(type) {
	case nil:
		return variant.Variant{}, fmt.Errorf("%w: missing kind and value", variant.ErrUnknownKind)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return variant.Int64(i), nil
		}
		return variant.Parse(variant.KindFloat64, t)
	case string:
		return variant.Variant{}, fmt.Errorf("%w: string literal needs a kind", variant.ErrUnknownKind)
	}
	return variant.From(s.Value)
}
