package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aretw0/statescript/pkg/resolver"
	"gopkg.in/yaml.v3"
)

// Direction distinguishes input properties from output variables.
type Direction string

const (
	// Input properties feed values into a node.
	Input Direction = "input"
	// Output properties receive values written by a node.
	Output Direction = "output"
)

// Valid reports whether d is Input or Output.
func (d Direction) Valid() bool { return d == Input || d == Output }

// UnmarshalText normalizes the casing of a serialized direction.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed := Direction(strings.ToLower(strings.TrimSpace(string(text))))
	if !parsed.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, text)
	}
	*d = parsed
	return nil
}

// PropertyKey identifies a binding slot on a node.
type PropertyKey struct {
	Direction Direction `json:"direction" yaml:"direction"`
	Index     int       `json:"index" yaml:"index"`
}

func (k PropertyKey) String() string { return fmt.Sprintf("%s[%d]", k.Direction, k.Index) }

// NodeProperty binds one resolver to a property slot of a node.
type NodeProperty struct {
	Direction Direction
	Index     int
	Resolver  resolver.Resolver
}

// Key returns the slot p is bound to.
func (p NodeProperty) Key() PropertyKey { return PropertyKey{Direction: p.Direction, Index: p.Index} }

type propertyWire struct {
	Direction Direction      `json:"direction" yaml:"direction"`
	Index     int            `json:"index" yaml:"index"`
	Resolver  *resolver.Spec `json:"resolver,omitempty" yaml:"resolver,omitempty"`
}

func (p NodeProperty) wire() (propertyWire, error) {
	spec, err := resolver.ToSpec(p.Resolver)
	if err != nil {
		return propertyWire{}, fmt.Errorf("property %s: %w", p.Key(), err)
	}
	return propertyWire{Direction: p.Direction, Index: p.Index, Resolver: spec}, nil
}

func (p *NodeProperty) fromWire(w propertyWire) error {
	r, err := w.Resolver.Resolver()
	if err != nil {
		return fmt.Errorf("property %s[%d]: %w", w.Direction, w.Index, err)
	}
	*p = NodeProperty{Direction: w.Direction, Index: w.Index, Resolver: r}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p NodeProperty) MarshalJSON() ([]byte, error) {
	w, err := p.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *NodeProperty) UnmarshalJSON(data []byte) error {
	var w propertyWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return p.fromWire(w)
}

// MarshalYAML implements yaml.Marshaler.
func (p NodeProperty) MarshalYAML() (any, error) {
	return p.wire()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *NodeProperty) UnmarshalYAML(node *yaml.Node) error {
	var w propertyWire
	if err := node.Decode(&w); err != nil {
		return err
	}
	return p.fromWire(w)
}
