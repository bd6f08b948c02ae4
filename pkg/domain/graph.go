package domain

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/variant"
)

// Graph is the serialized form of a Statescript behavior.
type Graph struct {
	Name        string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []Node       `json:"nodes" yaml:"nodes"`
	Connections []Connection `json:"connections,omitempty" yaml:"connections,omitempty"`
	Variables   []Variable   `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Endpoint is one side of a connection.
type Endpoint struct {
	NodeID string `json:"node" yaml:"node"`
	Port   int    `json:"port" yaml:"port"`
}

func (e Endpoint) String() string { return fmt.Sprintf("%s:%d", e.NodeID, e.Port) }

// Connection joins an output port of From to an input port of To.
type Connection struct {
	From Endpoint `json:"from" yaml:"from"`
	To   Endpoint `json:"to" yaml:"to"`
}

func (c Connection) String() string { return c.From.String() + " -> " + c.To.String() }

// Variable is a graph scoped, typed storage slot. Its kind is fixed at creation.
type Variable struct {
	Name    string       `json:"name" yaml:"name"`
	Kind    variant.Kind `json:"kind" yaml:"kind"`
	IsArray bool         `json:"array,omitempty" yaml:"array,omitempty"`
	Values  []any        `json:"values,omitempty" yaml:"values,omitempty"`
}

// Initial parses the initial value(s) of v. A scalar variable without values
// starts at the kind's default; an array variable starts empty.
func (v Variable) Initial() ([]variant.Variant, error) {
	if !v.Kind.Valid() {
		return nil, fmt.Errorf("variable %q: %w", v.Name, variant.ErrUnknownKind)
	}
	if len(v.Values) == 0 {
		if v.IsArray {
			return nil, nil
		}
		return []variant.Variant{variant.Default(v.Kind)}, nil
	}
	values := v.Values
	if !v.IsArray {
		values = values[:1]
	}
	out := make([]variant.Variant, 0, len(values))
	for i, raw := range values {
		parsed, err := variant.Parse(v.Kind, raw)
		if err != nil {
			return nil, fmt.Errorf("variable %q value %d: %w", v.Name, i, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

// Node returns the first node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i], true
		}
	}
	return nil, false
}

// Variable returns the variable with the given name.
func (g *Graph) Variable(name string) (*Variable, bool) {
	for i := range g.Variables {
		if g.Variables[i].Name == name {
			return &g.Variables[i], true
		}
	}
	return nil, false
}

// VariableKind reports the declared kind of a variable. It lets a Graph act
// as the variable scope for resolver compatibility checks.
func (g *Graph) VariableKind(name string) (variant.Kind, bool) {
	v, ok := g.Variable(name)
	if !ok {
		return variant.Invalid, false
	}
	return v.Kind, true
}

// Entries returns the ids of every Entry node in declaration order.
func (g *Graph) Entries() []string {
	var ids []string
	for _, n := range g.Nodes {
		if n.Category == CategoryEntry {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Entry returns the id of the single Entry node.
func (g *Graph) Entry() (string, error) {
	ids := g.Entries()
	switch len(ids) {
	case 0:
		return "", ErrNoEntry
	case 1:
		return ids[0], nil
	}
	return ids[0], fmt.Errorf("%w: %v", ErrMultipleEntries, ids)
}

// Clone returns a deep copy of the graph structure. Construction data maps
// are copied one level deep.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Name:        g.Name,
		Description: g.Description,
		Nodes:       make([]Node, len(g.Nodes)),
		Connections: append([]Connection(nil), g.Connections...),
		Variables:   make([]Variable, len(g.Variables)),
	}
	for i, n := range g.Nodes {
		if n.CustomData != nil {
			data := make(map[string]any, len(n.CustomData))
			for k, v := range n.CustomData {
				data[k] = v
			}
			n.CustomData = data
		}
		n.Properties = append([]NodeProperty(nil), n.Properties...)
		out.Nodes[i] = n
	}
	for i, v := range g.Variables {
		v.Values = append([]any(nil), v.Values...)
		out.Variables[i] = v
	}
	return out
}
