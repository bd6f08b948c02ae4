package dsl

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/adapters/memory"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/variant"
)

// Builder manages the graph construction.
type Builder struct {
	graph domain.Graph
	order []string
	nodes map[string]*NodeBuilder
	// pending connections in declaration order
	connections []domain.Connection
}

// New creates a new graph builder.
func New(name string) *Builder {
	return &Builder{
		graph: domain.Graph{Name: name},
		nodes: make(map[string]*NodeBuilder),
	}
}

// Describe sets the graph description.
func (b *Builder) Describe(description string) *Builder {
	b.graph.Description = description
	return b
}

// Variable declares a graph variable. values are its initial contents.
func (b *Builder) Variable(name string, kind variant.Kind, values ...any) *Builder {
	b.graph.Variables = append(b.graph.Variables, domain.Variable{Name: name, Kind: kind, Values: values})
	return b
}

// Array declares an array variable.
func (b *Builder) Array(name string, kind variant.Kind, values ...any) *Builder {
	b.graph.Variables = append(b.graph.Variables, domain.Variable{Name: name, Kind: kind, IsArray: true, Values: values})
	return b
}

// Add creates a new node in the graph.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(id string, category domain.Category) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.Node{ID: id, Category: category},
		builder: b,
	}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	return nb
}

// Entry adds an entry node.
func (b *Builder) Entry(id string) *NodeBuilder { return b.Add(id, domain.CategoryEntry) }

// Exit adds an exit node.
func (b *Builder) Exit(id string) *NodeBuilder { return b.Add(id, domain.CategoryExit) }

// Action adds an action node of the given runtime type.
func (b *Builder) Action(id, typeID string) *NodeBuilder {
	return b.Add(id, domain.CategoryAction).Type(typeID)
}

// Condition adds a condition node of the given runtime type.
func (b *Builder) Condition(id, typeID string) *NodeBuilder {
	return b.Add(id, domain.CategoryCondition).Type(typeID)
}

// State adds a state node of the given runtime type.
func (b *Builder) State(id, typeID string) *NodeBuilder {
	return b.Add(id, domain.CategoryState).Type(typeID)
}

// Connect joins an output port to an input port.
func (b *Builder) Connect(from string, fromPort int, to string, toPort int) *Builder {
	b.connections = append(b.connections, domain.Connection{
		From: domain.Endpoint{NodeID: from, Port: fromPort},
		To:   domain.Endpoint{NodeID: to, Port: toPort},
	})
	return b
}

// Build returns the serialized graph. Connections may reference nodes that
// were never added; the graph builder drops those with a warning.
func (b *Builder) Build() (*domain.Graph, error) {
	g := b.graph
	g.Nodes = make([]domain.Node, 0, len(b.order))
	for _, id := range b.order {
		if id == "" {
			return nil, fmt.Errorf("node without id")
		}
		g.Nodes = append(g.Nodes, b.nodes[id].node)
	}
	g.Connections = append([]domain.Connection(nil), b.connections...)
	g.Variables = append([]domain.Variable(nil), b.graph.Variables...)
	return &g, nil
}

// Loader builds the graph into an in-memory store keyed by the graph name.
func (b *Builder) Loader() (*memory.Store, error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	loader, err := memory.NewFromGraphs(g)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
