package runtime

import (
	"errors"
	"fmt"
)

var (
	// ErrForeignPort is returned when a connection names a port whose node is
	// not part of the graph.
	ErrForeignPort = errors.New("port does not belong to graph")
	// ErrNilNode is returned when adding a nil node.
	ErrNilNode = errors.New("nil node")
)

// Connection joins a specific output port to a specific input port.
type Connection struct {
	From *OutputPort
	To   *InputPort
}

// Graph is an executable graph produced by the builder.
type Graph struct {
	Name string

	entry       *EntryNode
	ids         map[string]Node
	order       []string
	nodes       []Node
	connections []*Connection
	outgoing    map[*OutputPort][]*Connection
	variables   *Variables
}

// NewGraph creates an empty graph holding only its entry node.
func NewGraph(name string) *Graph {
	g := &Graph{
		Name:      name,
		entry:     newEntry(),
		ids:       make(map[string]Node),
		outgoing:  make(map[*OutputPort][]*Connection),
		variables: NewVariables(),
	}
	g.adopt(g.entry)
	g.nodes = append(g.nodes, g.entry)
	return g
}

// EntryNode returns the canonical entry of g.
func (g *Graph) EntryNode() *EntryNode { return g.entry }

// Variables returns the variable store of g.
func (g *Graph) Variables() *Variables { return g.variables }

func (g *Graph) adopt(n Node) {
	for _, p := range n.InputPorts() {
		p.owner = n
	}
	for _, p := range n.OutputPorts() {
		p.owner = n
	}
}

func (g *Graph) contains(n Node) bool {
	for _, existing := range g.nodes {
		if existing == n {
			return true
		}
	}
	return false
}

// AddNode registers n under id. Registering an id again rebinds it to the new
// node, drops the previous node unless another id still refers to it, and
// reports replaced. The same node may be registered under several ids.
func (g *Graph) AddNode(id string, n Node) (replaced bool, err error) {
	if n == nil {
		return false, fmt.Errorf("%w: %q", ErrNilNode, id)
	}
	prev, replaced := g.ids[id]
	if !replaced {
		g.order = append(g.order, id)
	}
	g.ids[id] = n
	if !g.contains(n) {
		g.adopt(n)
		g.nodes = append(g.nodes, n)
	}
	if replaced && prev != n {
		g.release(prev)
	}
	return replaced, nil
}

// release forgets prev once no id refers to it. The entry is never released.
func (g *Graph) release(prev Node) {
	if prev == Node(g.entry) {
		return
	}
	for _, n := range g.ids {
		if n == prev {
			return
		}
	}
	for i, n := range g.nodes {
		if n == prev {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// Node returns the node registered under id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.ids[id]
	return n, ok
}

// IDs returns the registered ids in registration order.
func (g *Graph) IDs() []string { return append([]string(nil), g.order...) }

// Nodes returns every distinct node, the entry first, in registration order.
func (g *Graph) Nodes() []Node { return append([]Node(nil), g.nodes...) }

// AddConnection wires from to to. Both ports must belong to nodes of g.
func (g *Graph) AddConnection(from *OutputPort, to *InputPort) (*Connection, error) {
	if from == nil || to == nil || from.owner == nil || to.owner == nil ||
		!g.contains(from.owner) || !g.contains(to.owner) {
		return nil, ErrForeignPort
	}
	c := &Connection{From: from, To: to}
	g.connections = append(g.connections, c)
	g.outgoing[from] = append(g.outgoing[from], c)
	return c, nil
}

// Connections returns every connection in insertion order.
func (g *Graph) Connections() []*Connection {
	return append([]*Connection(nil), g.connections...)
}

// Next returns the input ports reached from p.
func (g *Graph) Next(p *OutputPort) []*InputPort {
	out := make([]*InputPort, 0, len(g.outgoing[p]))
	for _, c := range g.outgoing[p] {
		out = append(out, c.To)
	}
	return out
}

// IDOf returns the first id under which n was registered.
func (g *Graph) IDOf(n Node) (string, bool) {
	for _, id := range g.order {
		if g.ids[id] == n {
			return id, true
		}
	}
	return "", false
}
