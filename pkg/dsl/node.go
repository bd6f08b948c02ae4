package dsl

import (
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/runtime"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node    domain.Node
	builder *Builder
}

// Type sets the runtime type id.
func (n *NodeBuilder) Type(typeID string) *NodeBuilder {
	n.node.RuntimeTypeID = typeID
	return n
}

// Title sets the display title.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.node.Title = title
	return n
}

// At sets the editor position.
func (n *NodeBuilder) At(x, y float64) *NodeBuilder {
	n.node.Position = domain.Position{X: x, Y: y}
	return n
}

// With sets one construction argument.
func (n *NodeBuilder) With(param string, value any) *NodeBuilder {
	if n.node.CustomData == nil {
		n.node.CustomData = make(map[string]any)
	}
	n.node.CustomData[param] = value
	return n
}

// Bind feeds input property index from r.
func (n *NodeBuilder) Bind(index int, r resolver.Resolver) *NodeBuilder {
	n.node.Properties = append(n.node.Properties, domain.NodeProperty{Direction: domain.Input, Index: index, Resolver: r})
	return n
}

// Output writes output variable index into the graph variable named variable.
func (n *NodeBuilder) Output(index int, variable string) *NodeBuilder {
	n.node.Properties = append(n.node.Properties, domain.NodeProperty{Direction: domain.Output, Index: index, Resolver: resolver.Var(variable)})
	return n
}

// Port connects output port to input 0 of target.
func (n *NodeBuilder) Port(port int, target string) *NodeBuilder {
	n.builder.Connect(n.node.ID, port, target, 0)
	return n
}

// Go connects the single output (entry, action) to target.
func (n *NodeBuilder) Go(target string) *NodeBuilder { return n.Port(0, target) }

// True connects the True output of a condition to target.
func (n *NodeBuilder) True(target string) *NodeBuilder { return n.Port(0, target) }

// False connects the False output of a condition to target.
func (n *NodeBuilder) False(target string) *NodeBuilder { return n.Port(1, target) }

// OnActivate connects the OnActivate output of a state to target.
func (n *NodeBuilder) OnActivate(target string) *NodeBuilder {
	return n.Port(runtime.StateOnActivate, target)
}

// OnDeactivate connects the OnDeactivate output of a state to target.
func (n *NodeBuilder) OnDeactivate(target string) *NodeBuilder {
	return n.Port(runtime.StateOnDeactivate, target)
}

// OnAbort connects the OnAbort output of a state to target.
func (n *NodeBuilder) OnAbort(target string) *NodeBuilder {
	return n.Port(runtime.StateOnAbort, target)
}

// Subgraph connects the Subgraph output of a state to target.
func (n *NodeBuilder) Subgraph(target string) *NodeBuilder {
	return n.Port(runtime.StateSubgraph, target)
}

// Node returns the underlying domain.Node.
func (n *NodeBuilder) Node() domain.Node {
	return n.node
}
