package runtime

import (
	"reflect"

	"github.com/aretw0/statescript/pkg/domain"
)

// Node is a live node of a runtime graph.
type Node interface {
	Category() domain.Category
	Description() string
	InputPorts() []*InputPort
	OutputPorts() []*OutputPort

	// InputProperties declares the slots that input bindings may target.
	InputProperties() []PropertyDescriptor
	// OutputVariables declares the slots that output bindings may target.
	OutputVariables() []PropertyDescriptor

	// Bindings holds the resolvers bound to the declared slots.
	Bindings() *Bindings
}

// PropertyDescriptor describes one input property or output variable slot.
type PropertyDescriptor struct {
	Label string
	// Type is the expected native type, or variant.VariantType for any kind.
	Type    reflect.Type
	IsArray bool
}

// InputPort receives control flow.
type InputPort struct {
	index int
	owner Node
}

// Index is the position of p in its node's InputPorts.
func (p *InputPort) Index() int { return p.index }

// Node returns the node p belongs to once it has been added to a graph.
func (p *InputPort) Node() Node { return p.owner }

// OutputPort emits control flow.
type OutputPort struct {
	index int
	owner Node
	// Subgraph marks a port that starts a nested flow instead of continuing.
	Subgraph bool
}

// Index is the position of p in its node's OutputPorts.
func (p *OutputPort) Index() int { return p.index }

// Node returns the node p belongs to once it has been added to a graph.
func (p *OutputPort) Node() Node { return p.owner }

// Base implements Node for embedding. Node libraries embed a Base built by
// one of the category constructors and declare their properties on it.
type Base struct {
	category    domain.Category
	description string
	inputs      []*InputPort
	outputs     []*OutputPort
	inProps     []PropertyDescriptor
	outVars     []PropertyDescriptor
	bindings    Bindings
}

// NewBase builds a node shell with the given port counts.
func NewBase(category domain.Category, inputs, outputs int, description string) Base {
	b := Base{
		category:    category,
		description: description,
		inputs:      make([]*InputPort, inputs),
		outputs:     make([]*OutputPort, outputs),
	}
	for i := range b.inputs {
		b.inputs[i] = &InputPort{index: i}
	}
	for i := range b.outputs {
		b.outputs[i] = &OutputPort{index: i}
	}
	return b
}

// Output ports of a Condition.
const (
	ConditionTrue = iota
	ConditionFalse
)

// Ports of a State.
const (
	StateBegin = iota
	StateAbort
)

const (
	StateOnActivate = iota
	StateOnDeactivate
	StateOnAbort
	StateSubgraph
)

// ActionBase is a one-in, one-out node.
func ActionBase(description string) Base {
	return NewBase(domain.CategoryAction, 1, 1, description)
}

// ConditionBase is a one-in node with True and False outputs.
func ConditionBase(description string) Base {
	return NewBase(domain.CategoryCondition, 1, 2, description)
}

// StateBase has Begin and Abort inputs and OnActivate, OnDeactivate,
// OnAbort and Subgraph outputs.
func StateBase(description string) Base {
	b := NewBase(domain.CategoryState, 2, 4, description)
	b.outputs[StateSubgraph].Subgraph = true
	return b
}

func (b *Base) Category() domain.Category             { return b.category }
func (b *Base) Description() string                   { return b.description }
func (b *Base) InputPorts() []*InputPort              { return b.inputs }
func (b *Base) OutputPorts() []*OutputPort            { return b.outputs }
func (b *Base) InputProperties() []PropertyDescriptor { return b.inProps }
func (b *Base) OutputVariables() []PropertyDescriptor { return b.outVars }
func (b *Base) Bindings() *Bindings                   { return &b.bindings }

// SetDescription replaces the description reported to the catalog.
func (b *Base) SetDescription(description string) { b.description = description }

// DeclareInput appends an input property slot and returns its index.
func (b *Base) DeclareInput(d PropertyDescriptor) int {
	b.inProps = append(b.inProps, d)
	return len(b.inProps) - 1
}

// DeclareOutput appends an output variable slot and returns its index.
func (b *Base) DeclareOutput(d PropertyDescriptor) int {
	b.outVars = append(b.outVars, d)
	return len(b.outVars) - 1
}

// Property is shorthand for a scalar PropertyDescriptor of type T.
func Property[T any](label string) PropertyDescriptor {
	return PropertyDescriptor{Label: label, Type: reflect.TypeOf((*T)(nil)).Elem()}
}

// EntryNode is the canonical start of a runtime graph.
type EntryNode struct{ Base }

func newEntry() *EntryNode {
	return &EntryNode{Base: NewBase(domain.CategoryEntry, 0, 1, "Start of the graph")}
}

// ExitNode ends a run.
type ExitNode struct{ Base }

// NewExit creates an exit node.
func NewExit() *ExitNode {
	return &ExitNode{Base: NewBase(domain.CategoryExit, 1, 0, "End of the graph")}
}
