package runtime

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/ports"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/variant"
)

// Context is the evaluation scope handed to resolvers: the owning entity and
// the graph's variables.
type Context struct {
	entity ports.Entity
	vars   *Variables
}

// NewContext binds an entity to the variables of g. entity may be nil.
func (g *Graph) NewContext(entity ports.Entity) *Context {
	return &Context{entity: entity, vars: g.variables}
}

// Entity implements resolver.Context.
func (c *Context) Entity() ports.Entity { return c.entity }

// Variable implements resolver.Context.
func (c *Context) Variable(name string) (variant.Variant, bool) { return c.vars.Get(name) }

// Variables returns the store written by output bindings.
func (c *Context) Variables() *Variables { return c.vars }

// ExpectedKind maps a descriptor type to the kind an evaluation should
// produce. The wildcard and unknown types keep the natural kind.
func ExpectedKind(d PropertyDescriptor) variant.Kind {
	if d.Type == nil || d.Type == variant.VariantType {
		return variant.Invalid
	}
	k, ok := variant.KindOf(d.Type)
	if !ok {
		return variant.Invalid
	}
	return k
}

// ReadInput evaluates the resolver bound to input property index of n.
// An unbound property yields the default of the declared type.
func ReadInput(n Node, ctx *Context, index int) (variant.Variant, error) {
	props := n.InputProperties()
	if index < 0 || index >= len(props) {
		return variant.Variant{}, fmt.Errorf("input property %d out of range [0,%d)", index, len(props))
	}
	expected := ExpectedKind(props[index])
	r, _ := n.Bindings().Get(domain.Input, index)
	var scope resolver.Context
	if ctx != nil {
		scope = ctx
	}
	return resolver.Evaluate(r, scope, expected)
}

// WriteOutput stores v in the variable bound to output index of n. Writing to
// an unbound slot, or one whose variable was removed, is a no-op.
func WriteOutput(n Node, ctx *Context, index int, v variant.Variant) error {
	outs := n.OutputVariables()
	if index < 0 || index >= len(outs) {
		return fmt.Errorf("output variable %d out of range [0,%d)", index, len(outs))
	}
	r, ok := n.Bindings().Get(domain.Output, index)
	if !ok {
		return nil
	}
	ref, ok := r.(*resolver.VariableRef)
	if !ok || ref == nil || ref.Name == "" || ctx == nil {
		return nil
	}
	if _, defined := ctx.vars.Definition(ref.Name); !defined {
		return nil
	}
	return ctx.vars.Set(ref.Name, v)
}
