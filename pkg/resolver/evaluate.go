package resolver

import (
	"fmt"

	"github.com/aretw0/statescript/pkg/ports"
	"github.com/aretw0/statescript/pkg/variant"
)

// MaxDepth bounds comparison nesting during evaluation and description.
const MaxDepth = 32

// Context supplies what a resolver reads at evaluation time.
type Context interface {
	// Entity returns the owner of the running graph, or nil.
	Entity() ports.Entity
	// Variable returns the current value of a graph variable.
	Variable(name string) (variant.Variant, bool)
}

// Evaluate produces the current value of r converted to expected.
//
// Passing variant.Invalid as expected keeps the natural kind of the value.
// Unbound, unresolved or unconvertible values yield variant.Default(expected)
// rather than an error; only structural faults (cycles, excessive nesting,
// foreign resolver types) are reported. Nothing is cached: each call reads
// variables and the entity again.
func Evaluate(r Resolver, ctx Context, expected variant.Kind) (variant.Variant, error) {
	e := evaluator{ctx: ctx}
	v, err := e.eval(r)
	if err != nil {
		return variant.Default(expected), err
	}
	return coerce(v, expected), nil
}

// Bool evaluates r as a boolean condition.
func Bool(r Resolver, ctx Context) (bool, error) {
	v, err := Evaluate(r, ctx, variant.KindBool)
	if err != nil {
		return false, err
	}
	return v.AsBool(), nil
}

type evaluator struct {
	ctx   Context
	stack []*Comparison
}

func (e *evaluator) entity() ports.Entity {
	if e.ctx == nil {
		return nil
	}
	return e.ctx.Entity()
}

func (e *evaluator) eval(r Resolver) (variant.Variant, error) {
	switch t := r.(type) {
	case nil:
		return variant.Variant{}, nil

	case *Constant:
		if t == nil {
			return variant.Variant{}, nil
		}
		return t.Value, nil

	case *VariableRef:
		if t == nil || t.Name == "" || e.ctx == nil {
			return variant.Variant{}, nil
		}
		v, ok := e.ctx.Variable(t.Name)
		if !ok {
			return variant.Variant{}, nil
		}
		return v, nil

	case *AttributeRef:
		ent := e.entity()
		if t == nil || ent == nil {
			return variant.Variant{}, nil
		}
		value, ok := ent.Attribute(t.Set, t.Attribute)
		if !ok {
			return variant.Variant{}, nil
		}
		return variant.Float64(value), nil

	case *TagRef:
		ent := e.entity()
		if t == nil || ent == nil || t.Tag == "" {
			return variant.Bool(false), nil
		}
		return variant.Bool(ent.HasTag(t.Tag)), nil

	case *Comparison:
		if t == nil {
			return variant.Bool(false), nil
		}
		for _, open := range e.stack {
			if open == t {
				return variant.Variant{}, ErrCycle
			}
		}
		if len(e.stack) >= MaxDepth {
			return variant.Variant{}, fmt.Errorf("%w: nesting deeper than %d", ErrCycle, MaxDepth)
		}
		e.stack = append(e.stack, t)
		defer func() { e.stack = e.stack[:len(e.stack)-1] }()

		left, err := e.eval(t.Left)
		if err != nil {
			return variant.Variant{}, err
		}
		right, err := e.eval(t.Right)
		if err != nil {
			return variant.Variant{}, err
		}
		return variant.Bool(apply(t.Op, left, right)), nil
	}
	return variant.Variant{}, fmt.Errorf("%w: %T", ErrUnknownResolver, r)
}

// coerce converts v to k. An invalid v or a failed conversion yields the default.
func coerce(v variant.Variant, k variant.Kind) variant.Variant {
	if !k.Valid() {
		return v
	}
	if !v.IsValid() {
		return variant.Default(k)
	}
	out, err := variant.Convert(v, k)
	if err != nil {
		return variant.Default(k)
	}
	return out
}

// apply compares two evaluated operands. An unresolved side takes the zero
// value of the other side's kind.
func apply(op Operator, l, r variant.Variant) bool {
	switch {
	case !l.IsValid() && !r.IsValid():
		l, r = variant.Int32(0), variant.Int32(0)
	case !l.IsValid():
		l = variant.Default(r.Kind())
	case !r.IsValid():
		r = variant.Default(l.Kind())
	}

	lc, rc := l.Kind().IsComposite(), r.Kind().IsComposite()
	if lc || rc {
		equal := false
		if lc && rc {
			if conv, err := variant.Convert(r, l.Kind()); err == nil {
				equal = l.Equal(conv) && r.Kind().Components() == l.Kind().Components()
			}
		}
		switch op {
		case Equal:
			return equal
		case NotEqual:
			return !equal
		}
		return false
	}

	ln, _ := variant.NumberOf(l)
	rn, _ := variant.NumberOf(r)
	c, ok := ln.Compare(rn)
	if !ok {
		return op == NotEqual
	}
	switch op {
	case Equal:
		return c == 0
	case NotEqual:
		return c != 0
	case LessThan:
		return c < 0
	case LessThanOrEqual:
		return c <= 0
	case GreaterThan:
		return c > 0
	case GreaterThanOrEqual:
		return c >= 0
	}
	return false
}
