package nodes

import (
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/aretw0/statescript/pkg/variant"
)

// HasTagNode takes the True output when the entity carries Tag.
type HasTagNode struct {
	runtime.Base
	Tag registry.Key
}

// NewHasTagNode creates the node.
func NewHasTagNode(tag registry.Key) *HasTagNode {
	return &HasTagNode{Base: runtime.ConditionBase("Checks whether the entity carries a tag"), Tag: tag}
}

// Evaluate implements Evaluator.
func (n *HasTagNode) Evaluate(ctx *runtime.Context) (bool, error) {
	if ctx == nil || ctx.Entity() == nil || n.Tag == "" {
		return false, nil
	}
	return ctx.Entity().HasTag(string(n.Tag)), nil
}

func hasTagDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeHasTag,
		Category:    domain.CategoryCondition,
		Description: "Branches on an entity tag.",
		Constructors: []registry.Constructor{{
			Params: []registry.Param{{Name: "tag", Kind: registry.ParamKey}},
			New: func(a registry.Args) (runtime.Node, error) {
				return NewHasTagNode(a.Key("tag")), nil
			},
		}},
	}
}

// ExpressionNode branches on its bound Condition input.
type ExpressionNode struct {
	runtime.Base
}

// NewExpressionNode creates the node.
func NewExpressionNode() *ExpressionNode {
	n := &ExpressionNode{Base: runtime.ConditionBase("Branches on a boolean expression")}
	n.DeclareInput(runtime.Property[bool]("Condition"))
	return n
}

// Evaluate implements Evaluator. An unbound condition is false.
func (n *ExpressionNode) Evaluate(ctx *runtime.Context) (bool, error) {
	v, err := runtime.ReadInput(n, ctx, 0)
	if err != nil {
		return false, err
	}
	return v.AsBool(), nil
}

func expressionDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeExpression,
		Category:    domain.CategoryCondition,
		Description: "Branches on a boolean expression.",
		Constructors: []registry.Constructor{{
			New: func(registry.Args) (runtime.Node, error) { return NewExpressionNode(), nil },
		}},
	}
}

// AttributeThresholdNode compares an entity attribute against a threshold.
// A bound Threshold input overrides the constructed one.
type AttributeThresholdNode struct {
	runtime.Base
	Set       registry.Key
	Attribute registry.Key
	Op        resolver.Operator
	Threshold float32
}

type thresholdArgs struct {
	Set       registry.Key `mapstructure:"set"`
	Attribute registry.Key `mapstructure:"attribute"`
	Op        string       `mapstructure:"op"`
	Threshold float32      `mapstructure:"threshold"`
}

// Evaluate implements Evaluator.
func (n *AttributeThresholdNode) Evaluate(ctx *runtime.Context) (bool, error) {
	var threshold resolver.Resolver = resolver.NewConstant(variant.Float32(n.Threshold))
	if r, bound := n.Bindings().Get(domain.Input, 0); bound && r != nil {
		threshold = r
	}
	cmp := resolver.Compare(resolver.Attr(string(n.Set), string(n.Attribute)), n.Op, threshold)
	var scope resolver.Context
	if ctx != nil {
		scope = ctx
	}
	return resolver.Bool(cmp, scope)
}

func attributeThresholdDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeAttributeThreshold,
		Category:    domain.CategoryCondition,
		Description: "Compares an entity attribute with a threshold.",
		Constructors: []registry.Constructor{{
			Params: []registry.Param{
				{Name: "set", Kind: registry.ParamKey},
				{Name: "attribute", Kind: registry.ParamKey},
				{Name: "op", Kind: registry.ParamString},
				{Name: "threshold", Kind: registry.ParamFloat32},
			},
			New: func(a registry.Args) (runtime.Node, error) {
				var cfg thresholdArgs
				if err := a.Decode(&cfg); err != nil {
					return nil, err
				}
				op := resolver.LessThan
				if cfg.Op != "" {
					parsed, err := resolver.ParseOperator(cfg.Op)
					if err != nil {
						return nil, err
					}
					op = parsed
				}
				n := &AttributeThresholdNode{
					Base:      runtime.ConditionBase("Compares an entity attribute with a threshold"),
					Set:       cfg.Set,
					Attribute: cfg.Attribute,
					Op:        op,
					Threshold: cfg.Threshold,
				}
				n.DeclareInput(runtime.Property[float32]("Threshold"))
				return n, nil
			},
		}},
	}
}
