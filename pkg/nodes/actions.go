package nodes

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/aretw0/statescript/pkg/variant"
)

// DealDamageNode computes the damage dealt to a target attribute set.
// The Amount input overrides the constructed amount when bound.
type DealDamageNode struct {
	runtime.Base
	Amount float32
	Target registry.Key
}

// NewDealDamageNode creates the node.
func NewDealDamageNode(amount float32, target registry.Key) *DealDamageNode {
	n := &DealDamageNode{
		Base:   runtime.ActionBase("Deals damage to the target attribute set"),
		Amount: amount,
		Target: target,
	}
	n.DeclareInput(runtime.Property[float32]("Amount"))
	n.DeclareOutput(runtime.Property[float32]("Dealt"))
	return n
}

// Execute writes the damage dealt to the Dealt output.
func (n *DealDamageNode) Execute(ctx *runtime.Context) error {
	amount := n.Amount
	if _, bound := n.Bindings().Get(domain.Input, 0); bound {
		v, err := runtime.ReadInput(n, ctx, 0)
		if err != nil {
			return err
		}
		f, _ := v.AsFloat64()
		amount = float32(f)
	}
	if amount < 0 {
		amount = 0
	}
	return runtime.WriteOutput(n, ctx, 0, variant.Float32(amount))
}

func dealDamageDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeDealDamage,
		Category:    domain.CategoryAction,
		Description: "Deals a fixed or bound amount of damage.",
		Constructors: []registry.Constructor{
			{New: func(registry.Args) (runtime.Node, error) { return NewDealDamageNode(0, ""), nil }},
			{
				Params: []registry.Param{
					{Name: "amount", Kind: registry.ParamFloat32},
					{Name: "target", Kind: registry.ParamKey},
				},
				New: func(a registry.Args) (runtime.Node, error) {
					return NewDealDamageNode(float32(a.Float("amount")), a.Key("target")), nil
				},
			},
		},
	}
}

// SetVariableNode assigns its Value input to a graph variable.
type SetVariableNode struct {
	runtime.Base
	Variable registry.Key
}

// NewSetVariableNode creates the node.
func NewSetVariableNode(variable registry.Key) *SetVariableNode {
	n := &SetVariableNode{
		Base:     runtime.ActionBase("Assigns a value to a graph variable"),
		Variable: variable,
	}
	n.DeclareInput(runtime.Property[variant.Variant]("Value"))
	return n
}

// Execute evaluates Value and stores it. Unknown variables are ignored.
func (n *SetVariableNode) Execute(ctx *runtime.Context) error {
	if ctx == nil || n.Variable == "" {
		return nil
	}
	if _, ok := ctx.Variables().Definition(string(n.Variable)); !ok {
		return nil
	}
	v, err := runtime.ReadInput(n, ctx, 0)
	if err != nil {
		return err
	}
	return ctx.Variables().Set(string(n.Variable), v)
}

func setVariableDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeSetVariable,
		Category:    domain.CategoryAction,
		Description: "Assigns a value to a graph variable.",
		Constructors: []registry.Constructor{{
			Params: []registry.Param{{Name: "variable", Kind: registry.ParamKey}},
			New: func(a registry.Args) (runtime.Node, error) {
				return NewSetVariableNode(a.Key("variable")), nil
			},
		}},
	}
}

// LogMessageNode writes a message to the graph logger.
type LogMessageNode struct {
	runtime.Base
	Message string
	Level   slog.Level

	logger *slog.Logger
}

// Execute logs the message with the value of the optional Value input.
func (n *LogMessageNode) Execute(ctx *runtime.Context) error {
	attrs := []any{}
	if _, bound := n.Bindings().Get(domain.Input, 0); bound {
		v, err := runtime.ReadInput(n, ctx, 0)
		if err != nil {
			return err
		}
		attrs = append(attrs, "value", v.String())
	}
	n.logger.Log(context.Background(), n.Level, n.Message, attrs...)
	return nil
}

type logMessageArgs struct {
	Message string `mapstructure:"message"`
	Level   string `mapstructure:"level"`
}

func (l *library) logMessageDefinition() registry.Definition {
	build := func(a registry.Args) (runtime.Node, error) {
		var cfg logMessageArgs
		if err := a.Decode(&cfg); err != nil {
			return nil, err
		}
		var level slog.Level
		if cfg.Level != "" {
			if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
				return nil, fmt.Errorf("%w: level: %v", registry.ErrInvalidArgument, err)
			}
		}
		n := &LogMessageNode{
			Base:    runtime.ActionBase("Logs a message"),
			Message: cfg.Message,
			Level:   level,
			logger:  l.logger,
		}
		n.DeclareInput(runtime.Property[variant.Variant]("Value"))
		return n, nil
	}
	return registry.Definition{
		TypeID:      TypeLogMessage,
		Category:    domain.CategoryAction,
		Description: "Logs a message, optionally with a bound value.",
		Constructors: []registry.Constructor{
			{Params: []registry.Param{{Name: "message", Kind: registry.ParamString}}, New: build},
			{
				Params: []registry.Param{
					{Name: "message", Kind: registry.ParamString},
					{Name: "level", Kind: registry.ParamString},
				},
				New: build,
			},
		},
	}
}
