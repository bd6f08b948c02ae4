package nodes

import (
	"io"
	"log/slog"

	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
)

// Runtime type ids of the standard library.
const (
	TypeDealDamage         = "nodes.DealDamageNode"
	TypeSetVariable        = "nodes.SetVariableNode"
	TypeLogMessage         = "nodes.LogMessageNode"
	TypeHasTag             = "nodes.HasTagNode"
	TypeExpression         = "nodes.ExpressionNode"
	TypeAttributeThreshold = "nodes.AttributeThresholdNode"
	TypeTimer              = "nodes.TimerNode"
	TypeSubgraph           = "nodes.SubgraphNode"
)

// Executor is implemented by action nodes that do work when reached.
type Executor interface {
	Execute(ctx *runtime.Context) error
}

// Evaluator is implemented by condition nodes. The result selects the
// True or False output.
type Evaluator interface {
	Evaluate(ctx *runtime.Context) (bool, error)
}

// Option configures the library.
type Option func(*library)

// WithLogger sets the logger used by LogMessageNode.
func WithLogger(logger *slog.Logger) Option {
	return func(l *library) {
		l.logger = logger
	}
}

type library struct {
	logger *slog.Logger
}

// Register adds every standard node type to reg.
func Register(reg *registry.Registry, opts ...Option) error {
	l := &library{logger: slog.New(slog.NewJSONHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(l)
	}
	for _, def := range l.definitions() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Default returns a new registry holding the standard node types.
func Default(opts ...Option) *registry.Registry {
	reg := registry.New()
	if err := Register(reg, opts...); err != nil {
		panic(err)
	}
	return reg
}

func (l *library) definitions() []registry.Definition {
	return []registry.Definition{
		dealDamageDefinition(),
		setVariableDefinition(),
		l.logMessageDefinition(),
		hasTagDefinition(),
		expressionDefinition(),
		attributeThresholdDefinition(),
		timerDefinition(),
		subgraphDefinition(),
	}
}
