package nodes

import (
	"reflect"
	"time"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/aretw0/statescript/pkg/variant"
)

// TimerNode stays active for Duration. Elapsed time is published through the
// Elapsed output.
type TimerNode struct {
	runtime.Base
	Duration time.Duration
}

// NewTimerNode creates the node.
func NewTimerNode(d time.Duration) *TimerNode {
	n := &TimerNode{Base: runtime.StateBase("Stays active for a fixed duration"), Duration: d}
	n.DeclareOutput(runtime.Property[float32]("Elapsed"))
	return n
}

// Tick publishes elapsed seconds and reports whether the timer expired.
func (n *TimerNode) Tick(ctx *runtime.Context, elapsed time.Duration) (bool, error) {
	if err := runtime.WriteOutput(n, ctx, 0, variant.Float32(float32(elapsed.Seconds()))); err != nil {
		return false, err
	}
	return elapsed >= n.Duration, nil
}

func timerDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeTimer,
		Category:    domain.CategoryState,
		Description: "Stays active for a duration such as 1.5s or 250ms.",
		Constructors: []registry.Constructor{
			{New: func(registry.Args) (runtime.Node, error) { return NewTimerNode(0), nil }},
			{
				Params: []registry.Param{{Name: "duration", Kind: registry.ParamAny, Type: reflect.TypeOf(time.Duration(0))}},
				New: func(a registry.Args) (runtime.Node, error) {
					d, _ := a["duration"].(time.Duration)
					return NewTimerNode(d), nil
				},
			},
		},
	}
}

// SubgraphNode runs the graph named Graph from its Subgraph output while
// active.
type SubgraphNode struct {
	runtime.Base
	Graph registry.Key
}

// NewSubgraphNode creates the node.
func NewSubgraphNode(graph registry.Key) *SubgraphNode {
	return &SubgraphNode{Base: runtime.StateBase("Runs a nested graph while active"), Graph: graph}
}

func subgraphDefinition() registry.Definition {
	return registry.Definition{
		TypeID:      TypeSubgraph,
		Category:    domain.CategoryState,
		Description: "Runs a nested graph while active.",
		Constructors: []registry.Constructor{{
			Params: []registry.Param{{Name: "graph", Kind: registry.ParamKey}},
			New: func(a registry.Args) (runtime.Node, error) {
				return NewSubgraphNode(a.Key("graph")), nil
			},
		}},
	}
}
