package nodes

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/statescript/internal/testutils"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/aretw0/statescript/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Catalog(t *testing.T) {
	reg := Default()
	assert.Equal(t, 8, reg.Len())

	catalog := reg.Catalog()
	require.Len(t, catalog, 8)
	for _, nt := range catalog {
		assert.False(t, nt.Fallback, "%s should build a catalog instance", nt.TypeID)
	}

	deal, ok := reg.Lookup(TypeDealDamage)
	require.True(t, ok)
	assert.Equal(t, "Deal Damage", deal.DisplayName)
	assert.Equal(t, []string{"In"}, deal.InputLabels)
	assert.Equal(t, []string{"Out"}, deal.OutputLabels)
	require.Len(t, deal.InputProperties, 1)
	assert.Equal(t, "Amount", deal.InputProperties[0].Label)

	timer, ok := reg.Lookup(TypeTimer)
	require.True(t, ok)
	assert.Equal(t, []string{"Begin", "Abort"}, timer.InputLabels)
	assert.Equal(t, []bool{false, false, false, true}, timer.SubgraphOutputs)

	assert.Len(t, reg.ByCategory(domain.CategoryCondition), 3)
	assert.Len(t, reg.ByCategory(domain.CategoryState), 2)
}

func TestRegister_Twice(t *testing.T) {
	reg := Default()
	err := Register(reg)
	assert.ErrorIs(t, err, registry.ErrDuplicateType)
}

const healthGraph = `
name: low-health
variables:
  - {name: dealt, kind: float32}
  - {name: label, kind: int32}
nodes:
  - {id: entry, category: entry}
  - id: low
    category: condition
    type: nodes.ExpressionNode
    properties:
      - direction: input
        index: 0
        resolver:
          type: comparison
          op: "<"
          left: {type: attribute, set: Vitals, attribute: Health}
          right: {type: constant, kind: float32, value: 50}
  - id: hit
    category: action
    type: nodes.DealDamageNode
    data: {amount: 12.5, target: Vitals}
    properties:
      - {direction: output, index: 0, resolver: {type: variable, name: dealt}}
  - id: set
    category: action
    type: nodes.SetVariableNode
    data: {variable: label}
    properties:
      - {direction: input, index: 0, resolver: {type: constant, kind: int32, value: 7}}
  - {id: exit, category: exit}
connections:
  - {from: {node: entry, port: 0}, to: {node: low, port: 0}}
  - {from: {node: low, port: 0}, to: {node: hit, port: 0}}
  - {from: {node: low, port: 1}, to: {node: exit, port: 0}}
  - {from: {node: hit, port: 0}, to: {node: set, port: 0}}
  - {from: {node: set, port: 0}, to: {node: exit, port: 0}}
`

func buildHealthGraph(t *testing.T) *runtime.Graph {
	t.Helper()
	g, err := compiler.NewParser().Parse([]byte(healthGraph))
	require.NoError(t, err)
	res, err := compiler.NewBuilder(Default()).Compile(context.Background(), g)
	require.NoError(t, err)
	require.Empty(t, res.Warnings)
	return res.Graph
}

func TestExpressionNode_ReevaluatesEachCall(t *testing.T) {
	graph := buildHealthGraph(t)
	node, ok := graph.Node("low")
	require.True(t, ok)
	cond := node.(Evaluator)

	entity := testutils.NewEntity().Set("Vitals", "Health", 30)
	ctx := graph.NewContext(entity)

	got, err := cond.Evaluate(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	entity.Set("Vitals", "Health", 80)
	got, err = cond.Evaluate(ctx)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 2, entity.Reads())

	got, err = cond.Evaluate(graph.NewContext(nil))
	require.NoError(t, err)
	assert.True(t, got, "missing attribute reads as 0")
}

func TestActions_Execute(t *testing.T) {
	graph := buildHealthGraph(t)
	ctx := graph.NewContext(testutils.NewEntity())

	hit, _ := graph.Node("hit")
	require.NoError(t, hit.(Executor).Execute(ctx))
	dealt, _ := graph.Variables().Get("dealt")
	assert.Equal(t, float32(12.5), dealt.Native())

	set, _ := graph.Node("set")
	require.NoError(t, set.(Executor).Execute(ctx))
	label, _ := graph.Variables().Get("label")
	assert.Equal(t, int32(7), label.Native())

	next := graph.Next(hit.OutputPorts()[0])
	require.Len(t, next, 1)
	assert.Same(t, set, next[0].Node())
}

func TestSetVariableNode_UnknownVariable(t *testing.T) {
	n := NewSetVariableNode("missing")
	graph := runtime.NewGraph("g")
	assert.NoError(t, n.Execute(graph.NewContext(nil)))
	assert.NoError(t, n.Execute(nil))
}

func TestHasTagNode(t *testing.T) {
	graph := runtime.NewGraph("g")
	n := NewHasTagNode("Stunned")

	got, err := n.Evaluate(graph.NewContext(testutils.NewEntity("Stunned")))
	require.NoError(t, err)
	assert.True(t, got)

	got, err = n.Evaluate(graph.NewContext(testutils.NewEntity("Burning")))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = n.Evaluate(graph.NewContext(nil))
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAttributeThresholdNode(t *testing.T) {
	graph, err := compiler.NewBuilder(Default()).Build(context.Background(), &domain.Graph{
		Nodes: []domain.Node{{
			ID: "strong", Category: domain.CategoryCondition, RuntimeTypeID: TypeAttributeThreshold,
			CustomData: map[string]any{"set": "Combat", "attribute": "Strength", "op": ">=", "threshold": "10"},
		}},
	})
	require.NoError(t, err)
	node, _ := graph.Node("strong")
	cond := node.(*AttributeThresholdNode)
	assert.Equal(t, float32(10), cond.Threshold)

	for value, want := range map[float64]bool{9.5: false, 10: true, 42: true} {
		got, err := cond.Evaluate(graph.NewContext(testutils.NewEntity().Set("Combat", "Strength", value)))
		require.NoError(t, err)
		assert.Equal(t, want, got, "strength %v", value)
	}

	_, err = compiler.NewBuilder(Default()).Build(context.Background(), &domain.Graph{
		Nodes: []domain.Node{{
			ID: "bad", Category: domain.CategoryCondition, RuntimeTypeID: TypeAttributeThreshold,
			CustomData: map[string]any{"op": "approximately"},
		}},
	})
	assert.ErrorIs(t, err, compiler.ErrConstructor)
}

func TestTimerNode(t *testing.T) {
	graph, err := compiler.NewBuilder(Default()).Build(context.Background(), &domain.Graph{
		Variables: []domain.Variable{{Name: "elapsed", Kind: variant.KindFloat32}},
		Nodes: []domain.Node{{
			ID: "wait", Category: domain.CategoryState, RuntimeTypeID: TypeTimer,
			CustomData: map[string]any{"duration": "1.5s"},
			Properties: []domain.NodeProperty{{Direction: domain.Output, Index: 0, Resolver: resolver.Var("elapsed")}},
		}},
	})
	require.NoError(t, err)
	node, _ := graph.Node("wait")
	timer := node.(*TimerNode)
	assert.Equal(t, 1500*time.Millisecond, timer.Duration)

	ctx := graph.NewContext(nil)
	done, err := timer.Tick(ctx, time.Second)
	require.NoError(t, err)
	assert.False(t, done)
	elapsed, _ := graph.Variables().Get("elapsed")
	assert.Equal(t, float32(1), elapsed.Native())

	done, err = timer.Tick(ctx, 2*time.Second)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestLogMessageNode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	graph, err := compiler.NewBuilder(Default(WithLogger(logger))).Build(context.Background(), &domain.Graph{
		Nodes: []domain.Node{{
			ID: "log", Category: domain.CategoryAction, RuntimeTypeID: TypeLogMessage,
			CustomData: map[string]any{"message": "entered combat", "level": "warn"},
			Properties: []domain.NodeProperty{{Direction: domain.Input, Index: 0, Resolver: resolver.NewConstant(variant.Int32(3))}},
		}},
	})
	require.NoError(t, err)
	node, _ := graph.Node("log")
	require.NoError(t, node.(Executor).Execute(graph.NewContext(nil)))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, `msg="entered combat"`)
	assert.Contains(t, out, "value=int32(3)")

	_, err = compiler.NewBuilder(Default()).Build(context.Background(), &domain.Graph{
		Nodes: []domain.Node{{
			ID: "log", Category: domain.CategoryAction, RuntimeTypeID: TypeLogMessage,
			CustomData: map[string]any{"level": "shout"},
		}},
	})
	assert.ErrorIs(t, err, registry.ErrInvalidArgument)
}

func TestSubgraphNode(t *testing.T) {
	n := NewSubgraphNode("patrol")
	assert.Equal(t, registry.Key("patrol"), n.Graph)
	assert.True(t, n.OutputPorts()[runtime.StateSubgraph].Subgraph)
	assert.False(t, n.OutputPorts()[runtime.StateOnActivate].Subgraph)
}
