package runtime

import (
	"sync"
	"testing"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAction struct {
	Base
}

func newTestAction() *testAction {
	n := &testAction{Base: ActionBase("test action")}
	n.DeclareInput(Property[float32]("Amount"))
	n.DeclareInput(PropertyDescriptor{Label: "Any", Type: variant.VariantType})
	n.DeclareOutput(Property[int32]("Result"))
	return n
}

func TestGraph_Wiring(t *testing.T) {
	g := NewGraph("wiring")
	require.Len(t, g.Nodes(), 1)
	assert.Equal(t, domain.CategoryEntry, g.EntryNode().Category())
	assert.Len(t, g.EntryNode().InputPorts(), 0)
	assert.Len(t, g.EntryNode().OutputPorts(), 1)

	action := newTestAction()
	exit := NewExit()

	_, err := g.AddNode("entry", g.EntryNode())
	require.NoError(t, err)
	_, err = g.AddNode("act", action)
	require.NoError(t, err)
	_, err = g.AddNode("exit", exit)
	require.NoError(t, err)
	assert.Len(t, g.Nodes(), 3, "entry is not duplicated when registered by id")
	assert.Equal(t, []string{"entry", "act", "exit"}, g.IDs())

	_, err = g.AddConnection(g.EntryNode().OutputPorts()[0], action.InputPorts()[0])
	require.NoError(t, err)
	_, err = g.AddConnection(action.OutputPorts()[0], exit.InputPorts()[0])
	require.NoError(t, err)
	assert.Len(t, g.Connections(), 2)

	next := g.Next(g.EntryNode().OutputPorts()[0])
	require.Len(t, next, 1)
	assert.Same(t, action, next[0].Node())

	stray := NewExit()
	_, err = g.AddConnection(action.OutputPorts()[0], stray.InputPorts()[0])
	assert.ErrorIs(t, err, ErrForeignPort)

	replaced, err := g.AddNode("act", newTestAction())
	require.NoError(t, err)
	assert.True(t, replaced)

	id, ok := g.IDOf(exit)
	assert.True(t, ok)
	assert.Equal(t, "exit", id)

	_, err = g.AddNode("nil", nil)
	assert.ErrorIs(t, err, ErrNilNode)
}

func TestCategoryShapes(t *testing.T) {
	tests := []struct {
		name     string
		base     Base
		inputs   int
		outputs  int
		subgraph []bool
	}{
		{"action", ActionBase(""), 1, 1, []bool{false}},
		{"condition", ConditionBase(""), 1, 2, []bool{false, false}},
		{"state", StateBase(""), 2, 4, []bool{false, false, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.base.InputPorts(), tt.inputs)
			require.Len(t, tt.base.OutputPorts(), tt.outputs)
			for i, p := range tt.base.OutputPorts() {
				assert.Equal(t, i, p.Index())
				assert.Equal(t, tt.subgraph[i], p.Subgraph)
			}
		})
	}
}

func TestBindings(t *testing.T) {
	var b Bindings
	assert.False(t, b.Bind(domain.Output, 0, resolver.Var("x")))
	assert.False(t, b.Bind(domain.Input, 2, resolver.Tag("t")))
	assert.False(t, b.Bind(domain.Input, 0, resolver.Var("y")))
	assert.True(t, b.Bind(domain.Input, 0, resolver.Var("z")), "rebinding replaces")

	r, ok := b.Get(domain.Input, 0)
	require.True(t, ok)
	assert.Equal(t, resolver.Var("z"), r)

	assert.Equal(t, []domain.PropertyKey{
		{Direction: domain.Input, Index: 0},
		{Direction: domain.Input, Index: 2},
		{Direction: domain.Output, Index: 0},
	}, b.Keys())

	assert.True(t, b.Bind(domain.Input, 2, nil))
	assert.Equal(t, 2, b.Len())
}

func TestVariables(t *testing.T) {
	s := NewVariables()
	s.Define(VariableDef{Name: "hp", Kind: variant.KindInt32, Initial: []variant.Variant{variant.Int32(100)}})
	s.Define(VariableDef{Name: "log", Kind: variant.KindFloat32, IsArray: true})

	v, ok := s.Get("hp")
	require.True(t, ok)
	assert.Equal(t, int32(100), v.Native())

	require.NoError(t, s.Set("hp", variant.Float64(42.7)))
	v, _ = s.Get("hp")
	assert.Equal(t, int32(42), v.Native(), "values convert to the declared kind")

	assert.ErrorIs(t, s.Set("mana", variant.Int32(1)), ErrUnknownVariable)
	assert.Error(t, s.Set("hp", variant.FromVector2(variant.Vector2{})))
	assert.Error(t, s.Append("hp", variant.Int32(1)))

	require.NoError(t, s.Append("log", variant.Int8(1)))
	require.NoError(t, s.Append("log", variant.Int8(2)))
	assert.Len(t, s.Values("log"), 2)

	s.Reset()
	v, _ = s.Get("hp")
	assert.Equal(t, int32(100), v.Native())
	assert.Empty(t, s.Values("log"))
	assert.Equal(t, []string{"hp", "log"}, s.Names())
}

func TestVariables_Concurrent(t *testing.T) {
	s := NewVariables()
	s.Define(VariableDef{Name: "n", Kind: variant.KindInt64})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Set("n", variant.Int64(int64(i*j)))
				_, _ = s.Get("n")
			}
		}(i)
	}
	wg.Wait()
	_, ok := s.Get("n")
	assert.True(t, ok)
}

func TestReadInputWriteOutput(t *testing.T) {
	g := NewGraph("props")
	g.Variables().Define(VariableDef{Name: "base", Kind: variant.KindInt32, Initial: []variant.Variant{variant.Int32(7)}})
	g.Variables().Define(VariableDef{Name: "result", Kind: variant.KindInt32})

	n := newTestAction()
	ctx := g.NewContext(nil)

	v, err := ReadInput(n, ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0), v.Native(), "unbound input yields the default")

	n.Bindings().Bind(domain.Input, 0, resolver.Var("base"))
	v, err = ReadInput(n, ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(7), v.Native())

	n.Bindings().Bind(domain.Input, 1, resolver.Var("base"))
	v, err = ReadInput(n, ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, variant.KindInt32, v.Kind(), "wildcard keeps the natural kind")

	_, err = ReadInput(n, ctx, 5)
	assert.Error(t, err)

	require.NoError(t, WriteOutput(n, ctx, 0, variant.Int32(3)), "unbound output is a no-op")

	n.Bindings().Bind(domain.Output, 0, resolver.Var("result"))
	require.NoError(t, WriteOutput(n, ctx, 0, variant.Float32(12.5)))
	got, _ := g.Variables().Get("result")
	assert.Equal(t, int32(12), got.Native())

	// A cleared variable name reads as the default and swallows writes.
	n.Bindings().Bind(domain.Output, 0, resolver.Var(""))
	require.NoError(t, WriteOutput(n, ctx, 0, variant.Int32(99)))
	out, err := resolver.Evaluate(resolver.Var(""), ctx, variant.KindInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(0), out.Native())

	v, err = ReadInput(n, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, float32(0), v.Native())
}
