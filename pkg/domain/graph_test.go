package domain

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const damageYAML = `
name: damage
nodes:
  - id: entry
    category: Entry
  - id: deal
    title: Deal Damage
    category: action
    type: nodes.DealDamageNode
    data: {amount: 10}
    properties:
      - direction: input
        index: 0
        resolver: {type: attribute, set: CombatAttributes, attribute: Strength}
      - direction: output
        index: 0
        resolver: {type: variable, name: hits}
    position: {x: 120, y: 40}
connections:
  - {from: {node: entry, port: 0}, to: {node: deal, port: 0}}
variables:
  - {name: hits, kind: int32, values: [3]}
`

func TestGraph_YAML(t *testing.T) {
	var g Graph
	require.NoError(t, yaml.Unmarshal([]byte(damageYAML), &g))

	assert.Equal(t, "damage", g.Name)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, CategoryEntry, g.Nodes[0].Category, "category casing is normalized")

	deal, ok := g.Node("deal")
	require.True(t, ok)
	assert.Equal(t, "nodes.DealDamageNode", deal.RuntimeTypeID)
	assert.Equal(t, 10, deal.CustomData["amount"])
	assert.Equal(t, Position{X: 120, Y: 40}, deal.Position)

	in, ok := deal.Binding(Input, 0)
	require.True(t, ok)
	assert.Equal(t, resolver.Attr("CombatAttributes", "Strength"), in.Resolver)

	out, ok := deal.Binding(Output, 0)
	require.True(t, ok)
	assert.Equal(t, resolver.Var("hits"), out.Resolver)

	_, ok = deal.Binding(Input, 1)
	assert.False(t, ok)

	require.Len(t, g.Connections, 1)
	assert.Equal(t, "entry:0 -> deal:0", g.Connections[0].String())

	k, ok := g.VariableKind("hits")
	require.True(t, ok)
	assert.Equal(t, variant.KindInt32, k)
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	var g Graph
	require.NoError(t, yaml.Unmarshal([]byte(damageYAML), &g))
	g.Nodes[1].Properties = append(g.Nodes[1].Properties, NodeProperty{
		Direction: Input,
		Index:     1,
		Resolver: resolver.Compare(
			resolver.Attr("Vitals", "Health"),
			resolver.LessThan,
			resolver.NewConstant(variant.Float32(50)),
		),
	})

	data, err := json.Marshal(&g)
	require.NoError(t, err)

	var back Graph
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, g.Nodes[1].Properties, back.Nodes[1].Properties)
	assert.Equal(t, g.Connections, back.Connections)
	assert.Len(t, back.Nodes, len(g.Nodes))
	assert.Equal(t, float64(10), back.Nodes[1].CustomData["amount"])
}

func TestGraph_InvalidValues(t *testing.T) {
	var n Node
	assert.ErrorIs(t, yaml.Unmarshal([]byte("id: a\ncategory: loop\n"), &n), ErrInvalidCategory)

	var p NodeProperty
	assert.ErrorIs(t, yaml.Unmarshal([]byte("direction: sideways\nindex: 0\n"), &p), ErrInvalidDirection)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"direction":"input","index":0,"resolver":{"type":"magic"}}`), &p), resolver.ErrUnknownResolver)
}

func TestGraph_Entry(t *testing.T) {
	g := &Graph{Nodes: []Node{{ID: "a", Category: CategoryAction}}}
	_, err := g.Entry()
	assert.ErrorIs(t, err, ErrNoEntry)

	g.Nodes = append(g.Nodes, Node{ID: "e1", Category: CategoryEntry}, Node{ID: "e2", Category: CategoryEntry})
	id, err := g.Entry()
	assert.ErrorIs(t, err, ErrMultipleEntries)
	assert.Equal(t, "e1", id)
}

func TestVariable_Initial(t *testing.T) {
	tests := []struct {
		name    string
		v       Variable
		want    []variant.Variant
		wantErr bool
	}{
		{"scalar default", Variable{Name: "a", Kind: variant.KindFloat32}, []variant.Variant{variant.Float32(0)}, false},
		{"scalar value", Variable{Name: "a", Kind: variant.KindInt8, Values: []any{float64(-3)}}, []variant.Variant{variant.Int8(-3)}, false},
		{"scalar ignores extras", Variable{Name: "a", Kind: variant.KindBool, Values: []any{true, false}}, []variant.Variant{variant.Bool(true)}, false},
		{"empty array", Variable{Name: "a", Kind: variant.KindInt32, IsArray: true}, nil, false},
		{"array", Variable{Name: "a", Kind: variant.KindUInt8, IsArray: true, Values: []any{1, "2"}}, []variant.Variant{variant.UInt8(1), variant.UInt8(2)}, false},
		{"bad value", Variable{Name: "a", Kind: variant.KindBool, Values: []any{"perhaps"}}, nil, true},
		{"no kind", Variable{Name: "a"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Initial()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
