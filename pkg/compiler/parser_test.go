package compiler

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/resolver"
	"github.com/aretw0/statescript/pkg/variant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thresholdJSON = `{
  "name": "threshold",
  "nodes": [
    {"id": "entry", "category": "entry"},
    {"id": "check", "category": "condition", "type": "nodes.ExpressionNode",
     "properties": [{"direction": "input", "index": 0, "resolver": {
       "type": "comparison", "op": "<",
       "left": {"type": "attribute", "set": "Vitals", "attribute": "Health"},
       "right": {"type": "constant", "kind": "uint64", "value": 9223372036854775809}}}]},
    {"id": "exit", "category": "exit"}
  ],
  "connections": [
    {"from": {"node": "entry", "port": 0}, "to": {"node": "check", "port": 0}},
    {"from": {"node": "check", "port": 0}, "to": {"node": "exit", "port": 0}}
  ]
}`

func TestParser_JSON(t *testing.T) {
	g, err := NewParser().Parse([]byte(thresholdJSON))
	require.NoError(t, err)
	assert.Equal(t, "threshold", g.Name)
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Connections, 2)

	check, ok := g.Node("check")
	require.True(t, ok)
	prop, ok := check.Binding(domain.Input, 0)
	require.True(t, ok)
	cmp, ok := prop.Resolver.(*resolver.Comparison)
	require.True(t, ok)
	assert.Equal(t, resolver.LessThan, cmp.Op)
	assert.Equal(t, resolver.NewConstant(variant.UInt64(1<<63+1)), cmp.Right, "large integers stay exact")
}

func TestParser_YAMLAndEncode(t *testing.T) {
	src := `
name: wait
nodes:
  - {id: entry, category: entry}
  - {id: timer, category: state, type: nodes.TimerNode, data: {duration: 1.5}}
connections:
  - {from: {node: entry, port: 0}, to: {node: timer, port: 0}}
variables:
  - {name: elapsed, kind: float, values: [0]}
`
	p := NewParser()
	g, err := p.Parse([]byte(src))
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryState, g.Nodes[1].Category)
	assert.Equal(t, variant.KindFloat32, g.Variables[0].Kind)

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := p.Encode(g, format)
			require.NoError(t, err)
			if format == FormatJSON {
				assert.True(t, json.Valid(data))
			}
			back, err := p.Parse(data)
			require.NoError(t, err)
			assert.Equal(t, g.Connections, back.Connections)
			require.Len(t, back.Nodes, len(g.Nodes))
			for i := range g.Nodes {
				assert.Equal(t, g.Nodes[i].RuntimeTypeID, back.Nodes[i].RuntimeTypeID)
				assert.Equal(t, g.Nodes[i].Category, back.Nodes[i].Category)
			}
			initial, err := back.Variables[0].Initial()
			require.NoError(t, err)
			assert.Equal(t, []variant.Variant{variant.Float32(0)}, initial)
		})
	}

	_, err = p.Encode(g, Format("toml"))
	assert.Error(t, err)
}

func TestParser_Errors(t *testing.T) {
	p := NewParser()

	_, err := p.Parse([]byte(`{"nodes": [{"category": "entry"}]}`))
	assert.ErrorIs(t, err, ErrMissingNodeID)

	_, err = p.Parse([]byte(`{"nodes": [`))
	assert.Error(t, err)

	_, err = p.Parse([]byte("nodes:\n  - {id: a, category: sideways}\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFromPath("graphs/a.JSON"))
	assert.Equal(t, FormatYAML, FormatFromPath("graphs/a.yaml"))
	assert.Equal(t, FormatYAML, FormatFromPath("graphs/a.yml"))
	assert.Equal(t, FormatYAML, FormatFromPath("graphs/a"))
}
