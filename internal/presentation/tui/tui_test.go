package tui

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/aretw0/statescript/pkg/runtime"
	"github.com/stretchr/testify/assert"
)

func TestCatalogMarkdown(t *testing.T) {
	types := []registry.NodeType{
		{
			TypeID:          "test.WaitNode",
			Category:        domain.CategoryState,
			DisplayName:     "Wait",
			InputLabels:     []string{"Begin", "Abort"},
			OutputLabels:    []string{"OnActivate", "OnDeactivate", "OnAbort", "Subgraph"},
			SubgraphOutputs: []bool{false, false, false, true},
			OutputVariables: []runtime.PropertyDescriptor{
				{Label: "Elapsed", Type: reflect.TypeOf(float32(0))},
			},
		},
		{
			TypeID:       "test.DealDamageNode",
			Category:     domain.CategoryAction,
			DisplayName:  "Deal Damage",
			Description:  "Applies damage.",
			InputLabels:  []string{"In"},
			OutputLabels: []string{"Out"},
			InputProperties: []runtime.PropertyDescriptor{
				{Label: "Targets", Type: reflect.TypeOf(""), IsArray: true},
			},
			Fallback: true,
		},
	}

	md := CatalogMarkdown(types)

	assert.Contains(t, md, "## Action")
	assert.Contains(t, md, "## State")
	assert.NotContains(t, md, "## Exit")
	assert.Less(t, bytes.Index([]byte(md), []byte("## Action")), bytes.Index([]byte(md), []byte("## State")))
	assert.Contains(t, md, "`test.DealDamageNode` _(default layout)_")
	assert.Contains(t, md, "Applies damage.")
	assert.Contains(t, md, "- **Property** `Targets` ([]string)")
	assert.Contains(t, md, "- **Outputs:** OnActivate, OnDeactivate, OnAbort, Subgraph (subgraph)")
	assert.Contains(t, md, "- **Writes** `Elapsed` (float32)")
}

func TestCatalogMarkdown_NoPorts(t *testing.T) {
	md := CatalogMarkdown([]registry.NodeType{{TypeID: "x", Category: domain.CategoryExit, DisplayName: "X", InputLabels: []string{"In"}}})
	assert.Contains(t, md, "- **Outputs:** none")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}

func TestNewRenderer(t *testing.T) {
	render := NewRenderer(80)
	out, err := render("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
