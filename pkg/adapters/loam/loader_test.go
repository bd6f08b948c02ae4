package loam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/aretw0/statescript/internal/testutils"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/domain"
	"github.com/aretw0/statescript/pkg/nodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const patrolDoc = `---
id: patrol
title: Patrol
variables:
  - {name: alert, kind: bool}
nodes:
  - {id: entry, category: entry}
  - id: seen
    category: condition
    type: nodes.HasTagNode
    data: {tag: Hostile}
  - {id: exit, category: exit}
connections:
  - {from: {node: entry, port: 0}, to: {node: seen, port: 0}}
  - {from: {node: seen, port: 0}, to: {node: exit, port: 0}}
---
Walks the route until something hostile shows up.`

func TestLoader_GetGraph(t *testing.T) {
	_, repo := testutils.SetupTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, core.Document{ID: "patrol.md", Content: patrolDoc}))

	loader := New(loam.NewTypedRepository[GraphMetadata](repo))

	data, err := loader.GetGraph(ctx, "patrol")
	require.NoError(t, err)

	g, err := compiler.NewParser().Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Patrol", g.Name)
	assert.Equal(t, "Walks the route until something hostile shows up.", g.Description)
	require.Len(t, g.Nodes, 3)
	assert.Equal(t, nodes.TypeHasTag, g.Nodes[1].RuntimeTypeID)
	require.Len(t, g.Variables, 1)

	built, err := compiler.NewBuilder(nodes.Default()).Build(ctx, g)
	require.NoError(t, err)
	assert.Len(t, built.Connections(), 2)

	_, err = loader.GetGraph(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)
}

func TestLoader_ListGraphs_NormalizesIDs(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"patrol.md": patrolDoc,
		"combat.json": `{
  "id": "combat.json",
  "nodes": [{"id": "entry", "category": "entry"}]
}`,
		"implicit.md": `---
nodes: []
---
ID is implied from filename`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	ids, err := New(loam.NewTypedRepository[GraphMetadata](repo)).ListGraphs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"combat", "implicit", "patrol"}, ids)
}

func TestLoader_ListGraphs_DetectsCollisions(t *testing.T) {
	tmpDir, repo := testutils.SetupTestRepo(t)

	files := map[string]string{
		"foo.md":   "---\nid: foo\n---\nExplicit ID",
		"foo.json": `{"id": "foo"}`,
	}
	for filename, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, filename), []byte(content), 0644))
	}

	_, err := New(loam.NewTypedRepository[GraphMetadata](repo)).ListGraphs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
	assert.Contains(t, err.Error(), "foo")
}

func TestNormalize(t *testing.T) {
	in := []any{map[any]any{"id": "a", "data": map[any]any{1: "one"}}}
	out := normalize(in).([]any)
	node := out[0].(map[string]any)
	assert.Equal(t, "a", node["id"])
	assert.Equal(t, map[string]any{"1": "one"}, node["data"])
}
