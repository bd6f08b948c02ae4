package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/statescript/internal/testutils"
	"github.com/aretw0/statescript/pkg/compiler"
	"github.com/aretw0/statescript/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guardGraph = `
name: guard
nodes:
  - {id: entry, category: entry}
  - id: hostile
    category: condition
    type: nodes.HasTagNode
    data: {tag: Hostile}
  - {id: exit, category: exit}
connections:
  - {from: {node: entry, port: 0}, to: {node: hostile, port: 0}}
  - {from: {node: hostile, port: 0}, to: {node: exit, port: 0}}
  - {from: {node: hostile, port: 2}, to: {node: exit, port: 0}}
`

const brokenGraph = `{"nodes": [{"id": "entry", "category": "entry"}, {"id": "x", "category": "action", "type": "nodes.Nope"}]}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func graphDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutils.WriteGraph(t, dir, "combat/guard.yaml", guardGraph)
	testutils.WriteGraph(t, dir, "broken.json", brokenGraph)
	return dir
}

func TestValidate(t *testing.T) {
	dir := graphDir(t)

	out, err := run(t, "validate", "--dir", dir, "combat/guard")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✅ combat/guard")

	out, err = run(t, "validate", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "❌ broken")
	assert.Contains(t, out, "unknown runtime type nodes.Nope")
	assert.Contains(t, err.Error(), "1 of 2 graphs failed")
}

func TestBuild(t *testing.T) {
	dir := graphDir(t)

	out, err := run(t, "build", "--dir", dir, "combat/guard")
	require.NoError(t, err)
	assert.Contains(t, out, "Built guard: 3 nodes, 2 connections (1 dropped)")
	assert.Contains(t, out, "[port_out_of_range]")

	out, err = run(t, "build", "--dir", dir, "--json", filepath.Join(dir, "combat", "guard.yaml"))
	require.NoError(t, err)
	var sum compiler.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.Equal(t, 1, sum.Dropped)

	_, err = run(t, "build", "--dir", dir, "--strict", "combat/guard")
	assert.ErrorContains(t, err, "strict mode")

	_, err = run(t, "build", "--dir", dir, "broken")
	assert.ErrorIs(t, err, compiler.ErrUnknownType)

	_, err = run(t, "build", "--dir", dir, "--store", "s3", "combat/guard")
	assert.ErrorContains(t, err, "unknown store")
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog", "--dir", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "# Node types")
	assert.Contains(t, out, "### Deal Damage")

	out, err = run(t, "catalog", "--dir", t.TempDir(), "--json", "--category", "state")
	require.NoError(t, err)
	var types []registry.NodeType
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	assert.Len(t, types, 2)

	_, err = run(t, "catalog", "--category", "loop")
	assert.Error(t, err)
}

func TestGraph(t *testing.T) {
	dir := graphDir(t)

	out, err := run(t, "graph", "--dir", dir, "combat/guard")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
	assert.Contains(t, out, `.-x exit`)

	out, err = run(t, "graph", "--dir", dir, "--no-overlay", "broken")
	require.NoError(t, err)
	assert.Contains(t, out, "nodes.Nope")
}

func TestPush_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := graphDir(t)
	redisArgs := []string{"--store", "redis", "--redis-addr", mr.Addr()}

	out, err := run(t, append([]string{"push", filepath.Join(dir, "combat", "guard.yaml"), "--name", "combat/guard"}, redisArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "saved combat/guard")

	out, err = run(t, append([]string{"build", "combat/guard"}, redisArgs...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Built guard")

	_, err = run(t, append([]string{"push", filepath.Join(dir, "nope.yaml")}, redisArgs...)...)
	assert.Error(t, err)
}

func TestWatch_Unsupported(t *testing.T) {
	_, err := run(t, "watch", "--store", "memory")
	assert.ErrorContains(t, err, "does not support watching")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "statescript version")
}

func TestDiff(t *testing.T) {
	dir := graphDir(t)
	testutils.WriteGraph(t, dir, "combat/guard-v2.yaml", strings.Replace(guardGraph, "{tag: Hostile}", "{tag: Enemy}", 1)+
		"  - {from: {node: hostile, port: 1}, to: {node: exit, port: 0}}\n")

	out, err := run(t, "diff", "--dir", dir, "combat/guard", "combat/guard-v2")
	require.NoError(t, err)
	assert.Contains(t, out, "~ node hostile")
	assert.Contains(t, out, "+ connection hostile:1 -> exit:0")

	out, err = run(t, "diff", "--dir", dir, "combat/guard", "combat/guard")
	require.NoError(t, err)
	assert.Equal(t, "no changes\n", out)
}
