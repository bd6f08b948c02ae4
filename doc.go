/*
Package statescript builds executable behavior graphs from serialized node graphs.

Designers author branching behavior as a graph of typed nodes (entry, exit,
action, condition, state) joined by execution ports, plus a small expression
system of resolvers that feeds values into node properties. This package turns
such a graph into a runtime graph an execution engine can walk.

# Concept

A serialized graph (JSON or YAML, see pkg/domain) names each node's runtime
type. The node type registry (pkg/registry) maps those names to constructors
and offers a catalog of every type with its port labels. The builder
(pkg/compiler) instantiates nodes, wires connections, binds properties to
resolvers and variables, and reports anything it had to skip as a warning.

# Usage

	eng, err := statescript.New("", statescript.WithLoader(loader))
	if err != nil {
		log.Fatal(err)
	}

	res, err := eng.BuildNamed(ctx, "combat/ambush")
	if err != nil {
		log.Fatal(err)
	}
	for _, w := range res.Warnings {
		log.Println(w)
	}
	entry := res.Graph.EntryNode()

Without a loader, New reads graphs from a Loam repository at the given path.
Custom node types are added by passing WithRegistry a registry that holds
them (nodes.Register adds the standard library to any registry).
*/
package statescript
